// Package xdg resolves XDG base directories for fuzzkit's own state:
// crash artifacts, decompressed seed cache and per-run work files.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "fuzzkit"

type Dirs struct {
	dataHome   string
	cacheHome  string
	runtimeDir string
}

func New() *Dirs {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/tmp"
	}

	d := &Dirs{}
	d.dataHome = orDefault("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	d.cacheHome = orDefault("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	d.runtimeDir = orDefault("XDG_RUNTIME_DIR", os.TempDir())
	return d
}

func orDefault(env string, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

// CrashDir is where crashing inputs are archived.
func (d *Dirs) CrashDir() string {
	return filepath.Join(d.dataHome, appName, "crashes")
}

// SeedCacheDir holds decompressed corpus seeds.
func (d *Dirs) SeedCacheDir() string {
	return filepath.Join(d.cacheHome, appName, "seeds")
}

// WorkDir holds the per-run case files handed to the target.
func (d *Dirs) WorkDir() string {
	return filepath.Join(d.runtimeDir, appName)
}

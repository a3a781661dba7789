// Package corpus manages the set of seed inputs fed to the target.
package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
)

type Corpus struct {
	dir   string
	cases []string
	next  atomic.Uint64
}

// Load scans dir for seed files. Zstd-compressed seeds (*.zst) are
// decompressed into cacheDir and served from there.
func Load(dir string, cacheDir string) (*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory %s: %w", dir, err)
	}

	c := &Corpus{dir: dir}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if strings.HasSuffix(e.Name(), ".zst") {
			plain, err := decompressSeed(path, cacheDir)
			if err != nil {
				return nil, err
			}
			path = plain
		}
		c.cases = append(c.cases, path)
	}

	if len(c.cases) == 0 {
		return nil, fmt.Errorf("corpus directory %s holds no seed files", dir)
	}
	sort.Strings(c.cases)
	return c, nil
}

func (c *Corpus) Len() int {
	return len(c.cases)
}

// Next cycles through the corpus; safe for concurrent workers.
func (c *Corpus) Next() string {
	n := c.next.Add(1) - 1
	return c.cases[n%uint64(len(c.cases))]
}

func decompressSeed(path string, cacheDir string) (string, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create seed cache directory: %w", err)
	}

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open seed %s: %w", path, err)
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd reader for %s: %w", path, err)
	}
	defer dec.Close()

	out := filepath.Join(cacheDir, strings.TrimSuffix(filepath.Base(path), ".zst"))
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create decompressed seed %s: %w", out, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, dec); err != nil {
		return "", fmt.Errorf("failed to decompress seed %s: %w", path, err)
	}
	return out, nil
}

package fuzzer

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/klauspost/compress/zstd"
)

// SaveArtifact archives the crashing input under dir, zstd compressed,
// named after the crash. Returns the artifact path.
func SaveArtifact(dir string, crash *internal.CrashReport, input []byte) (string, error) {
	name := fmt.Sprintf("%s.%#x.%s.zst", crash.SignalName, crash.PC, shortSha(crash.InputSha))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact %s: %w", path, err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(input); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return "", fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to finish artifact %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close artifact %s: %w", path, err)
	}
	return path, nil
}

func Sha256Hex(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

func shortSha(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

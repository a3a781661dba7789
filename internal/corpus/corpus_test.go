package corpus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fuzzkit/fuzzkit/internal/corpus"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	_, err := corpus.Load(dir, t.TempDir())
	require.Error(t, err)
}

func TestLoadAndCycle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("aaa"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte("bbb"), 0644))

	c, err := corpus.Load(dir, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	first := c.Next()
	second := c.Next()
	third := c.Next()
	require.NotEqual(t, first, second)
	require.Equal(t, first, third)
}

func TestLoadDecompressesZstdSeeds(t *testing.T) {
	dir := t.TempDir()
	cache := t.TempDir()

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	packed := enc.EncodeAll([]byte("seed-body"), nil)
	require.NoError(t, enc.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed1.zst"), packed, 0644))

	c, err := corpus.Load(dir, cache)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	path := c.Next()
	require.Equal(t, filepath.Join(cache, "seed1"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "seed-body", string(body))
}

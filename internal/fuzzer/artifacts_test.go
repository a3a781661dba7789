package fuzzer_test

import (
	"os"
	"testing"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/fuzzkit/fuzzkit/internal/fuzzer"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func TestSaveArtifact(t *testing.T) {
	dir := t.TempDir()
	input := []byte("crashing input bytes")
	crash := &internal.CrashReport{
		SignalName: "SIGSEGV",
		PC:         0xdeadbeef,
		InputSha:   fuzzer.Sha256Hex(input),
	}

	path, err := fuzzer.SaveArtifact(dir, crash, input)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Contains(t, path, "SIGSEGV.0xdeadbeef.")
	require.Contains(t, path, ".zst")

	packed, err := os.ReadFile(path)
	require.NoError(t, err)

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()

	plain, err := dec.DecodeAll(packed, nil)
	require.NoError(t, err)
	require.Equal(t, input, plain)
}

func TestSha256Hex(t *testing.T) {
	require.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		fuzzer.Sha256Hex(nil))
}

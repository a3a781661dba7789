//go:build linux

package stdio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fuzzkit/fuzzkit/internal/stdio"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func writeCase(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func readStdin(t *testing.T) string {
	t.Helper()
	buf := make([]byte, 64)
	n, err := unix.Read(0, buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestRedirectStdin(t *testing.T) {
	path := writeCase(t, "stdin-body")

	require.NoError(t, stdio.RedirectStdin(path))
	defer stdio.Recover()

	require.Equal(t, "stdin-body", readStdin(t))
}

func TestRedirectStdinWithClosedStdin(t *testing.T) {
	orig, err := unix.Dup(0)
	require.NoError(t, err)
	defer func() {
		_ = unix.Dup3(orig, 0, 0)
		_ = unix.Close(orig)
	}()

	path := writeCase(t, "closed-fd-body")

	// With fd 0 closed the open itself lands on stdin.
	require.NoError(t, unix.Close(0))
	require.NoError(t, stdio.RedirectStdin(path))

	require.Equal(t, "closed-fd-body", readStdin(t))
}

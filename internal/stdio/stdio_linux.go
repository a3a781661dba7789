//go:build linux

// Package stdio rebinds the standard stream descriptors of the current
// process ahead of exec, keeping duplicates so a failed exec can still
// log through working streams.
package stdio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var saved = [3]int{-1, -1, -1}

// Nullify points stdin, stdout and stderr at /dev/null.
func Nullify() {
	null, err := unix.Open(os.DevNull, unix.O_RDWR, 0)
	if err != nil {
		return
	}
	for fd := 0; fd <= 2; fd++ {
		saveStream(fd)
		_ = unix.Dup3(null, fd, 0)
	}
	_ = unix.Close(null)
}

// RedirectStdin rebinds standard input to read from path.
func RedirectStdin(path string) error {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s for stdin: %w", path, err)
	}
	if fd == 0 {
		// Stdin was closed and the open landed on it directly.
		return nil
	}
	saveStream(0)
	if err := unix.Dup3(fd, 0, 0); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("failed to redirect stdin to %s: %w", path, err)
	}
	_ = unix.Close(fd)
	return nil
}

// Recover restores any stream redirected by Nullify or RedirectStdin.
func Recover() {
	for fd := 0; fd <= 2; fd++ {
		if saved[fd] == -1 {
			continue
		}
		_ = unix.Dup3(saved[fd], fd, 0)
		_ = unix.Close(saved[fd])
		saved[fd] = -1
	}
}

// The duplicate is close-on-exec so it never leaks into the target;
// after a failed exec it is still there for Recover.
func saveStream(fd int) {
	if saved[fd] != -1 {
		return
	}
	dup, err := unix.Dup(fd)
	if err != nil {
		return
	}
	unix.CloseOnExec(dup)
	saved[fd] = dup
}

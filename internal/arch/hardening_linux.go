//go:build linux

package arch

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ADDR_NO_RANDOMIZE from <sys/personality.h>.
const addrNoRandomize = 0x0040000

// hardenEnvironment applies the process-global settings that must be
// in place before exec: abort on heap corruption, make sanitizer
// findings terminate the process observably, take the target down with
// the engine, and pin the address space layout so crash addresses
// reproduce.
func hardenEnvironment() error {
	if err := os.Setenv("MALLOC_CHECK_", "3"); err != nil {
		return fmt.Errorf("failed to set MALLOC_CHECK_: %w", err)
	}

	if err := os.Setenv("ASAN_OPTIONS", "handle_segv=0:abort_on_error=1"); err != nil {
		return fmt.Errorf("failed to set ASAN_OPTIONS: %w", err)
	}

	if err := unix.Prctl(unix.PR_SET_PDEATHSIG, uintptr(unix.SIGKILL), 0, 0, 0); err != nil {
		return fmt.Errorf("failed to arm parent-death signal: %w", err)
	}

	if _, _, errno := unix.Syscall(unix.SYS_PERSONALITY, addrNoRandomize, 0, 0); errno != 0 {
		return fmt.Errorf("failed to disable ASLR: %w", errno)
	}

	return nil
}

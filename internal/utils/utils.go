package utils

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// SystemInfo describes the machine a campaign runs on, for inclusion
// in campaign start reports.
func SystemInfo() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return fmt.Sprintf("ncpu=%d", runtime.NumCPU())
	}
	return fmt.Sprintf("%s %s %s ncpu=%d",
		unix.ByteSliceToString(uts.Sysname[:]),
		unix.ByteSliceToString(uts.Release[:]),
		unix.ByteSliceToString(uts.Machine[:]),
		runtime.NumCPU())
}

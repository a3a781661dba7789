//go:build linux

package arch

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

// applyAddressSpaceLimit is best-effort: some kernels and some targets
// reject RLIMIT_AS, and the sandbox stays safe without it.
func applyAddressSpaceLimit(log *slog.Logger, limitMiB int64) {
	if limitMiB == 0 {
		return
	}

	limit := uint64(limitMiB) * 1024 * 1024
	rl := unix.Rlimit{Cur: limit, Max: limit}
	if err := unix.Setrlimit(unix.RLIMIT_AS, &rl); err != nil {
		log.Debug("could not enforce address space limit, ignoring", "mib", limitMiB, "err", err)
	}
}

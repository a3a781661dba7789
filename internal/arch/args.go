package arch

import (
	"fmt"

	"github.com/fuzzkit/fuzzkit/internal"
)

// maxArgs bounds the materialized argument vector.
const maxArgs = 512

// BuildArgv copies the command line template, substituting the file
// placeholder with the current case path. Under stdin fuzzing the
// placeholder is left untouched because the case arrives on standard
// input instead.
func BuildArgv(cmdline []string, casePath string, fuzzStdin bool) ([]string, error) {
	if len(cmdline) == 0 {
		return nil, fmt.Errorf("command line template is empty")
	}
	if len(cmdline) > maxArgs {
		return nil, fmt.Errorf("command line has %d arguments, limit is %d", len(cmdline), maxArgs)
	}

	argv := make([]string, 0, len(cmdline))
	for _, arg := range cmdline {
		if !fuzzStdin && arg == internal.FilePlaceholder {
			argv = append(argv, casePath)
			continue
		}
		argv = append(argv, arg)
	}
	return argv, nil
}

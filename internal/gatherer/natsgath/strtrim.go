package natsgath

import (
	"strconv"
	"strings"

	"github.com/fuzzkit/fuzzkit/api"
)

// inputPreview renders the crashing input printably and trims it to
// the streaming rectangle.
func inputPreview(input []byte) *string {
	if len(input) == 0 {
		return nil
	}
	s := strconv.Quote(string(input))
	s = trimStrToRect(s, api.MaxPreviewHeight, api.MaxPreviewWidth)
	return &s
}

func trimStrToRect(s string, maxHeight int, maxWidth int) string {
	res := ""
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	for i, line := range lines {
		if i > 0 {
			res += "\n"
		}
		if len(line) > maxWidth {
			res += line[:maxWidth] + "[...]"
		} else {
			res += line
		}
	}
	return res
}

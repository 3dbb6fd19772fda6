package columns

import (
	"strconv"
	"strings"
)

const (
	// DefaultWidth is the estimate used for columns whose width hint is absent
	// or cannot be converted to pixels without the final layout.
	DefaultWidth = 150

	// DefaultBuffer is the space reserved for scrollbars and padding.
	DefaultBuffer = 40
)

// ResolveWidth returns the pixel width used for packing d. Hints made of a
// leading integer with no unit or with "px" resolve to that integer; anything
// else (percentages, "auto", garbage, no hint) resolves to DefaultWidth.
func ResolveWidth(d Descriptor) int {
	if w, ok := parseWidth(d.Width); ok {
		return w
	}
	return DefaultWidth
}

func parseWidth(hint string) (int, bool) {
	s := strings.TrimSpace(hint)
	if s == "" {
		return 0, false
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(strings.TrimSpace(s[end:])) {
	case "", "px":
		return n, true
	default:
		return 0, false
	}
}

package scrape

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseCount converts a counter as rendered on the page ("1,234,567",
// "+52", "", "N/A") into an integer. It never fails: text without a
// leading run of digits yields 0, negative values clamp to 0 and values
// beyond int64 saturate.
//
// Like a base-10 parseInt, only the leading sign and digit run is read,
// so "12.7" is 12 and "40 new" is 40.
func ParseCount(text string) int64 {
	text = strings.ReplaceAll(text, ",", "")
	if text == "" {
		text = "0"
	}
	text = strings.TrimLeftFunc(text, unicode.IsSpace)

	negative := false
	switch {
	case strings.HasPrefix(text, "-"):
		negative = true
		text = text[1:]
	case strings.HasPrefix(text, "+"):
		text = text[1:]
	}

	end := 0
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == 0 || negative {
		return 0
	}

	n, err := strconv.ParseInt(text[:end], 10, 64)
	if err != nil {
		// only ErrRange is possible for a pure digit run
		return math.MaxInt64
	}
	return n
}

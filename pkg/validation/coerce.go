package validation

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrNotInteger is returned by ParseLeadingInt when no integer prefix exists.
	ErrNotInteger = errors.New("validation: value is not an integer")
	// ErrUnknownField is returned for field names outside the schema.
	ErrUnknownField = errors.New("validation: unknown field")
)

// ParseLeadingInt parses the integer at the start of raw. Leading whitespace
// and a single sign are accepted; anything after the last digit is ignored, so
// "25abc" yields 25. Values that overflow int are rejected.
func ParseLeadingInt(raw string) (int, error) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, ErrNotInteger
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

package normalize

import (
	"strings"
	"unicode"
)

const (
	FirstFloor  = "1층"
	SecondFloor = "2층"
)

// Floor canonicalizes a free-text floor designator. Unknown labels are
// returned trimmed but otherwise untouched.
func Floor(raw string) string {
	trimmed := strings.TrimSpace(raw)
	clean := strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, trimmed))

	switch {
	case clean == "1" || clean == "1F" || strings.Contains(clean, FirstFloor):
		return FirstFloor
	case clean == "2" || clean == "2F" || strings.Contains(clean, SecondFloor):
		return SecondFloor
	}
	return trimmed
}

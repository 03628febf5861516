package utils

import (
	"unicode"
	"unicode/utf16"
)

// IsOnlyNumbers reports whether s is non-empty and made of digits only.
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsControl reports whether s holds control characters, NUL included.
func ContainsControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// IsValidInput reports whether s is worth a suggestion query: non-empty, at
// most maxLen UTF-16 code units, not purely numeric and free of control
// characters.
func IsValidInput(s string, maxLen int) bool {
	switch {
	case len(s) == 0:
		return false
	case len(utf16.Encode([]rune(s))) > maxLen:
		return false
	case IsOnlyNumbers(s):
		return false
	case ContainsControl(s):
		return false
	}
	return true
}

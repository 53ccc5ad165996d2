// Package joincode derives and parses the short codes guests type in to
// find a receipt.
package joincode

import (
	"strings"
	"unicode"

	"github.com/mmynk/tabshare/internal/apperr"
)

// Length is the number of significant characters in a join code.
const Length = 8

// FromID derives a join code from a receipt ID: dashes removed, the first
// eight characters kept, upper-cased.
func FromID(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > Length {
		compact = compact[:Length]
	}
	return strings.ToUpper(compact)
}

// Normalize accepts user input in any case, with or without the display
// dash and surrounding spaces, and returns the canonical code.
func Normalize(input string) (string, error) {
	var b strings.Builder
	for _, r := range input {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return "", apperr.Invalid("join_code", "may only contain letters and digits")
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	code := b.String()
	if len(code) != Length {
		return "", apperr.Invalid("join_code", "must be 8 characters")
	}
	return code, nil
}

// Display groups a code as XXXX-XXXX.
func Display(code string) string {
	if len(code) != Length {
		return code
	}
	return code[:4] + "-" + code[4:]
}

package rule

import (
	"strings"
	"unicode"
)

// TransformName turns an itemName into the suffix of a generated constant.
// Names that are already fully upper-case pass through; anything else is
// upper-cased. Mixed-case input loses its casing, which existing generated
// modules rely on.
func TransformName(name string) string {
	if isUpper(name) {
		return name
	}
	return strings.ToUpper(name)
}

// isUpper reports whether s has at least one cased rune and no lower-case
// ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

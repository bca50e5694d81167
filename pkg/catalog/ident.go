package catalog

import "strings"

// Bracket wraps s in square brackets. A string that is already
// bracket-delimited is returned unchanged so that pre-bracketed workbook
// names are not wrapped twice.
func Bracket(s string) string {
	if IsBracketed(s) {
		return s
	}
	return "[" + s + "]"
}

// Strip removes one layer of surrounding square brackets, if present.
func Strip(s string) string {
	if IsBracketed(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// IsBracketed reports whether s is a complete bracket-delimited token.
func IsBracketed(s string) bool {
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']'
}

// Fold normalizes s for case-insensitive identifier comparison.
// All identifier matching in the pipeline goes through this one function
// so that the folding rule (Unicode lowercasing) is fixed in one place.
func Fold(s string) string {
	return strings.ToLower(s)
}

package validation

import "strings"

// ValidateEIN checks that an identifier is usable as a record key.
// EINs are non-negative integers.
func ValidateEIN(ein int64) bool {
	return ein >= 0
}

// NormalizeRepresentative canonicalizes an operator-chosen name: surrounding
// whitespace is stripped and the result is uppercased. Returns "" for a
// blank input, which callers treat as "clear the representative".
func NormalizeRepresentative(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return strings.ToUpper(trimmed)
}

// ValidateSuggestNames checks a suggestion request's name list.
// At least one non-blank name is required.
func ValidateSuggestNames(names []string) (bool, string) {
	if len(names) == 0 {
		return false, "at least one name is required"
	}
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			return true, ""
		}
	}
	return false, "at least one non-blank name is required"
}

// NormalizePageParams clamps listing parameters to sane values.
func NormalizePageParams(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 500 {
		pageSize = 500
	}
	return page, pageSize
}

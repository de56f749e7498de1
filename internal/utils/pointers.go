package utils

import "strings"

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NullableString trims s and returns nil when nothing is left, so optional
// text columns are stored as NULL rather than "".
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Package phone canonicalizes free-form phone numbers into E.164.
//
// ClickUp stores phone numbers wherever a user typed them: dedicated phone
// fields, text fields named "Phone", even email fields. Normalize turns any
// of those into "+<country><number>" or rejects the value with "".
package phone

import (
	"regexp"
	"strings"
)

var (
	// extensionPattern matches the first extension marker and its digits.
	// Only the first match is removed; a second marker's digits stay in
	// the number.
	extensionPattern = regexp.MustCompile(`(?i)(?:extension|ext|x)[.:]?\s*\d+`)

	e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

const (
	minDigits = 10
	maxDigits = 15
)

// Normalize returns s in E.164 form, or "" when s cannot be read as a phone
// number. Ten-digit numbers are assumed to be North American and get a
// leading 1. Normalize is idempotent for every non-empty result.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if loc := extensionPattern.FindStringIndex(s); loc != nil {
		s = s[:loc[0]] + s[loc[1]:]
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)

	if digits == "" || digits[0] == '0' {
		return ""
	}

	switch n := len(digits); {
	case n < minDigits, n > maxDigits:
		return ""
	case n == minDigits:
		digits = "1" + digits
	}

	candidate := "+" + digits
	if !e164Pattern.MatchString(candidate) {
		return ""
	}
	return candidate
}

// Valid reports whether s is already in canonical E.164 form.
func Valid(s string) bool {
	return e164Pattern.MatchString(s)
}

// Package tariff provides tariff-code normalization and hierarchy views.
// Codes are stored as ten bare digits and displayed as XXXX XX XX XX.
package tariff

import (
	"strings"
	"unicode"
)

// CodeLength is the number of digits in a full tariff code
const CodeLength = 10

// PrefixLength is the number of digits used to key rate rules
const PrefixLength = 4

// Normalize strips all whitespace from a code
func Normalize(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
}

// IsDigits reports whether s is non-empty and made of ASCII digits only
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsFullCode reports whether code normalizes to exactly ten digits
func IsFullCode(code string) bool {
	n := Normalize(code)
	return len(n) == CodeLength && IsDigits(n)
}

// IsCodeQuery reports whether a free-text query should be treated as an exact code:
// only digits and whitespace, with exactly ten digits.
func IsCodeQuery(q string) bool {
	digits := 0
	for _, r := range q {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return digits == CodeLength
}

// Format renders a code in the grouped display form.
// Inputs that do not normalize to ten digits are returned normalized but ungrouped.
func Format(code string) string {
	n := Normalize(code)
	if len(n) != CodeLength {
		return n
	}
	return n[0:4] + " " + n[4:6] + " " + n[6:8] + " " + n[8:10]
}

// Prefix returns the rate-rule prefix of a code, or the whole normalized code if shorter
func Prefix(code string) string {
	n := Normalize(code)
	if len(n) < PrefixLength {
		return n
	}
	return n[:PrefixLength]
}

// Hierarchy is the set of views over a single code
type Hierarchy struct {
	Group         string `json:"group"`
	Position      string `json:"position"`
	Subsection    string `json:"subsection"`
	Subsubsection string `json:"subsubsection"`
}

// HierarchyOf derives the hierarchy views from a ten-digit code
func HierarchyOf(code string) Hierarchy {
	n := Normalize(code)
	cut := func(k int) string {
		if len(n) < k {
			return n
		}
		return n[:k]
	}
	return Hierarchy{
		Group:         cut(2),
		Position:      cut(4),
		Subsection:    cut(6),
		Subsubsection: n,
	}
}

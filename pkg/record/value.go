package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Equivalent reports whether two field values represent the same logical
// value once the serialization differences between the two sides are
// normalized away. The CSV side is all text while the remote store is typed,
// so strict equality would flag nearly every matched row as changed.
//
// The rules:
//   - strings are compared after trimming trailing whitespace
//   - a numeric string equals a number when they are numerically equal
//   - nil, an absent column, and the empty string are all mutually equal
//   - booleans equal their "true"/"false" string forms
//
// This is a comparison policy, not a data transformation: values are never
// rewritten on either side.
func Equivalent(a, b any) bool {
	return canonical(a) == canonical(b)
}

// Key returns the canonical index key for a pivot value and whether the
// value is indexable at all. nil, absent, and empty values are not
// indexable: a record carrying one can never be matched.
//
// Keys use the same normalization as Equivalent so a text pivot from the
// CSV ("42") matches a typed pivot from the remote store (42).
func Key(v any) (string, bool) {
	s := canonical(v)
	return s, s != ""
}

// Display renders a field value for warnings, field-change listings, and
// logs. Long strings are truncated.
func Display(v any) string {
	if v == nil {
		return ""
	}
	s := fmt.Sprintf("%v", v)
	const maxLen = 50
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}

// canonical reduces a field value to its canonical string form.
func canonical(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return canonicalString(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case float32:
		return formatNumber(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// canonicalString trims trailing whitespace and normalizes plain decimal
// forms. Integer forms are normalized textually, never through a float64,
// so long numeric IDs keep their full precision and cannot collide.
// Exponent, hex, and infinity spellings are ordinary strings here.
func canonicalString(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if n, ok := canonicalInteger(s); ok {
		return n
	}
	if isDecimalFraction(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return formatNumber(f)
		}
	}
	return s
}

// canonicalInteger normalizes a digits-only form with an optional sign by
// stripping leading zeros, exact at any length.
func canonicalInteger(s string) (string, bool) {
	digits := s
	neg := false
	if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
		neg = digits[0] == '-'
		digits = digits[1:]
	}
	if digits == "" {
		return "", false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", false
		}
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0", true
	}
	if neg {
		return "-" + digits, true
	}
	return digits, true
}

// isDecimalFraction reports whether s is a plain decimal number with a
// fractional point, like "42.0" or "-0.5".
func isDecimalFraction(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	dot := false
	digit := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '.':
			if dot {
				return false
			}
			dot = true
		case s[i] >= '0' && s[i] <= '9':
			digit = true
		default:
			return false
		}
	}
	return dot && digit
}

// formatNumber formats a number without trailing zeros so 42, 42.0, and
// "42" all reduce to the same form. Integer-valued floats inside the exact
// float64 range print without an exponent, matching the textual integer
// form.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

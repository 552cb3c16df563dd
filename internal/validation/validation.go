package validation

import (
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	hexColorPattern   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	namedColorPattern = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
	funcColorPattern  = regexp.MustCompile(`^(?i:rgba?|hsla?)\(\s*[0-9.]+(?:deg|%)?(?:\s*[,/]?\s*[0-9.]+%?){2,3}\s*\)$`)
	lengthPattern     = regexp.MustCompile(`^[0-9]*\.?[0-9]+(?:px|em|rem|%|pt|vw|vh)?$`)
)

// IsValidEmail reports whether email looks like local@domain.tld.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeEmail trims and lower-cases an address so lookups and the unique
// index agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// OrDefault returns the trimmed value, or def when the value is blank.
func OrDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

// IsCSSColor accepts hex, named, rgb(a) and hsl(a) colors.
func IsCSSColor(value string) bool {
	return hexColorPattern.MatchString(value) ||
		namedColorPattern.MatchString(value) ||
		funcColorPattern.MatchString(value)
}

// IsCSSLength accepts a plain number with an optional px, em, rem, %, pt,
// vw or vh unit.
func IsCSSLength(value string) bool {
	return lengthPattern.MatchString(value)
}

package normalize

import (
	"regexp"
	"strings"
)

var (
	multiSpace = regexp.MustCompile(`\s+`)
	nonWord    = regexp.MustCompile(`[^\w\s]`)
)

// CompanyName canonicalizes a client/company name for matching across the
// clinical and finance systems: lowercase, punctuation stripped, whitespace
// collapsed. The two systems hand-enter the same companies with different
// casing and trailing punctuation.
func CompanyName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

package normalize

import (
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)
	enrolleeNoise   = regexp.MustCompile(`[/ \-~]`)
)

// Code canonicalizes a procedure code: trim, uppercase, strip everything
// that is not a letter or digit. PA, Claims, and the benefit map disagree on
// spacing and punctuation for the same code, so all three sides go through
// this before any join.
func Code(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(s), "")
}

// EnrolleeID strips the separator noise (slashes, spaces, dashes, tildes)
// that the enrollment system allows in legacy member codes, so PA/Claims
// patient ids join cleanly against the enrollee table.
func EnrolleeID(s string) string {
	return enrolleeNoise.ReplaceAllString(strings.TrimSpace(s), "")
}

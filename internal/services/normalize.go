package services

import (
	"net/mail"
	"regexp"
	"strings"
)

func NormEmail(s string) (string, bool) {
	e := strings.TrimSpace(strings.ToLower(s))
	if e == "" {
		return "", true // treat empty as ok/optional
	}
	_, err := mail.ParseAddress(e)
	return e, err == nil
}

var (
	// NI number: two prefix letters, six digits, suffix A-D. D, F, I, Q,
	// U, V never appear in the prefix and O never as its second letter.
	reNINo = regexp.MustCompile(`^[A-CEGHJ-PR-TW-Z][A-CEGHJ-NPR-TW-Z][0-9]{6}[A-D]$`)

	// UK postcode, outward + inward, after separators are stripped.
	rePostcode = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?[0-9][A-Z]{2}$`)

	normStrip = strings.NewReplacer(" ", "", "-", "", ".", "", "\n", "", "\r", "", "\t", "")
)

// NormNINumber normalizes a National Insurance number to its canonical
// uppercase no-space form, e.g. "ab 12 34 56 c" -> "AB123456C".
// Returns "" when the input cannot be a valid NI number.
func NormNINumber(s string) string {
	n := strings.ToUpper(normStrip.Replace(strings.TrimSpace(s)))
	if !reNINo.MatchString(n) {
		return ""
	}
	return n
}

// NormPostcode normalizes a UK postcode to uppercase with the single
// conventional space before the inward code, e.g. "sw1a1aa" -> "SW1A 1AA".
// Returns "" when the input cannot be a valid postcode.
func NormPostcode(s string) string {
	n := strings.ToUpper(normStrip.Replace(strings.TrimSpace(s)))
	if !rePostcode.MatchString(n) {
		return ""
	}
	return n[:len(n)-3] + " " + n[len(n)-3:]
}

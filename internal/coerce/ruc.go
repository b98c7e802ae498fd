package coerce

import "strings"

// RUCWidth is the fixed width of an Ecuadorian RUC.
const RUCWidth = 13

// CleanRUC keeps only the digits of s.
func CleanRUC(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PadRUC13 left-pads the digits of s with zeros to 13. Longer values are
// returned unchanged, never truncated. No digits yields "".
func PadRUC13(s string) string {
	d := CleanRUC(s)
	if d == "" || len(d) >= RUCWidth {
		return d
	}
	return strings.Repeat("0", RUCWidth-len(d)) + d
}

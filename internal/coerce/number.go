// Package coerce turns display-formatted cell text into typed values.
// Coercers are total: malformed input yields a zero value and ok=false.
package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var amountJunk = regexp.MustCompile(`[^0-9.,\-]`)

// ParseAmount reads a money-like cell with ambiguous separators.
//
//	both "," and "."  the right-most one is the decimal separator
//	"," repeated      thousands separators ("45,717,089" -> 45717089)
//	"," once          decimal separator ("12,50" -> 12.5)
//	"." repeated      thousands separators ("45.717.089" -> 45717089)
//	"." once          decimal separator ("1.234" -> 1.234)
//
// Currency symbols, spaces and letters are dropped before parsing. A minus
// sign is only accepted in front.
func ParseAmount(s string) (float64, bool) {
	s = amountJunk.ReplaceAllString(strings.TrimSpace(s), "")
	if s == "" || s == "-" {
		return 0, false
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if strings.Contains(s, "-") {
		return 0, false
	}

	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1:
		s = strings.ReplaceAll(s, ",", ".")
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// Amount is ParseAmount with the silent-zero policy.
func Amount(s string) float64 {
	v, _ := ParseAmount(s)
	return v
}

package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	dmy        = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})$`)
	bareYear   = regexp.MustCompile(`^(19|20)\d{2}$`)
	serialDate = regexp.MustCompile(`^\d{5}(\.\d+)?$`)
)

// year-first layouts tried before the day-first fallback
var nativeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
}

// Date parses ISO-like dates, Excel serial numbers and D/M/Y or D-M-Y with a
// two- or four-digit year (two-digit years are 20xx). A trailing time after a
// space is ignored for the day-first forms. Impossible calendar dates fail.
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range nativeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serialDate.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			if t, err := excelize.ExcelDateToTime(f, false); err == nil {
				return t, true
			}
		}
	}
	head := s
	if i := strings.IndexByte(head, ' '); i > 0 {
		head = head[:i]
	}
	m := dmy.FindStringSubmatch(head)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// Year reads a year cell: a bare "2023" or "2023.0", or anything Date
// accepts. Text with date separators only goes through Date.
func Year(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if bareYear.MatchString(s) {
		y, _ := strconv.Atoi(s)
		return y, true
	}
	if strings.ContainsAny(s, "/-") {
		t, ok := Date(s)
		if !ok {
			return 0, false
		}
		return t.Year(), true
	}
	if v, ok := ParseAmount(s); ok && v == math.Trunc(v) && bareYear.MatchString(strconv.Itoa(int(v))) {
		return int(v), true
	}
	t, ok := Date(s)
	if !ok {
		return 0, false
	}
	return t.Year(), true
}

// Quarter formats the calendar quarter of t as "Q1".."Q4".
func Quarter(t time.Time) string {
	return "Q" + strconv.Itoa((int(t.Month())+2)/3)
}

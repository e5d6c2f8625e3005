package scan

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var numberPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// isNumber reports whether s is a decimal number.
func isNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// isLong reports whether s is an integer that fits in 64 bits.
func isLong(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isDateSeparator(c byte) bool {
	return c == '-' || c == '/' || c == '.' || c == ' '
}

func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// dateParts splits a date into year, month and day. Accepted forms are
// yyyy?MM?dd, dd?MM?yyyy, MM?dd?yyyy, dd?MM?yy and MM?dd?yy where ? is one of
// "-/. ". When day and month are both plausible the month comes first.
func dateParts(s string) (year, month, day int, ok bool) {
	switch len(s) {
	case 10:
		if isDateSeparator(s[4]) && isDateSeparator(s[7]) {
			y, ok1 := digits(s[0:4])
			m, ok2 := digits(s[5:7])
			d, ok3 := digits(s[8:10])
			if ok1 && ok2 && ok3 && validMonthDay(m, d) {
				return y, m, d, true
			}
			return 0, 0, 0, false
		}
		if isDateSeparator(s[2]) && isDateSeparator(s[5]) {
			y, ok := digits(s[6:10])
			if !ok {
				return 0, 0, 0, false
			}
			return monthDay(y, s[0:2], s[3:5])
		}
	case 8:
		if isDateSeparator(s[2]) && isDateSeparator(s[5]) {
			yy, ok := digits(s[6:8])
			if !ok {
				return 0, 0, 0, false
			}
			// Two-digit years follow the time package: 69-99 → 19xx, 00-68 → 20xx.
			y := 2000 + yy
			if yy >= 69 {
				y = 1900 + yy
			}
			return monthDay(y, s[0:2], s[3:5])
		}
	}
	return 0, 0, 0, false
}

func monthDay(year int, first, second string) (int, int, int, bool) {
	a, ok1 := digits(first)
	b, ok2 := digits(second)
	if !ok1 || !ok2 {
		return 0, 0, 0, false
	}
	if validMonthDay(a, b) {
		return year, a, b, true
	}
	if validMonthDay(b, a) {
		return year, b, a, true
	}
	return 0, 0, 0, false
}

// isDate reports whether s looks like a date.
func isDate(s string) bool {
	_, _, _, ok := dateParts(s)
	return ok
}

// epochDays converts a date string to days since 1970-01-01.
func epochDays(s string) (float64, bool) {
	y, m, d, ok := dateParts(s)
	if !ok {
		return 0, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return float64(t.Unix() / 86400), true
}

// dateFromEpochDays formats days since 1970-01-01 as yyyy-MM-dd.
func dateFromEpochDays(days float64) string {
	return time.Unix(int64(days)*86400, 0).UTC().Format("2006-01-02")
}

// words returns the distinct words of a lower-cased value.
func words(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(fields) < 2 {
		return fields
	}

	seen := make(map[string]bool, len(fields))
	unique := fields[:0]
	for _, w := range fields {
		if !seen[w] {
			seen[w] = true
			unique = append(unique, w)
		}
	}
	return unique
}

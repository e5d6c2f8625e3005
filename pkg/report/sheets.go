package report

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Sheet names of a scan report.
const (
	FieldOverviewSheet = "Field Overview"
	TableOverviewSheet = "Table Overview"
	MetaSheet          = "_"
)

// TruncatedMarker ends a value list that was cut at the maximum number of values.
const TruncatedMarker = "List truncated..."

const maxSheetNameLength = 31

var invalidSheetChars = strings.NewReplacer(
	"[", "_", "]", "_", ":", "_", "*", "_", "?", "_", "/", "_", "\\", "_",
)

// sanitizeSheetName applies the Excel sheet name rules: at most 31 characters,
// none of []:*?/\ and no leading or trailing apostrophe.
func sanitizeSheetName(name string) string {
	name = invalidSheetChars.Replace(name)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Sheet"
	}
	return truncateRunes(name, maxSheetNameLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// sheetNamer hands out unique sheet names. Excel compares names ignoring case.
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer(reserved ...string) *sheetNamer {
	n := &sheetNamer{used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[strings.ToLower(r)] = true
	}
	return n
}

func (n *sheetNamer) next(table string) string {
	base := sanitizeSheetName(table)
	name := base
	for i := 2; n.used[strings.ToLower(name)]; i++ {
		suffix := "_" + strconv.Itoa(i)
		name = truncateRunes(base, maxSheetNameLength-len(suffix)) + suffix
	}
	n.used[strings.ToLower(name)] = true
	return name
}

// valueSheetNames returns the value sheet name of each table in report order.
func valueSheetNames(tables []string) []string {
	namer := newSheetNamer(FieldOverviewSheet, TableOverviewSheet, MetaSheet)
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = namer.next(t)
	}
	return names
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

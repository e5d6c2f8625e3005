package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/whiterabbit/pkg/scan"
)

// Report is a scan report read back from a workbook.
type Report struct {
	Tables []*Table
	// Meta holds the entries of the metadata sheet; empty for reports
	// written without one.
	Meta map[string]string
}

// Table is a row of the table overview with its fields.
type Table struct {
	Name        string
	Description string
	RowCount    int64
	RowsChecked int64
	Fields      []*Field
}

// Field is a row of the field overview with its value frequencies.
type Field struct {
	Name           string
	Description    string
	Type           string
	MaxLength      int
	RowCount       int64
	RowsChecked    int64
	FractionEmpty  float64
	UniqueCount    int64
	FractionUnique float64
	Values         []scan.ValueCount
	// Truncated is set when the value list ended with the truncation marker.
	Truncated bool
	// Stats holds the numeric statistics columns by header, when present.
	Stats map[string]string
}

// Table returns the table with the given name, or nil.
func (r *Report) Table(name string) *Table {
	for _, t := range r.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Field returns the field with the given name, or nil.
func (t *Table) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Read parses the scan report workbook at path.
func Read(path string) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	r := &reader{f: f, report: &Report{Meta: make(map[string]string)}}
	if err := r.tableOverview(); err != nil {
		return nil, err
	}
	if err := r.fieldOverview(); err != nil {
		return nil, err
	}
	if err := r.valueSheets(); err != nil {
		return nil, err
	}
	if err := r.meta(); err != nil {
		return nil, err
	}
	return r.report, nil
}

type reader struct {
	f      *excelize.File
	report *Report
}

// rows returns the data rows of a sheet as header-keyed records.
func (r *reader) rows(sheet string) ([]map[string]string, error) {
	all, err := r.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("sheet %s has no header", sheet)
	}

	header := all[0]
	records := make([]map[string]string, 0, len(all)-1)
	for _, row := range all[1:] {
		rec := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *reader) hasSheet(name string) bool {
	idx, err := r.f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

func (r *reader) tableOverview() error {
	records, err := r.rows(TableOverviewSheet)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec["Table"] == "" {
			continue
		}
		r.report.Tables = append(r.report.Tables, &Table{
			Name:        rec["Table"],
			Description: rec["Description"],
			RowCount:    parseInt(rec["N rows"]),
			RowsChecked: parseInt(rec["N rows checked"]),
		})
	}
	return nil
}

func (r *reader) fieldOverview() error {
	records, err := r.rows(FieldOverviewSheet)
	if err != nil {
		return err
	}
	for _, rec := range records {
		tableName := rec["Table"]
		if tableName == "" {
			continue
		}
		table := r.report.Table(tableName)
		if table == nil {
			table = &Table{Name: tableName, RowCount: parseInt(rec["N rows"])}
			r.report.Tables = append(r.report.Tables, table)
		}

		field := &Field{
			Name:           rec["Field"],
			Description:    rec["Description"],
			Type:           rec["Type"],
			MaxLength:      int(parseInt(rec["Max length"])),
			RowCount:       parseInt(rec["N rows"]),
			RowsChecked:    parseInt(rec["N rows checked"]),
			FractionEmpty:  parseFloat(rec["Fraction empty"]),
			UniqueCount:    parseInt(rec["N unique values"]),
			FractionUnique: parseFloat(rec["Fraction unique"]),
		}
		for _, h := range numericStatsHeader {
			if v, ok := rec[h]; ok && v != "" {
				if field.Stats == nil {
					field.Stats = make(map[string]string, len(numericStatsHeader))
				}
				field.Stats[h] = v
			}
		}
		table.Fields = append(table.Fields, field)
	}
	return nil
}

// valueSheets reads the value frequencies. Sheet names are derived from the
// table order the same way they are written.
func (r *reader) valueSheets() error {
	names := make([]string, len(r.report.Tables))
	for i, t := range r.report.Tables {
		names[i] = t.Name
	}

	for i, sheet := range valueSheetNames(names) {
		if !r.hasSheet(sheet) {
			continue
		}
		all, err := r.f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(all) == 0 {
			continue
		}

		table := r.report.Tables[i]
		header := all[0]
		for col := 0; col < len(header); col += 2 {
			field := table.Field(header[col])
			if field == nil {
				field = &Field{Name: header[col]}
				table.Fields = append(table.Fields, field)
			}
			for _, row := range all[1:] {
				value, count := cell(row, col), cell(row, col+1)
				switch {
				case count == "" && value == TruncatedMarker:
					field.Truncated = true
				case count != "":
					field.Values = append(field.Values, scan.ValueCount{Value: value, Count: parseInt(count)})
				}
			}
		}
	}
	return nil
}

func (r *reader) meta() error {
	if !r.hasSheet(MetaSheet) {
		return nil
	}
	records, err := r.rows(MetaSheet)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec["Key"] != "" {
			r.report.Meta[rec["Key"]] = rec["Value"]
		}
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	// integers may be stored as floats
	f, _ := strconv.ParseFloat(s, 64)
	return int64(f)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

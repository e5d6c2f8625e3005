package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/whiterabbit/pkg/scan"
)

var (
	fieldOverviewHeader = []string{
		"Table", "Field", "Description", "Type", "Max length", "N rows", "N rows checked",
		"Fraction empty", "N unique values", "Fraction unique",
	}
	numericStatsHeader = []string{
		"Average", "Standard Deviation", "Min", "25%", "Median", "75%", "Max",
	}
	tableOverviewHeader = []string{
		"Table", "Description", "N rows", "N rows checked", "N Fields", "N Fields Empty",
	}
	metaHeader = []string{"Key", "Value"}
)

// Metadata keys of the "_" sheet.
const (
	MetaScanID                = "Scan ID"
	MetaSource                = "Source"
	MetaStarted               = "Started"
	MetaFinished              = "Finished"
	MetaScanValues            = "Scan field values"
	MetaMinCellCount          = "Min cell count"
	MetaMaxValues             = "Max distinct values"
	MetaSampleSize            = "Rows per table"
	MetaCalculateNumericStats = "Calculate numeric stats"
	MetaNumStatsSamplerSize   = "Numeric stats sampler size"
)

// Write creates the scan report workbook at path.
func Write(result *scan.Result, path string) error {
	f, err := build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Encode writes the scan report workbook to w.
func Encode(result *scan.Result, w io.Writer) error {
	f, err := build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func build(result *scan.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	style, err := headerStyle(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	w := &writer{f: f, result: result, header: style}
	steps := []func() error{
		w.fieldOverview,
		w.tableOverview,
		w.valueSheets,
		w.meta,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}

	// The default sheet was renamed to the field overview.
	f.SetActiveSheet(0)
	return f, nil
}

type writer struct {
	f      *excelize.File
	result *scan.Result
	header int
}

func (w *writer) newSheet(name string, header []string) error {
	if name == FieldOverviewSheet {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	return w.writeHeader(name, header)
}

func (w *writer) writeHeader(sheet string, header []string) error {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := w.f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return w.f.SetColWidth(sheet, "A", lastCol, 15)
}

func (w *writer) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// fieldOverview writes one row per field; tables are followed by an empty row.
func (w *writer) fieldOverview() error {
	header := fieldOverviewHeader
	stats := w.result.Parameters.CalculateNumericStats
	if stats {
		header = append(append([]string(nil), header...), numericStatsHeader...)
	}
	if err := w.newSheet(FieldOverviewSheet, header); err != nil {
		return err
	}

	row := 2
	for _, t := range w.result.Tables {
		for _, fi := range t.Fields {
			values := []any{
				t.Name,
				fi.Name,
				"",
				fi.TypeDescription(),
				fi.MaxLength,
				fi.RowCount,
				fi.Processed,
				fi.FractionEmpty(),
				fi.UniqueCount,
				fi.FractionUnique(),
			}
			if stats {
				values = append(values, statsValues(fi.Stats)...)
			}
			if err := w.setRow(FieldOverviewSheet, row, values); err != nil {
				return err
			}
			row++
		}
		row++
	}
	return nil
}

func statsValues(s *scan.NumericStats) []any {
	if s == nil {
		return nil
	}
	all := []float64{s.Average, s.StdDev, s.Min, s.Q1, s.Median, s.Q3, s.Max}
	values := make([]any, len(all))
	for i, v := range all {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			values[i] = ""
		case s.IsDate && i == 1:
			// standard deviation of dates is in days
			values[i] = v
		case s.IsDate:
			values[i] = s.Format(v)
		default:
			values[i] = v
		}
	}
	return values
}

func (w *writer) tableOverview() error {
	if err := w.newSheet(TableOverviewSheet, tableOverviewHeader); err != nil {
		return err
	}
	for i, t := range w.result.Tables {
		values := []any{t.Name, "", t.RowCount, t.RowsChecked, len(t.Fields), t.EmptyFieldCount()}
		if err := w.setRow(TableOverviewSheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// valueSheets writes the value frequencies of each table as value/Frequency
// column pairs. Values seen fewer than MinCellCount times are left out.
func (w *writer) valueSheets() error {
	params := w.result.Parameters
	if !params.ScanValues {
		return nil
	}

	names := make([]string, len(w.result.Tables))
	for i, t := range w.result.Tables {
		names[i] = t.Name
	}
	sheets := valueSheetNames(names)

	for i, t := range w.result.Tables {
		sheet := sheets[i]
		header := make([]string, 0, 2*len(t.Fields))
		for _, fi := range t.Fields {
			header = append(header, fi.Name, "Frequency")
		}
		if err := w.newSheet(sheet, header); err != nil {
			return err
		}

		for col, fi := range t.Fields {
			row := 2
			for _, vc := range fi.ValueCounts() {
				if vc.Count < int64(params.MinCellCount) {
					continue
				}
				if err := w.setPair(sheet, 2*col+1, row, vc.Value, vc.Count); err != nil {
					return err
				}
				row++
			}
			if fi.TooManyValues {
				if err := w.setPair(sheet, 2*col+1, row, TruncatedMarker, ""); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *writer) setPair(sheet string, col, row int, value string, count any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStr(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write %s of %s: %w", cell, sheet, err)
	}
	cell, _ = excelize.CoordinatesToCellName(col+1, row)
	return w.f.SetCellValue(sheet, cell, count)
}

func (w *writer) meta() error {
	if err := w.newSheet(MetaSheet, metaHeader); err != nil {
		return err
	}

	r := w.result
	p := r.Parameters
	entries := [][2]string{
		{MetaScanID, r.ID.String()},
		{MetaSource, r.Source},
		{MetaStarted, r.StartedAt.Format(time.RFC3339)},
		{MetaFinished, r.FinishedAt.Format(time.RFC3339)},
		{MetaScanValues, yesNo(p.ScanValues)},
		{MetaMinCellCount, strconv.Itoa(p.MinCellCount)},
		{MetaMaxValues, strconv.Itoa(p.MaxValues)},
		{MetaSampleSize, strconv.Itoa(p.SampleSize)},
		{MetaCalculateNumericStats, yesNo(p.CalculateNumericStats)},
		{MetaNumStatsSamplerSize, strconv.Itoa(p.NumStatsSamplerSize)},
	}
	for i, e := range entries {
		if err := w.setRow(MetaSheet, i+2, []any{e[0], e[1]}); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

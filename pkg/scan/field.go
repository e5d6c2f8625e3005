package scan

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ruslano69/whiterabbit/pkg/reservoir"
)

// Inferred types of fields whose source has no declared type.
const (
	TypeEmpty   = "EMPTY"
	TypeText    = "TEXT"
	TypeDate    = "DATE"
	TypeInteger = "INT"
	TypeReal    = "REAL"
	TypeVarchar = "VARCHAR"
)

// NumericStats summarizes the numeric or date values of a field. For date
// fields all values except StdDev are days since 1970-01-01 and StdDev is in days.
type NumericStats struct {
	IsDate  bool    `json:"is_date,omitempty"`
	Average float64 `json:"average"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
}

// Format renders v for the report: dates as yyyy-MM-dd, numbers as is.
func (s *NumericStats) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if s.IsDate {
		return dateFromEpochDays(math.Round(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FieldInfo collects the statistics of one column.
type FieldInfo struct {
	Name string
	// Type is the type declared by the source; empty for delimited files.
	Type string

	// RowCount is the number of rows of the table.
	RowCount int64
	// Processed is the number of values checked.
	Processed int64
	Empty     int64
	MaxLength int

	IsInteger  bool
	IsReal     bool
	IsDate     bool
	IsFreeText bool

	// TooManyValues is set when the distinct values exceeded MaxValuesInMemory
	// or MaxValues and the value list was cut.
	TooManyValues bool

	// UniqueCount is the number of distinct values seen before trimming.
	UniqueCount int

	// Stats is filled by Trim when numeric statistics were requested.
	Stats *NumericStats

	params    Parameters
	counts    valueCounts
	values    []ValueCount
	reservoir *reservoir.Reservoir
}

// NewFieldInfo creates the statistics of a column.
func NewFieldInfo(params Parameters, name, typ string) *FieldInfo {
	f := &FieldInfo{
		Name:      name,
		Type:      typ,
		IsInteger: true,
		IsReal:    true,
		IsDate:    true,
		params:    params,
		counts:    make(valueCounts),
	}
	if params.CalculateNumericStats && params.NumStatsSamplerSize > 0 {
		// size is positive, New cannot fail
		f.reservoir, _ = reservoir.New(params.NumStatsSamplerSize)
	}
	return f
}

// ProcessValue adds one value of the column.
func (f *FieldInfo) ProcessValue(value string) {
	f.Processed++
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		f.Empty++
	}

	if !f.IsFreeText {
		f.counts.add(value, 1)
		if trimmed != "" {
			if f.IsReal && !isNumber(trimmed) {
				f.IsReal = false
			}
			if f.IsInteger && !isLong(trimmed) {
				f.IsInteger = false
			}
			if f.IsDate && !isDate(trimmed) {
				f.IsDate = false
			}
		}
		if f.Processed == NForFreeTextCheck && !f.IsInteger && !f.IsReal && !f.IsDate {
			f.freeTextCheck()
		}
	} else {
		for _, w := range words(trimmed) {
			f.counts.add(w, 1)
		}
	}

	if len(f.counts) > MaxValuesInMemory {
		f.counts.keepTopN(MaxValuesInMemory / 2)
		f.TooManyValues = true
	}

	if n := utf8.RuneCountInString(value); n > f.MaxLength {
		f.MaxLength = n
	}

	if f.reservoir != nil && trimmed != "" {
		switch {
		case f.IsInteger || f.IsReal:
			if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
				f.reservoir.Add(v)
			}
		case f.IsDate:
			if v, ok := epochDays(trimmed); ok {
				f.reservoir.Add(v)
			}
		}
	}
}

func (f *FieldInfo) freeTextCheck() {
	var totalLength int64
	for v, n := range f.counts {
		totalLength += int64(utf8.RuneCountInString(v)) * n
	}
	if float64(totalLength)/float64(f.Processed) < MinAverageLengthForFreeText {
		return
	}

	f.IsFreeText = true
	wordCounts := make(valueCounts)
	for v, n := range f.counts {
		for _, w := range words(v) {
			wordCounts.add(w, n)
		}
	}
	f.counts = wordCounts
}

// Trim finalizes the field: the value list is cut to MaxValues and the
// numeric statistics are computed. Further values are ignored by the sampler.
func (f *FieldInfo) Trim() {
	f.UniqueCount = len(f.counts)
	if f.params.MaxValues > 0 && len(f.counts) > f.params.MaxValues {
		f.counts.keepTopN(f.params.MaxValues)
		f.TooManyValues = true
	}
	f.values = f.counts.sorted()

	if f.reservoir == nil {
		return
	}
	typ := f.InferredType()
	if f.reservoir.PopulationCount() > 0 && (typ == TypeInteger || typ == TypeReal || typ == TypeDate) {
		q := f.reservoir.SampleQuartiles()
		f.Stats = &NumericStats{
			IsDate:  typ == TypeDate,
			Average: f.reservoir.PopulationMean(),
			StdDev:  f.reservoir.SampleStandardDeviation(),
			Min:     f.reservoir.PopulationMinimum(),
			Q1:      q[0],
			Median:  q[1],
			Q3:      q[2],
			Max:     f.reservoir.PopulationMaximum(),
		}
	}
	f.reservoir.Trim()
	f.reservoir = nil
}

// InferredType returns the type derived from the values.
func (f *FieldInfo) InferredType() string {
	switch {
	case f.Processed == f.Empty:
		return TypeEmpty
	case f.IsFreeText:
		return TypeText
	case f.IsDate:
		return TypeDate
	case f.IsInteger:
		return TypeInteger
	case f.IsReal:
		return TypeReal
	}
	return TypeVarchar
}

// TypeDescription returns the declared type, or the inferred one when the
// source declares none.
func (f *FieldInfo) TypeDescription() string {
	if f.Type != "" {
		return f.Type
	}
	return f.InferredType()
}

// FractionEmpty is the share of empty values among the checked ones.
func (f *FieldInfo) FractionEmpty() float64 {
	if f.Processed == 0 {
		return 0
	}
	return float64(f.Empty) / float64(f.Processed)
}

// FractionUnique is the share of distinct values among the checked ones.
func (f *FieldInfo) FractionUnique() float64 {
	if f.Processed == 0 {
		return 0
	}
	return float64(f.UniqueCount) / float64(f.Processed)
}

// ValueCounts returns the trimmed value list, most frequent first.
func (f *FieldInfo) ValueCounts() []ValueCount {
	if f.values == nil {
		return f.counts.sorted()
	}
	return f.values
}

package scan

import (
	"fmt"
	"runtime"

	"github.com/ruslano69/whiterabbit/pkg/dbconfig"
)

const (
	// MaxValuesInMemory bounds the distinct values kept per field while scanning.
	MaxValuesInMemory = 100000

	// MinCellCountForCSV is the number of cells a delimited file is always read
	// for before the row sample limit applies.
	MinCellCountForCSV = 1000000

	// NForFreeTextCheck is the number of values after which a non-numeric,
	// non-date field is checked for free text.
	NForFreeTextCheck = 1000

	// MinAverageLengthForFreeText is the average value length from which a
	// field counts words instead of values.
	MinAverageLengthForFreeText = 100
)

// Parameters controls what a scan collects.
type Parameters struct {
	ScanValues            bool
	MinCellCount          int
	MaxValues             int
	SampleSize            int // -1 scans all rows
	CalculateNumericStats bool
	NumStatsSamplerSize   int

	// Parallelism is the number of tables scanned concurrently.
	Parallelism int
}

// DefaultParameters returns the defaults of the scan configuration fields.
func DefaultParameters() Parameters {
	return ParametersFromSettings(dbconfig.DefaultScanSettings())
}

// ParametersFromSettings converts validated ini scan settings.
func ParametersFromSettings(s dbconfig.ScanSettings) Parameters {
	return Parameters{
		ScanValues:            s.ScanValues,
		MinCellCount:          s.MinCellCount,
		MaxValues:             s.MaxValues,
		SampleSize:            s.SampleSize,
		CalculateNumericStats: s.CalculateNumericStats,
		NumStatsSamplerSize:   s.NumStatsSamplerSize,
		Parallelism:           1,
	}
}

// Validate checks parameter ranges.
func (p Parameters) Validate() error {
	if p.SampleSize < -1 {
		return fmt.Errorf("sample size must be -1 (all rows) or non-negative, got %d", p.SampleSize)
	}
	if p.MinCellCount < 0 {
		return fmt.Errorf("min cell count must be non-negative, got %d", p.MinCellCount)
	}
	if p.MaxValues < 0 {
		return fmt.Errorf("max values must be non-negative, got %d", p.MaxValues)
	}
	if p.CalculateNumericStats && p.NumStatsSamplerSize <= 0 {
		return fmt.Errorf("numeric stats sampler size must be positive, got %d", p.NumStatsSamplerSize)
	}
	return nil
}

func (p Parameters) parallelism() int {
	switch {
	case p.Parallelism > 0:
		return p.Parallelism
	case p.Parallelism < 0:
		return runtime.NumCPU()
	}
	return 1
}

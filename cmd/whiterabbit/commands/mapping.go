package commands

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/whiterabbit/pkg/mapping"
)

// MappingOptions describes the creation of a mapping document from a report.
type MappingOptions struct {
	ReportPath string
	// CDMPath is an optional CDM field CSV used as the target model.
	CDMPath string
	// Output is a .json or .json.gz file.
	Output string
}

// MappingFromReport builds an ETL mapping document whose source is a scan
// report. The document has no mappings yet.
func MappingFromReport(opts MappingOptions) (*mapping.ETL, error) {
	source, err := mapping.FromScanReport(opts.ReportPath)
	if err != nil {
		return nil, err
	}

	target := &mapping.Database{}
	if opts.CDMPath != "" {
		if target, err = mapping.LoadCDMCSV(opts.CDMPath); err != nil {
			return nil, err
		}
	}

	etl := mapping.NewETL(source, target)
	output := opts.Output
	if output == "" {
		output = strings.TrimSuffix(opts.ReportPath, ".xlsx") + ".json.gz"
	}
	if err := etl.Save(output); err != nil {
		return nil, fmt.Errorf("failed to save mapping: %w", err)
	}

	log.Info().
		Str("file", output).
		Int("source_tables", len(source.Tables)).
		Int("target_tables", len(target.Tables)).
		Msg("Mapping document created")
	return etl, nil
}

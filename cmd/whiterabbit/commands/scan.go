package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/whiterabbit/pkg/dbconfig"
	"github.com/ruslano69/whiterabbit/pkg/processors"
	"github.com/ruslano69/whiterabbit/pkg/report"
	"github.com/ruslano69/whiterabbit/pkg/retry"
	"github.com/ruslano69/whiterabbit/pkg/scan"
)

// DefaultReportName is the report file written to the working folder.
const DefaultReportName = "ScanReport.xlsx"

// ScanOptions describes a scan run.
type ScanOptions struct {
	Settings *dbconfig.DbSettings
	Params   scan.Parameters

	// Tables overrides the tables of Settings.
	Tables []string

	// ReportPath defaults to ScanReport.xlsx in the working folder.
	ReportPath string

	// Checksum writes an XXH3 sidecar next to the report.
	Checksum bool

	// Retry applies to opening the source.
	Retry retry.Config
}

// ScanOutput is what a scan run produced.
type ScanOutput struct {
	Result       *scan.Result
	ReportPath   string
	Checksum     string
	ChecksumPath string
}

// Files returns the report and, when written, its checksum sidecar.
func (o *ScanOutput) Files() []string {
	files := []string{o.ReportPath}
	if o.ChecksumPath != "" {
		files = append(files, o.ChecksumPath)
	}
	return files
}

// Summary returns the result summary with the report reference.
func (o *ScanOutput) Summary() *scan.Summary {
	s := o.Result.Summary()
	s.Report = o.ReportPath
	s.Checksum = o.Checksum
	return &s
}

// ReportPath returns the report location for settings.
func ReportPath(settings *dbconfig.DbSettings, output string) string {
	if output == "" {
		output = DefaultReportName
	}
	if filepath.IsAbs(output) || settings == nil || settings.WorkingFolder == "" {
		return output
	}
	return filepath.Join(settings.WorkingFolder, output)
}

// RunScan opens the source, scans the tables and writes the report.
func RunScan(ctx context.Context, opts ScanOptions) (*ScanOutput, error) {
	source, err := openSource(ctx, opts.Settings, opts.Retry)
	if err != nil {
		return nil, err
	}
	defer source.Close(ctx)

	configured := opts.Tables
	if len(configured) == 0 {
		configured = opts.Settings.Tables
	}
	tables, err := scan.SelectTables(ctx, source, configured)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables found to scan in %s", source.Name())
	}

	result, err := scan.NewScanner(source, opts.Params).Run(ctx, tables)
	if err != nil {
		return nil, err
	}

	out := &ScanOutput{
		Result:     result,
		ReportPath: opts.ReportPath,
	}
	if out.ReportPath == "" {
		out.ReportPath = ReportPath(opts.Settings, "")
	}
	if dir := filepath.Dir(out.ReportPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create report folder: %w", err)
		}
	}
	if err := report.Write(result, out.ReportPath); err != nil {
		return nil, err
	}
	log.Info().Msgf("Scan report generated: %s", out.ReportPath)

	if opts.Checksum {
		sum, err := processors.WriteChecksumFile(out.ReportPath)
		if err != nil {
			return nil, err
		}
		out.Checksum = sum
		out.ChecksumPath = out.ReportPath + processors.ChecksumExtension
		log.Info().Str("xxh3", sum).Str("file", out.ChecksumPath).Msg("Report checksum written")
	}

	return out, nil
}

// openSource connects with retries; configuration errors are not retried.
func openSource(ctx context.Context, settings *dbconfig.DbSettings, cfg retry.Config) (scan.Source, error) {
	retryer, err := retry.NewRetryer(cfg)
	if err != nil {
		return nil, err
	}
	defer retryer.Close()

	var source scan.Source
	err = retryer.Do(ctx, func(ctx context.Context) error {
		s, err := scan.OpenSource(ctx, settings)
		if err != nil {
			var cfgErr *dbconfig.ConfigError
			if errors.Is(err, scan.ErrSASUnsupported) || errors.As(err, &cfgErr) {
				return retry.Permanent(err)
			}
			return err
		}
		source = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	return source, nil
}

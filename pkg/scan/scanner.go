package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is the number of rows between context checks.
const cancelCheckInterval = 10000

// Scanner collects field statistics of the tables of a source.
type Scanner struct {
	source Source
	params Parameters
	logger zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger replaces the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithParallelism sets the number of tables scanned at once; -1 uses one
// worker per CPU.
func WithParallelism(n int) Option {
	return func(s *Scanner) {
		s.params.Parallelism = n
	}
}

// NewScanner creates a scanner over source.
func NewScanner(source Source, params Parameters, opts ...Option) *Scanner {
	s := &Scanner{
		source: source,
		params: params,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scans tables. Tables are scanned concurrently up to the configured
// parallelism; the result keeps the order of tables. The first failing table
// cancels the scan.
func (s *Scanner) Run(ctx context.Context, tables []string) (*Result, error) {
	if err := s.params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan parameters: %w", err)
	}

	result := &Result{
		ID:         uuid.New(),
		Source:     s.source.Name(),
		StartedAt:  time.Now(),
		Parameters: s.params,
		Tables:     make([]*TableResult, len(tables)),
	}

	s.logger.Info().Str("scan_id", result.ID.String()).Msgf("Started new scan of %d tables...", len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.params.parallelism())
	for i, table := range tables {
		g.Go(func() error {
			s.logger.Info().Msgf("Scanning table %s", table)
			t, err := s.scanTable(gctx, table)
			if err != nil {
				tablesScannedTotal.WithLabelValues(result.Source, "error").Inc()
				return fmt.Errorf("scan table %s: %w", table, err)
			}
			tablesScannedTotal.WithLabelValues(result.Source, "ok").Inc()
			result.Tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.FinishedAt = time.Now()
	s.logger.Info().
		Str("scan_id", result.ID.String()).
		Dur("duration", result.Duration()).
		Msg("Scan finished")
	return result, nil
}

func (s *Scanner) scanTable(ctx context.Context, name string) (*TableResult, error) {
	start := time.Now()

	data, err := s.source.ReadTable(ctx, name, s.params)
	if err != nil {
		return nil, err
	}
	defer data.Close()

	table := &TableResult{
		Name:     name,
		RowCount: data.RowCount,
		Fields:   make([]*FieldInfo, len(data.Fields)),
	}
	for i, f := range data.Fields {
		table.Fields[i] = NewFieldInfo(s.params, f.Name, f.Type)
	}

	if data.Rows != nil {
		if err := s.scanRows(ctx, data, table); err != nil {
			return nil, err
		}
	}

	if table.RowCount < 0 {
		if data.CountRows == nil {
			return nil, fmt.Errorf("row count of %s is unknown", name)
		}
		if table.RowCount, err = data.CountRows(); err != nil {
			return nil, err
		}
	}

	for _, f := range table.Fields {
		f.RowCount = table.RowCount
		f.Trim()
	}

	table.Duration = time.Since(start)
	rowsProcessedTotal.WithLabelValues(s.source.Name()).Add(float64(table.RowsChecked))
	tableScanDuration.WithLabelValues(s.source.Name()).Observe(table.Duration.Seconds())

	s.logger.Debug().
		Str("table", name).
		Int64("rows", table.RowCount).
		Int64("rows_checked", table.RowsChecked).
		Dur("duration", table.Duration).
		Msg("Table scanned")
	return table, nil
}

// scanRows feeds the row values to the fields. Columns are matched to fields
// by name ignoring case; a field without a column receives empty values.
func (s *Scanner) scanRows(ctx context.Context, data *TableData, table *TableResult) error {
	byName := make(map[string]int, len(table.Fields))
	for i, f := range table.Fields {
		key := strings.ToLower(f.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = i
		}
	}

	matched := make([]bool, len(table.Fields))
	columns := data.Rows.Columns()
	index := make([]int, len(columns))
	for i, c := range columns {
		idx, ok := byName[strings.ToLower(c)]
		if !ok || matched[idx] {
			index[i] = -1
			continue
		}
		index[i] = idx
		matched[idx] = true
	}

	for data.Rows.Next() {
		table.RowsChecked++
		if table.RowsChecked%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		values := data.Rows.Values()
		for i, idx := range index {
			if idx >= 0 {
				table.Fields[idx].ProcessValue(values[i])
			}
		}
		for i, ok := range matched {
			if !ok {
				table.Fields[i].ProcessValue("")
			}
		}
	}
	return data.Rows.Err()
}

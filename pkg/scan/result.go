package scan

import (
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of a scan.
type Result struct {
	ID         uuid.UUID
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Parameters Parameters
	Tables     []*TableResult
}

// TableResult holds the statistics of one table.
type TableResult struct {
	Name string
	// RowCount is the number of rows of the table.
	RowCount int64
	// RowsChecked is the number of rows whose values were scanned.
	RowsChecked int64
	Fields      []*FieldInfo
	Duration    time.Duration
}

// EmptyFieldCount returns the number of fields without any non-empty value.
func (t *TableResult) EmptyFieldCount() int {
	n := 0
	for _, f := range t.Fields {
		if f.Processed > 0 && f.Processed == f.Empty {
			n++
		}
	}
	return n
}

// Summary is the compact description of a scan published to integrations.
type Summary struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Tables     []TableSummary `json:"tables"`
	TotalRows  int64          `json:"total_rows"`
	Report     string         `json:"report,omitempty"`
	Checksum   string         `json:"checksum,omitempty"`
}

type TableSummary struct {
	Name        string `json:"name"`
	RowCount    int64  `json:"row_count"`
	RowsChecked int64  `json:"rows_checked"`
	Fields      int    `json:"fields"`
	EmptyFields int    `json:"empty_fields"`
	DurationMs  int64  `json:"duration_ms"`
}

// Summary returns the compact description of the result.
func (r *Result) Summary() Summary {
	s := Summary{
		ID:         r.ID.String(),
		Source:     r.Source,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Tables:     make([]TableSummary, 0, len(r.Tables)),
	}
	for _, t := range r.Tables {
		s.TotalRows += t.RowCount
		s.Tables = append(s.Tables, TableSummary{
			Name:        t.Name,
			RowCount:    t.RowCount,
			RowsChecked: t.RowsChecked,
			Fields:      len(t.Fields),
			EmptyFields: t.EmptyFieldCount(),
			DurationMs:  t.Duration.Milliseconds(),
		})
	}
	return s
}

// Duration is the wall time of the scan.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

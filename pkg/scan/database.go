package scan

import (
	"context"
	"fmt"

	"github.com/ruslano69/whiterabbit/pkg/adapters"
)

// DatabaseSource scans tables through a connected adapter.
type DatabaseSource struct {
	adapter adapters.Adapter
	name    string
}

// NewDatabaseSource wraps a connected adapter.
func NewDatabaseSource(adapter adapters.Adapter) *DatabaseSource {
	return &DatabaseSource{adapter: adapter, name: adapter.GetDatabaseType()}
}

// OpenDatabaseSource connects through the adapter factory.
func OpenDatabaseSource(ctx context.Context, cfg adapters.Config) (*DatabaseSource, error) {
	adapter, err := adapters.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewDatabaseSource(adapter), nil
}

func (s *DatabaseSource) Name() string {
	return s.name
}

// Adapter returns the underlying adapter.
func (s *DatabaseSource) Adapter() adapters.Adapter {
	return s.adapter
}

func (s *DatabaseSource) TableNames(ctx context.Context) ([]string, error) {
	return s.adapter.GetTableNames(ctx)
}

// ReadTable reads the structure and row count; values are sampled only when
// the scan collects them.
func (s *DatabaseSource) ReadTable(ctx context.Context, table string, params Parameters) (*TableData, error) {
	fields, err := s.adapter.GetTableFields(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("table %s has no columns or does not exist", table)
	}

	count, err := s.adapter.GetRowCount(ctx, table)
	if err != nil {
		return nil, err
	}

	data := &TableData{Fields: fields, RowCount: count}
	if !params.ScanValues {
		return data, nil
	}

	rows, err := s.adapter.SampleRows(ctx, table, count, int64(params.SampleSize))
	if err != nil {
		return nil, err
	}
	data.Rows = rows
	return data, nil
}

func (s *DatabaseSource) Close(ctx context.Context) error {
	return s.adapter.Close(ctx)
}

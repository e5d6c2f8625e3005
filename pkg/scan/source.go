package scan

import (
	"context"
	"errors"

	"github.com/ruslano69/whiterabbit/pkg/adapters"
)

// ErrSASUnsupported is returned when a SAS7BDAT source is opened.
var ErrSASUnsupported = errors.New("SAS7BDAT files are not supported")

// Source is a scannable set of tables.
type Source interface {
	// Name identifies the source in logs, metrics and the report.
	Name() string

	// TableNames lists the tables of the source.
	TableNames(ctx context.Context) ([]string, error)

	// ReadTable opens a table for scanning.
	ReadTable(ctx context.Context, table string, params Parameters) (*TableData, error)

	Close(ctx context.Context) error
}

// TableData is an opened table.
type TableData struct {
	Fields []adapters.Field

	// RowCount is the number of rows of the table; -1 when it is only known
	// after the rows are read, in which case CountRows must be set.
	RowCount int64

	// Rows yields the values to scan. Nil when values are not read.
	Rows adapters.RowIterator

	// CountRows returns the total row count once Rows is exhausted.
	CountRows func() (int64, error)
}

// Close releases the row iterator.
func (t *TableData) Close() error {
	if t.Rows == nil {
		return nil
	}
	return t.Rows.Close()
}

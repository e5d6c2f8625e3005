package base

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ruslano69/whiterabbit/pkg/adapters"
)

var _ adapters.RowIterator = (*RowIterator)(nil)

// RowIterator читает *sql.Rows и отдает значения строками.
// Повторяющиеся имена колонок пропускаются: остается первая колонка с именем.
type RowIterator struct {
	rows    *sql.Rows
	columns []string
	keep    []int
	raw     []any
	values  []string
	err     error
	cancel  context.CancelFunc
}

// NewRowIterator создает итератор над результатом запроса
func NewRowIterator(rows *sql.Rows) (*RowIterator, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	it := &RowIterator{
		rows: rows,
		raw:  make([]any, len(names)),
	}

	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		it.columns = append(it.columns, name)
		it.keep = append(it.keep, i)
	}
	it.values = make([]string, len(it.columns))
	return it, nil
}

// Columns возвращает имена колонок без повторов
func (it *RowIterator) Columns() []string {
	return it.columns
}

// Next читает следующую строку
func (it *RowIterator) Next() bool {
	if it.err != nil || !it.rows.Next() {
		return false
	}

	ptrs := make([]any, len(it.raw))
	for i := range it.raw {
		ptrs[i] = &it.raw[i]
	}
	if err := it.rows.Scan(ptrs...); err != nil {
		it.err = fmt.Errorf("failed to scan row: %w", err)
		return false
	}

	for i, idx := range it.keep {
		it.values[i] = FormatValue(it.raw[idx])
	}
	return true
}

// Values возвращает значения текущей строки.
// Срез переиспользуется при следующем Next.
func (it *RowIterator) Values() []string {
	return it.values
}

// Err возвращает ошибку чтения
func (it *RowIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.rows.Err()
}

// Close закрывает результат
func (it *RowIterator) Close() error {
	err := it.rows.Close()
	if it.cancel != nil {
		it.cancel()
	}
	return err
}

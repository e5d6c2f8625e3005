// Package base содержит общую часть вендорных адаптеров.
//
// # Основные компоненты
//
// Dialect - SQL-шаблоны сканера по типам СУБД:
//   - UseStatement() - смена текущей базы/схемы
//   - TablesQuery(), FieldsQuery() - списки таблиц и колонок
//   - RowCountQuery() - COUNT_BIG(*) для семейства SQL Server, COUNT(*) для остальных
//   - SampleQuery() - случайная выборка (TABLESAMPLE, ORDER BY RAND(), SAMPLE(pct), ...)
//
// SQLAdapter - реализация adapters.Adapter поверх database/sql и Dialect.
//
// RowIterator и FormatValue - чтение результата строками.
//
// # Использование
//
// Вендорный адаптер встраивает *SQLAdapter и открывает его своим драйвером:
//
//	type Adapter struct {
//	    *base.SQLAdapter
//	}
//
//	func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
//	    sqlAdapter, err := base.Open(ctx, "mysql", base.KindMySQL, cfg)
//	    if err != nil {
//	        return err
//	    }
//	    a.SQLAdapter = sqlAdapter
//	    return nil
//	}
package base

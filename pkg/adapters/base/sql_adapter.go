package base

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ruslano69/whiterabbit/pkg/adapters"
)

// SQLAdapter - общая реализация операций adapters.Adapter поверх database/sql.
// Вендорные адаптеры встраивают его и отличаются драйвером и диалектом.
type SQLAdapter struct {
	db       *sql.DB
	dialect  *Dialect
	database string
	timeout  time.Duration
}

// NewSQLAdapter создает SQLAdapter над открытым пулом
func NewSQLAdapter(db *sql.DB, dialect *Dialect, cfg adapters.Config) *SQLAdapter {
	return &SQLAdapter{
		db:       db,
		dialect:  dialect,
		database: cfg.Database,
		timeout:  cfg.Timeout,
	}
}

// Open открывает пул database/sql, проверяет подключение и создает SQLAdapter
func Open(ctx context.Context, driverName, kind string, cfg adapters.Config) (*SQLAdapter, error) {
	dialect, err := NewDialect(kind)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	}

	// Проверяем подключение
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewSQLAdapter(db, dialect, cfg), nil
}

// DB возвращает *sql.DB для прямого доступа
func (s *SQLAdapter) DB() *sql.DB {
	return s.db
}

// Dialect возвращает SQL-диалект адаптера
func (s *SQLAdapter) Dialect() *Dialect {
	return s.dialect
}

// Database возвращает текущую базу/схему
func (s *SQLAdapter) Database() string {
	return s.database
}

// Close закрывает пул
func (s *SQLAdapter) Close(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping проверяет доступность БД
func (s *SQLAdapter) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("adapter not connected")
	}
	return s.db.PingContext(ctx)
}

// GetDatabaseType возвращает тип СУБД
func (s *SQLAdapter) GetDatabaseType() string {
	if s == nil {
		return ""
	}
	return s.dialect.kind
}

// Use переключает базу. Команда выполняется на одном соединении пула и служит
// проверкой существования базы; последующие запросы квалифицируют имена таблиц.
func (s *SQLAdapter) Use(ctx context.Context, database string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("adapter not connected")
	}
	if stmt := s.dialect.UseStatement(database); stmt != "" {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to switch to %s: %w", database, err)
		}
	}
	s.database = database
	return nil
}

// GetDatabaseVersion возвращает версию СУБД
func (s *SQLAdapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	query := s.dialect.VersionQuery()
	if query == "" {
		return s.dialect.kind, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var version string
	if err := s.db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// GetTableNames возвращает таблицы и представления текущей базы
func (s *SQLAdapter) GetTableNames(ctx context.Context) ([]string, error) {
	query, err := s.dialect.TablesQuery(s.database)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name.String)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// GetTableFields возвращает колонки таблицы
func (s *SQLAdapter) GetTableFields(ctx context.Context, table string) ([]adapters.Field, error) {
	query, err := s.dialect.FieldsQuery(s.database, table)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if query == "" {
		return s.fieldsFromMetadata(ctx, table)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get fields of %s: %w", table, err)
	}
	defer rows.Close()

	var fields []adapters.Field
	for rows.Next() {
		var name, typ sql.NullString
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan field of %s: %w", table, err)
		}
		fields = append(fields, adapters.Field{Name: name.String, Type: typ.String})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fields of %s: %w", table, err)
	}
	return fields, nil
}

func (s *SQLAdapter) fieldsFromMetadata(ctx context.Context, table string) ([]adapters.Field, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.MetadataQuery(s.database, table))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata of %s: %w", table, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types of %s: %w", table, err)
	}

	fields := make([]adapters.Field, 0, len(types))
	for _, ct := range types {
		typ := ct.DatabaseTypeName()
		if typ == "" && ct.ScanType() != nil {
			typ = ct.ScanType().String()
		}
		fields = append(fields, adapters.Field{Name: ct.Name(), Type: typ})
	}
	return fields, nil
}

// GetRowCount возвращает количество строк таблицы
func (s *SQLAdapter) GetRowCount(ctx context.Context, table string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int64
	if err := s.db.QueryRowContext(ctx, s.dialect.RowCountQuery(s.database, table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	return count, nil
}

// SampleRows возвращает итератор по случайной выборке строк таблицы.
// Таймаут действует до закрытия итератора.
func (s *SQLAdapter) SampleRows(ctx context.Context, table string, rowCount, sampleSize int64) (adapters.RowIterator, error) {
	query, err := s.dialect.SampleQuery(s.database, table, rowCount, sampleSize)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, query)
}

// Query выполняет произвольный запрос и возвращает строковый итератор
func (s *SQLAdapter) Query(ctx context.Context, query string, args ...any) (adapters.RowIterator, error) {
	ctx, cancel := s.withTimeout(ctx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	it, err := NewRowIterator(rows)
	if err != nil {
		rows.Close()
		cancel()
		return nil, err
	}
	it.cancel = cancel
	return it, nil
}

func (s *SQLAdapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ruslano69/whiterabbit/pkg/adapters"
	"github.com/ruslano69/whiterabbit/pkg/adapters/base"
)

// AdapterType идентификатор PostgreSQL адаптера
const AdapterType = base.KindPostgreSQL

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с PostgreSQL.
// Соединения держит pgxpool, запросы сканера идут через database/sql обертку пула.
type Adapter struct {
	*base.SQLAdapter
	pool *pgxpool.Pool
}

// Connect устанавливает подключение к PostgreSQL
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	dialect, err := base.NewDialect(AdapterType)
	if err != nil {
		return err
	}

	// Парсим connection string
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	// Настраиваем pool из конфига
	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	} else {
		config.MaxConns = 10 // default
	}

	if cfg.MinConns > 0 {
		config.MinConns = int32(cfg.MinConns)
	} else {
		config.MinConns = 2 // default
	}

	// Выборки сканера - разовые запросы, prepared statements не нужны
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	// Создаем connection pool
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.pool = pool
	a.SQLAdapter = base.NewSQLAdapter(stdlib.OpenDBFromPool(pool), dialect, cfg)
	return nil
}

// Close закрывает connection pool
func (a *Adapter) Close(ctx context.Context) error {
	err := a.SQLAdapter.Close(ctx)
	if a.pool != nil {
		a.pool.Close()
	}
	return err
}

// Pool возвращает *pgxpool.Pool для прямого доступа
func (a *Adapter) Pool() *pgxpool.Pool {
	return a.pool
}

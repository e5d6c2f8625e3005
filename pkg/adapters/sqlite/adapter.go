package sqlite

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/ruslano69/whiterabbit/pkg/adapters"
	"github.com/ruslano69/whiterabbit/pkg/adapters/base"
)

const driverSqlite = "sqlite"

// AdapterType идентификатор SQLite адаптера
const AdapterType = base.KindSQLite

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с SQLite.
// DSN - путь к файлу базы или ":memory:".
type Adapter struct {
	*base.SQLAdapter
}

// Connect открывает файл базы
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	// База в памяти существует только в рамках одного соединения
	if isMemory(cfg.DSN) {
		cfg.MaxConns = 1
	}

	sqlAdapter, err := base.Open(ctx, driverSqlite, AdapterType, cfg)
	if err != nil {
		return err
	}
	a.SQLAdapter = sqlAdapter

	a.applyPragmas(ctx)
	return nil
}

// applyPragmas настраивает соединение под чтение больших таблиц.
// ORDER BY RANDOM() сортирует во временном хранилище.
func (a *Adapter) applyPragmas(ctx context.Context) {
	pragmas := []string{
		// 64 MB кеша страниц
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := a.DB().ExecContext(ctx, pragma); err != nil {
			log.Warn().Err(err).Str("pragma", pragma).Msg("SQLite pragma failed")
		}
	}
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || dsn == "" || strings.Contains(dsn, "mode=memory")
}

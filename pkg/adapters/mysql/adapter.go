package mysql

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/ruslano69/whiterabbit/pkg/adapters"
	"github.com/ruslano69/whiterabbit/pkg/adapters/base"
)

// AdapterType идентификатор MySQL адаптера
const AdapterType = base.KindMySQL

var _ adapters.Adapter = (*Adapter)(nil)

// Adapter реализует adapters.Adapter для MySQL
type Adapter struct {
	*base.SQLAdapter
}

func init() {
	// Регистрируем MySQL адаптер в фабрике
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Connect подключается к MySQL базе данных.
// DATETIME читается как time.Time, чтобы даты форматировались единообразно.
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	mysqlCfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}
	mysqlCfg.ParseTime = true

	cfg.DSN = mysqlCfg.FormatDSN()
	sqlAdapter, err := base.Open(ctx, "mysql", AdapterType, cfg)
	if err != nil {
		return err
	}
	a.SQLAdapter = sqlAdapter
	return nil
}

// Package odbc подключает СУБД, для которых нет нативного Go-драйвера,
// через ODBC: Oracle, Teradata, MS Access, BigQuery и Snowflake.
//
// DSN - строка подключения ODBC с именем драйвера:
//
//	Driver=Oracle;DBQ=host/xe;UID=scott;PWD=tiger;
//	Driver=SnowflakeDSIIDriver;Server=acct.snowflakecomputing.com;Warehouse=wh;Database=db;Schema=s;UID=u;PWD=p;
//
// Драйвер конкретной СУБД должен быть установлен в менеджере ODBC системы.
package odbc

import (
	"context"

	_ "github.com/alexbrainman/odbc" // ODBC driver manager bindings

	"github.com/ruslano69/whiterabbit/pkg/adapters"
	"github.com/ruslano69/whiterabbit/pkg/adapters/base"
)

// Kinds - типы СУБД, обслуживаемые через ODBC
var Kinds = []string{
	base.KindOracle,
	base.KindTeradata,
	base.KindMSAccess,
	base.KindBigQuery,
	base.KindSnowflake,
}

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	for _, kind := range Kinds {
		kind := kind
		adapters.Register(kind, func() adapters.Adapter {
			return &Adapter{kind: kind}
		})
	}
}

// Adapter реализует adapters.Adapter поверх ODBC
type Adapter struct {
	*base.SQLAdapter
	kind string
}

// Connect открывает ODBC-соединение.
// По умолчанию используется одно соединение: часть драйверов (MS Access,
// Teradata) не допускает параллельных сессий.
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 1
	}

	sqlAdapter, err := base.Open(ctx, "odbc", a.kind, cfg)
	if err != nil {
		return err
	}
	a.SQLAdapter = sqlAdapter
	return nil
}

// Kind возвращает тип СУБД адаптера
func (a *Adapter) Kind() string {
	return a.kind
}

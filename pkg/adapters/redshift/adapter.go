// Package redshift - адаптер Amazon Redshift.
// Redshift говорит на протоколе PostgreSQL 8.0, поэтому используется драйвер
// lib/pq без расширенного протокола pgx.
package redshift

import (
	"context"

	_ "github.com/lib/pq" // PostgreSQL wire driver

	"github.com/ruslano69/whiterabbit/pkg/adapters"
	"github.com/ruslano69/whiterabbit/pkg/adapters/base"
)

// AdapterType идентификатор Redshift адаптера
const AdapterType = base.KindRedshift

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter реализует adapters.Adapter для Redshift
type Adapter struct {
	*base.SQLAdapter
}

// Connect подключается к кластеру Redshift
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	sqlAdapter, err := base.Open(ctx, "postgres", AdapterType, cfg)
	if err != nil {
		return err
	}
	a.SQLAdapter = sqlAdapter
	return nil
}

package mssql

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // MS SQL Server driver

	"github.com/ruslano69/whiterabbit/pkg/adapters"
	"github.com/ruslano69/whiterabbit/pkg/adapters/base"
)

// Adapter types served by this package.
const (
	AdapterType      = base.KindSQLServer
	AdapterTypeAzure = base.KindAzure
	AdapterTypePDW   = base.KindPDW
)

var _ adapters.Adapter = (*Adapter)(nil)

// Adapter implements adapters.Adapter for SQL Server, Azure SQL Database and
// Parallel Data Warehouse. The three differ only in their SQL dialect.
type Adapter struct {
	*base.SQLAdapter
	kind string

	// Version information
	serverVersion    int    // Major version: 11=2012, 13=2016, 14=2017, 15=2019, 16=2022
	serverVersionStr string // Full version string
}

func init() {
	for _, kind := range []string{AdapterType, AdapterTypeAzure, AdapterTypePDW} {
		kind := kind
		adapters.Register(kind, func() adapters.Adapter {
			return &Adapter{kind: kind}
		})
	}
}

// Connect implements adapters.Adapter interface.
// The DSN is a sqlserver:// URL; the database is selected with its database parameter.
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	if a.kind == "" {
		a.kind = AdapterType
	}

	sqlAdapter, err := base.Open(ctx, "sqlserver", a.kind, cfg)
	if err != nil {
		return err
	}
	a.SQLAdapter = sqlAdapter

	a.detectVersion(ctx)
	return nil
}

// detectVersion reads the product version. PDW and some Azure tiers do not
// expose SERVERPROPERTY, so a failure leaves the version unknown.
func (a *Adapter) detectVersion(ctx context.Context) {
	var version sql.NullString
	if err := a.DB().QueryRowContext(ctx, "SELECT SERVERPROPERTY('ProductVersion')").Scan(&version); err != nil {
		return
	}
	a.serverVersionStr = version.String
	a.serverVersion = parseServerVersion(version.String)
}

func parseServerVersion(version string) int {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return n
}

// ServerVersion returns the major product version, 0 when unknown.
func (a *Adapter) ServerVersion() int {
	return a.serverVersion
}

// ServerVersionName returns a human readable product name.
func (a *Adapter) ServerVersionName() string {
	switch {
	case a.serverVersion >= 16:
		return "SQL Server 2022"
	case a.serverVersion == 15:
		return "SQL Server 2019"
	case a.serverVersion == 14:
		return "SQL Server 2017"
	case a.serverVersion == 13:
		return "SQL Server 2016"
	case a.serverVersion == 12:
		return "SQL Server 2014"
	case a.serverVersion == 11:
		return "SQL Server 2012"
	case a.serverVersion > 0:
		return "SQL Server " + a.serverVersionStr
	}
	return "unknown"
}

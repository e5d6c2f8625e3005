package dbconfig

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/ruslano69/whiterabbit/pkg/adapters"
)

// Default ODBC driver names, overridable with ODBC_DRIVER.
var defaultOdbcDrivers = map[DbType]string{
	Oracle:    "Oracle",
	Teradata:  "Teradata Database ODBC Driver 17.20",
	MSAccess:  "Microsoft Access Driver (*.mdb, *.accdb)",
	BigQuery:  "Simba ODBC Driver for Google BigQuery",
	Snowflake: "SnowflakeDSIIDriver",
}

// DefaultTimeout bounds a single metadata or sampling query.
const DefaultTimeout = 30 * time.Minute

// AdapterConfig builds the adapter configuration (driver type, DSN and the database
// or schema that holds the tables) for a database source.
func (s *DbSettings) AdapterConfig() (adapters.Config, error) {
	if s.SourceType != SourceDatabase || !s.DbType.IsDatabase() {
		return adapters.Config{}, configErrorf("%s is not a database source", s.DbType)
	}

	cfg := adapters.Config{
		Type:     s.DbType.AdapterType(),
		Database: s.Database,
		Timeout:  DefaultTimeout,
	}

	var err error
	switch s.DbType {
	case PostgreSQL:
		cfg.DSN, err = s.postgresDSN(5432)
	case Redshift:
		cfg.DSN, err = s.postgresDSN(5439)
	case MySQL:
		cfg.DSN = s.mysqlDSN()
	case SQLServer, PDW:
		cfg.DSN = s.sqlServerDSN(false)
	case Azure:
		cfg.DSN = s.sqlServerDSN(true)
	case SQLite:
		cfg.DSN = s.Server
		if cfg.DSN == "" {
			cfg.DSN = s.Database
		}
	case Oracle, Teradata, MSAccess, BigQuery, Snowflake:
		cfg.DSN, err = s.odbcConnectionString()
	default:
		err = configErrorf("no connection settings for %s", s.DbType)
	}
	if err != nil {
		return adapters.Config{}, err
	}
	return cfg, nil
}

// postgresDSN accepts "host/database", "host:port/database", a postgres:// URL or a
// jdbc:postgresql:// URL as server location. The ini database names the schema.
func (s *DbSettings) postgresDSN(defaultPort int) (string, error) {
	server := strings.TrimPrefix(s.Server, "jdbc:")

	u := &url.URL{Scheme: "postgres"}
	if strings.HasPrefix(server, "postgres://") || strings.HasPrefix(server, "postgresql://") {
		parsed, err := url.Parse(server)
		if err != nil {
			return "", fmt.Errorf("invalid server location %q: %w", s.Server, err)
		}
		u = parsed
		u.Scheme = "postgres"
	} else {
		host, database, _ := strings.Cut(server, "/")
		if host == "" {
			return "", configErrorf("server location must be given as host/database, got %q", s.Server)
		}
		u.Host = host
		u.Path = "/" + database
	}

	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), fmt.Sprint(defaultPort))
	}
	if s.User != "" {
		u.User = url.UserPassword(s.User, s.Password)
	}
	return u.String(), nil
}

func (s *DbSettings) mysqlDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = s.Server
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		cfg.Addr = net.JoinHostPort(cfg.Addr, "3306")
	}
	cfg.DBName = s.Database
	return cfg.FormatDSN()
}

// sqlServerDSN builds a sqlserver:// URL. A domain turns the login into DOMAIN\user
// (NTLM); an empty user selects integrated authentication.
func (s *DbSettings) sqlServerDSN(encrypt bool) string {
	host, instance, _ := strings.Cut(s.Server, `\`)
	u := &url.URL{Scheme: "sqlserver", Host: host}
	if instance != "" {
		u.Path = instance
	}
	if s.User != "" {
		user := s.User
		if s.Domain != "" {
			user = s.Domain + `\` + s.User
		}
		u.User = url.UserPassword(user, s.Password)
	}

	q := url.Values{}
	if s.Database != "" {
		q.Set("database", strings.Trim(s.Database, "[]"))
	}
	if encrypt {
		q.Set("encrypt", "true")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *DbSettings) odbcConnectionString() (string, error) {
	driver := s.OdbcDriver
	if driver == "" {
		driver = defaultOdbcDrivers[s.DbType]
	}

	var parts [][2]string
	parts = append(parts, [2]string{"Driver", driver})

	switch s.DbType {
	case Oracle:
		parts = append(parts, [2]string{"DBQ", s.Server})
	case Teradata:
		parts = append(parts, [2]string{"DBCName", s.Server}, [2]string{"Database", s.Database})
	case MSAccess:
		parts = append(parts, [2]string{"DBQ", s.Server})
	case BigQuery:
		// Service account login: USER_NAME holds the account e-mail and PASSWORD
		// the path of its key file.
		parts = append(parts,
			[2]string{"Catalog", s.Server},
			[2]string{"DefaultDataset", s.Domain},
			[2]string{"OAuthMechanism", "0"},
			[2]string{"Email", s.User},
			[2]string{"KeyFilePath", s.Password})
		return joinOdbc(parts), nil
	case Snowflake:
		warehouse, database, schema, err := SplitSnowflakeDatabase(s.Database)
		if err != nil {
			return "", err
		}
		server := strings.TrimPrefix(strings.TrimPrefix(s.Server, "https://"), "http://")
		parts = append(parts,
			[2]string{"Server", strings.TrimSuffix(server, "/")},
			[2]string{"Warehouse", warehouse},
			[2]string{"Database", database},
			[2]string{"Schema", schema},
			[2]string{"UID", s.User})
		if s.Authenticator != "" {
			parts = append(parts, [2]string{"Authenticator", s.Authenticator})
		} else {
			parts = append(parts, [2]string{"PWD", s.Password})
		}
		return joinOdbc(parts), nil
	}

	if s.User != "" {
		parts = append(parts, [2]string{"UID", s.User}, [2]string{"PWD", s.Password})
	}
	return joinOdbc(parts), nil
}

func joinOdbc(parts [][2]string) string {
	var b strings.Builder
	for _, p := range parts {
		if p[1] == "" {
			continue
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(odbcValue(p[1]))
		b.WriteByte(';')
	}
	return b.String()
}

// odbcValue braces values containing separators or braces.
func odbcValue(v string) string {
	if strings.ContainsAny(v, ";{}= ") || strings.Contains(v, "(") {
		return "{" + strings.ReplaceAll(v, "}", "}}") + "}"
	}
	return v
}

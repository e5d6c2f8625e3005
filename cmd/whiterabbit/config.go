package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/whiterabbit/cmd/whiterabbit/commands"
	"github.com/ruslano69/whiterabbit/pkg/brokers"
	"github.com/ruslano69/whiterabbit/pkg/dbconfig"
	"github.com/ruslano69/whiterabbit/pkg/resultlog"
	"github.com/ruslano69/whiterabbit/pkg/retry"
	"github.com/ruslano69/whiterabbit/pkg/scan"
	"github.com/ruslano69/whiterabbit/pkg/storage"
)

// Config represents the YAML configuration of a scan
type Config struct {
	Source    SourceConfig     `yaml:"source"`
	Scan      ScanConfig       `yaml:"scan"`
	Output    OutputConfig     `yaml:"output"`
	Retry     retry.Config     `yaml:"retry"`
	Broker    brokers.Config   `yaml:"broker,omitempty"`
	ResultLog resultlog.Config `yaml:"result_log,omitempty"`
	S3        storage.S3Config `yaml:"s3,omitempty"`
	Metrics   MetricsConfig    `yaml:"metrics,omitempty"`
}

// SourceConfig describes the scanned source with the classic ini keys
type SourceConfig struct {
	Type          string   `yaml:"type"`                     // one of the WhiteRabbit database types
	Server        string   `yaml:"server,omitempty"`         // SERVER_LOCATION, Snowflake account
	Database      string   `yaml:"database,omitempty"`       // DATABASE_NAME
	User          string   `yaml:"user,omitempty"`           // USER_NAME, domain/user for SQL Server
	Password      string   `yaml:"password,omitempty"`       // PASSWORD
	WorkingFolder string   `yaml:"working_folder,omitempty"` // delimited files and the report
	Delimiter     string   `yaml:"delimiter,omitempty"`      // "," or "tab"
	Encoding      string   `yaml:"encoding,omitempty"`       // delimited file charset
	OdbcDriver    string   `yaml:"odbc_driver,omitempty"`
	Tables        []string `yaml:"tables,omitempty"` // empty = all tables

	// Snowflake
	Warehouse     string `yaml:"warehouse,omitempty"`
	Schema        string `yaml:"schema,omitempty"`
	Authenticator string `yaml:"authenticator,omitempty"`
}

// ScanConfig mirrors the scan fields of the ini file
type ScanConfig struct {
	ScanValues              bool `yaml:"scan_values"`
	MinCellCount            int  `yaml:"min_cell_count"`
	MaxDistinctValues       int  `yaml:"max_distinct_values"`
	RowsPerTable            int  `yaml:"rows_per_table"` // -1 = all rows
	CalculateNumericStats   bool `yaml:"calculate_numeric_stats"`
	NumericStatsSamplerSize int  `yaml:"numeric_stats_sampler_size"`
	Parallelism             int  `yaml:"parallelism"` // tables scanned at once, -1 = one per CPU
}

// OutputConfig contains report settings
type OutputConfig struct {
	Report   string `yaml:"report"`   // relative paths are resolved against the working folder
	Checksum bool   `yaml:"checksum"` // write <report>.xxh3
}

// MetricsConfig contains Prometheus Pushgateway settings
type MetricsConfig struct {
	PushGateway string `yaml:"pushgateway,omitempty"`
	Job         string `yaml:"job,omitempty"`
}

// defaultConfig returns the values used for keys missing from the file
func defaultConfig() *Config {
	s := dbconfig.DefaultScanSettings()
	return &Config{
		Scan: ScanConfig{
			ScanValues:              s.ScanValues,
			MinCellCount:            s.MinCellCount,
			MaxDistinctValues:       s.MaxValues,
			RowsPerTable:            s.SampleSize,
			CalculateNumericStats:   s.CalculateNumericStats,
			NumericStatsSamplerSize: s.NumStatsSamplerSize,
			Parallelism:             1,
		},
		Output: OutputConfig{Report: commands.DefaultReportName},
		Retry:  retry.DefaultConfig(),
		ResultLog: resultlog.Config{
			TTL: 3600,
		},
		Metrics: MetricsConfig{Job: "whiterabbit"},
	}
}

// LoadConfig loads configuration from a YAML file. ${VAR} references are
// replaced with environment variables before parsing.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(filename string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the sections that are enabled
func (c *Config) Validate() error {
	if _, err := dbconfig.DbTypeFromName(c.Source.Type); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.ScanParameters().Validate(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if c.Broker.Type != "" {
		if _, err := brokers.New(c.Broker); err != nil {
			return fmt.Errorf("broker: %w", err)
		}
	}
	if err := c.ResultLog.Validate(); err != nil {
		return fmt.Errorf("result_log: %w", err)
	}
	if err := c.S3.Validate(); err != nil {
		return fmt.Errorf("s3: %w", err)
	}
	return nil
}

// IniFile converts the source section to the classic ini keys
func (s *SourceConfig) IniFile() *dbconfig.IniFile {
	f := dbconfig.NewIniFile()
	set := func(key, value string) {
		if value != "" {
			f.Set(key, value)
		}
	}

	set(dbconfig.DataTypeKey, s.Type)
	set(dbconfig.WorkingFolderKey, s.WorkingFolder)
	set(dbconfig.DelimiterField, s.Delimiter)
	set(dbconfig.FileEncodingKey, s.Encoding)
	set(dbconfig.OdbcDriverKey, s.OdbcDriver)
	set(dbconfig.TablesToScanField, strings.Join(s.Tables, ","))

	if t, err := dbconfig.DbTypeFromName(s.Type); err == nil && t == dbconfig.Snowflake {
		set(dbconfig.SnowflakeAccount, s.Server)
		set(dbconfig.SnowflakeUser, s.User)
		set(dbconfig.SnowflakePassword, s.Password)
		set(dbconfig.SnowflakeAuthenticator, s.Authenticator)
		set(dbconfig.SnowflakeWarehouse, s.Warehouse)
		set(dbconfig.SnowflakeDatabase, s.Database)
		set(dbconfig.SnowflakeSchema, s.Schema)
		return f
	}

	set(dbconfig.ServerLocationKey, s.Server)
	set(dbconfig.UserNameKey, s.User)
	set(dbconfig.PasswordKey, s.Password)
	set(dbconfig.DatabaseNameKey, s.Database)
	return f
}

// DbSettings interprets the source section the way an ini file is interpreted
func (c *Config) DbSettings() (*dbconfig.DbSettings, *dbconfig.ValidationFeedback, error) {
	return dbconfig.SettingsFromIni(c.Source.IniFile())
}

// ScanParameters converts the scan section
func (c *Config) ScanParameters() scan.Parameters {
	return scan.Parameters{
		ScanValues:            c.Scan.ScanValues,
		MinCellCount:          c.Scan.MinCellCount,
		MaxValues:             c.Scan.MaxDistinctValues,
		SampleSize:            c.Scan.RowsPerTable,
		CalculateNumericStats: c.Scan.CalculateNumericStats,
		NumStatsSamplerSize:   c.Scan.NumericStatsSamplerSize,
		Parallelism:           c.Scan.Parallelism,
	}
}

// PublishOptions returns the integrations of the config
func (c *Config) PublishOptions() commands.PublishOptions {
	name := c.ResultLog.Name
	if name == "" {
		name = c.Source.Database
	}
	source := c.Source.Type
	if t, err := dbconfig.DbTypeFromName(c.Source.Type); err == nil {
		source = t.Label()
	}
	return commands.PublishOptions{
		Name:      name,
		Source:    source,
		Retry:     c.Retry,
		Broker:    c.Broker,
		ResultLog: c.ResultLog,
		S3:        c.S3,
	}
}

// CreateSampleConfig creates a sample configuration for a database type
func CreateSampleConfig(dbType string) (*Config, error) {
	t, err := dbconfig.DbTypeFromName(dbType)
	if err != nil {
		return nil, err
	}

	config := defaultConfig()
	config.Source.Type = t.Label()
	config.Source.WorkingFolder = "."
	config.Output.Checksum = true

	switch t {
	case dbconfig.DelimitedTextFiles:
		config.Source.Delimiter = ","
		config.Source.Encoding = "UTF-8"
	case dbconfig.SQLite:
		config.Source.Server = "source.db"
	case dbconfig.PostgreSQL, dbconfig.Redshift:
		config.Source.Server = "localhost/cdm"
		config.Source.Database = "public"
		config.Source.User = "postgres"
		config.Source.Password = "${PGPASSWORD}"
	case dbconfig.Snowflake:
		config.Source.Server = "account"
		config.Source.User = "user"
		config.Source.Password = "${SNOWFLAKE_PASSWORD}"
		config.Source.Warehouse = "compute_wh"
		config.Source.Database = "database"
		config.Source.Schema = "public"
	case dbconfig.Sas7bdat:
		return nil, scan.ErrSASUnsupported
	default:
		config.Source.Server = "localhost"
		config.Source.Database = "cdm"
		config.Source.User = "user"
		config.Source.Password = "${DB_PASSWORD}"
	}
	return config, nil
}

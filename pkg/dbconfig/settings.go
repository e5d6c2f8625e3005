package dbconfig

import (
	"strconv"
	"strings"
)

// Classic ini keys.
const (
	DataTypeKey       = "DATA_TYPE"
	WorkingFolderKey  = "WORKING_FOLDER"
	ServerLocationKey = "SERVER_LOCATION"
	UserNameKey       = "USER_NAME"
	PasswordKey       = "PASSWORD"
	DatabaseNameKey   = "DATABASE_NAME"
	FileEncodingKey   = "FILE_ENCODING"
	OdbcDriverKey     = "ODBC_DRIVER"
)

// SourceType tells how the tables of a source are read.
type SourceType int

const (
	SourceDatabase SourceType = iota
	SourceCSVFiles
	SourceSASFiles
)

func (s SourceType) String() string {
	switch s {
	case SourceDatabase:
		return "DATABASE"
	case SourceCSVFiles:
		return "CSV_FILES"
	case SourceSASFiles:
		return "SAS_FILES"
	default:
		return "UNKNOWN"
	}
}

// DbSettings describes where the source data lives and how to log in.
type DbSettings struct {
	SourceType SourceType
	DbType     DbType

	Server   string
	Database string
	// Domain holds the Windows domain for SQL Server logins, or the project/database
	// for vendors that need it at connect time.
	Domain        string
	User          string
	Password      string
	Authenticator string

	// Tables to scan; empty means all tables of the source.
	Tables []string

	Delimiter     rune
	WorkingFolder string
	Encoding      string
	OdbcDriver    string
}

// ScanSettings holds the scan options read from an ini file.
type ScanSettings struct {
	ScanValues            bool
	MinCellCount          int
	MaxValues             int
	SampleSize            int
	CalculateNumericStats bool
	NumStatsSamplerSize   int
}

// DefaultScanSettings mirrors the defaults of the scan fields.
func DefaultScanSettings() ScanSettings {
	return ScanSettings{
		ScanValues:          true,
		MinCellCount:        5,
		MaxValues:           1000,
		SampleSize:          100000,
		NumStatsSamplerSize: 500,
	}
}

// SettingsFromIni interprets an ini file. Types with a dedicated configuration use
// their own keys; all others use the classic keys.
func SettingsFromIni(iniFile *IniFile) (*DbSettings, *ValidationFeedback, error) {
	dbType, err := DbTypeFromName(iniFile.Get(DataTypeKey))
	if err != nil {
		return nil, nil, err
	}

	var (
		settings *DbSettings
		feedback *ValidationFeedback
	)
	switch {
	case dbType == Snowflake:
		settings, feedback, err = SnowflakeSettings(iniFile)
	case dbType == MySQL && iniFile.Has(MySQLServer):
		settings, feedback, err = MySQLSettings(iniFile)
	default:
		settings, feedback = ClassicSettings(iniFile, dbType), NewValidationFeedback()
	}
	if err != nil {
		return nil, feedback, err
	}

	settings.WorkingFolder = iniFile.Get(WorkingFolderKey)
	settings.Tables = ParseTables(iniFile.Get(TablesToScanField))
	if enc := iniFile.Get(FileEncodingKey); enc != "" {
		settings.Encoding = enc
	}
	settings.OdbcDriver = iniFile.Get(OdbcDriverKey)
	return settings, feedback, nil
}

// ClassicSettings interprets the classic DATA_TYPE / SERVER_LOCATION / USER_NAME /
// PASSWORD / DATABASE_NAME keys.
func ClassicSettings(iniFile *IniFile, dbType DbType) *DbSettings {
	settings := &DbSettings{DbType: dbType, Delimiter: ',', Encoding: "UTF-8"}

	switch dbType {
	case DelimitedTextFiles:
		settings.SourceType = SourceCSVFiles
		settings.Delimiter = ParseDelimiter(iniFile.Get(DelimiterField))
		return settings
	case Sas7bdat:
		settings.SourceType = SourceSASFiles
		return settings
	}

	settings.SourceType = SourceDatabase
	settings.User = iniFile.Get(UserNameKey)
	settings.Password = iniFile.Get(PasswordKey)
	settings.Server = iniFile.Get(ServerLocationKey)
	settings.Database = iniFile.Get(DatabaseNameKey)

	switch dbType {
	case SQLServer, Azure, PDW:
		// An empty user name selects integrated authentication.
		if settings.User != "" {
			if parts := strings.Split(settings.User, "/"); len(parts) == 2 {
				settings.Domain = parts[0]
				settings.User = parts[1]
			}
		}
	case BigQuery:
		settings.Domain = settings.Database
	}
	return settings
}

// ParseDelimiter returns tab for "tab" and otherwise the first character, defaulting
// to a comma.
func ParseDelimiter(value string) rune {
	if strings.EqualFold(value, "tab") {
		return '\t'
	}
	for _, r := range value {
		return r
	}
	return ','
}

// ParseTables splits a TABLES_TO_SCAN value. "*" and "" select all tables.
func ParseTables(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" || value == "*" {
		return nil
	}
	var tables []string
	for _, t := range strings.Split(value, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}
	return tables
}

// ScanSettingsFromIni validates and reads the scan fields of an ini file.
// ROWS_PER_TABLE = -1 selects all rows.
func ScanSettingsFromIni(iniFile *IniFile) (ScanSettings, *ValidationFeedback, error) {
	allRows := strings.TrimSpace(iniFile.Get(RowsPerTableField)) == "-1"

	c, err := NewConfiguration(ScanFields()...)
	if err != nil {
		return ScanSettings{}, nil, err
	}
	feedback := c.LoadAndValidate(iniFile)
	if allRows {
		// -1 is not a digit string; validate the remaining fields with the default.
		field := c.Field(RowsPerTableField)
		field.SetValue(field.Default())
		feedback = c.ValidateAll()
	}
	if err := feedback.Err(); err != nil {
		return ScanSettings{}, feedback, err
	}

	s := ScanSettings{
		ScanValues:            c.Value(ScanFieldValuesField) == "yes",
		MinCellCount:          atoi(c.Value(MinCellCountField)),
		MaxValues:             atoi(c.Value(MaxDistinctValuesField)),
		SampleSize:            atoi(c.Value(RowsPerTableField)),
		CalculateNumericStats: c.Value(CalculateNumericStatsField) == "yes",
		NumStatsSamplerSize:   atoi(c.Value(NumericStatsSamplerSizeField)),
	}
	if allRows {
		s.SampleSize = -1
	}
	return s, feedback, nil
}

// TemplateConfiguration returns the ini fields accepted for a source type, used to
// print an ini template.
func TemplateConfiguration(dbType DbType) *Configuration {
	var fields []*ConfigurationField
	fields = append(fields,
		NewField(DataTypeKey, "Data type", "One of: "+strings.Join(Choices(), ", ")).DefaultValue(dbType.Label()).Required(),
		NewField(WorkingFolderKey, "Working folder", "Folder for delimited files and the scan report").Required(),
	)

	switch {
	case dbType == Snowflake:
		fields = append(fields, NewSnowflakeConfiguration().Fields()...)
	case dbType == MySQL:
		fields = append(fields, NewMySQLConfiguration().Fields()...)
	case dbType.IsDatabase():
		fields = append(fields,
			NewField(ServerLocationKey, "Server location", "Server name, or host/database for PostgreSQL").Required(),
			NewField(UserNameKey, "User name", "Login name, domain/user for integrated SQL Server logins"),
			NewField(PasswordKey, "Password", "Login password"),
			NewField(DatabaseNameKey, "Database name", "Database or schema holding the source tables").Required(),
		)
	case dbType == DelimitedTextFiles:
		fields = append(fields,
			NewField(FileEncodingKey, "File encoding", "Character set of the delimited files").DefaultValue("UTF-8"),
		)
	}

	for _, f := range ScanFields() {
		if dbType != DelimitedTextFiles && f.Name == DelimiterField {
			continue
		}
		fields = append(fields, f)
	}

	c, _ := NewConfiguration(fields...)
	if dbType == Snowflake {
		c.AddValidator(passwordXORAuthenticator)
	}
	return c
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

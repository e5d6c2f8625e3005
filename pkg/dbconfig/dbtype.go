// Package dbconfig describes scan sources: the supported database types, validated
// configuration fields, ini file interpretation and the resulting connection settings.
package dbconfig

import (
	"fmt"
	"strings"
)

// DbType identifies a kind of scan source.
type DbType int

const (
	DelimitedTextFiles DbType = iota
	MySQL
	Oracle
	SQLServer
	PostgreSQL
	MSAccess
	PDW
	Redshift
	Teradata
	BigQuery
	Azure
	Snowflake
	Sas7bdat
	SQLite
)

// The name of every type must equal its label after normalization.
var dbTypes = []struct {
	name  string
	label string
}{
	DelimitedTextFiles: {"DELIMITED_TEXT_FILES", "Delimited text files"},
	MySQL:              {"MYSQL", "MySQL"},
	Oracle:             {"ORACLE", "Oracle"},
	SQLServer:          {"SQL_SERVER", "SQL Server"},
	PostgreSQL:         {"POSTGRESQL", "PostgreSQL"},
	MSAccess:           {"MS_ACCESS", "MS Access"},
	PDW:                {"PDW", "PDW"},
	Redshift:           {"REDSHIFT", "Redshift"},
	Teradata:           {"TERADATA", "Teradata"},
	BigQuery:           {"BIGQUERY", "BigQuery"},
	Azure:              {"AZURE", "Azure"},
	Snowflake:          {"SNOWFLAKE", "Snowflake"},
	Sas7bdat:           {"SAS7BDAT", "Sas7bdat"},
	SQLite:             {"SQLITE", "SQLite"},
}

// AllDbTypes returns every supported type in declaration order.
func AllDbTypes() []DbType {
	all := make([]DbType, len(dbTypes))
	for i := range dbTypes {
		all[i] = DbType(i)
	}
	return all
}

// Name returns the constant name, e.g. "SQL_SERVER".
func (t DbType) Name() string {
	if !t.valid() {
		return fmt.Sprintf("DBTYPE(%d)", int(t))
	}
	return dbTypes[t].name
}

// Label returns the human readable name, e.g. "SQL Server".
func (t DbType) Label() string {
	if !t.valid() {
		return fmt.Sprintf("DbType(%d)", int(t))
	}
	return dbTypes[t].label
}

func (t DbType) String() string {
	return t.Label()
}

// AdapterType returns the key under which the database adapter registers itself,
// or "" for file based sources.
func (t DbType) AdapterType() string {
	if !t.IsDatabase() {
		return ""
	}
	return strings.ToLower(t.Name())
}

// IsDatabase reports whether the type is scanned through a database connection.
func (t DbType) IsDatabase() bool {
	return t.valid() && t != DelimitedTextFiles && t != Sas7bdat
}

// SupportsConfiguration reports whether the type has a dedicated field configuration
// with its own ini keys.
func (t DbType) SupportsConfiguration() bool {
	return t == Snowflake || t == MySQL
}

func (t DbType) valid() bool {
	return t >= 0 && int(t) < len(dbTypes)
}

// DbTypeFromName resolves a label or constant name, case-insensitively.
func DbTypeFromName(name string) (DbType, error) {
	normalized := normalizedName(strings.TrimSpace(name))
	for i, dt := range dbTypes {
		if dt.name == normalized {
			return DbType(i), nil
		}
	}
	return 0, configErrorf("unknown database type: %s (choices: %s)", name, strings.Join(Choices(), ", "))
}

// Choices returns the labels of all types.
func Choices() []string {
	labels := make([]string, len(dbTypes))
	for i, dt := range dbTypes {
		labels[i] = dt.label
	}
	return labels
}

func normalizedName(name string) string {
	return strings.ReplaceAll(strings.ToUpper(name), " ", "_")
}

package base

import (
	"fmt"
	"strconv"
	"strings"
)

// Типы СУБД, для которых известны SQL-шаблоны
const (
	KindPostgreSQL = "postgresql"
	KindRedshift   = "redshift"
	KindMySQL      = "mysql"
	KindSQLServer  = "sql_server"
	KindAzure      = "azure"
	KindPDW        = "pdw"
	KindSQLite     = "sqlite"
	KindOracle     = "oracle"
	KindTeradata   = "teradata"
	KindMSAccess   = "ms_access"
	KindBigQuery   = "bigquery"
	KindSnowflake  = "snowflake"
)

var knownKinds = []string{
	KindPostgreSQL, KindRedshift, KindMySQL, KindSQLServer, KindAzure, KindPDW,
	KindSQLite, KindOracle, KindTeradata, KindMSAccess, KindBigQuery, KindSnowflake,
}

// Dialect строит вендорные SQL-запросы сканера: переключение базы, списки таблиц
// и колонок, подсчет строк и случайную выборку.
type Dialect struct {
	kind string
}

// NewDialect возвращает диалект для типа СУБД
func NewDialect(kind string) (*Dialect, error) {
	for _, k := range knownKinds {
		if k == kind {
			return &Dialect{kind: kind}, nil
		}
	}
	return nil, fmt.Errorf("no SQL dialect for database type %s", kind)
}

// Kind возвращает тип СУБД
func (d *Dialect) Kind() string {
	return d.kind
}

func (d *Dialect) sqlServerFamily() bool {
	return d.kind == KindSQLServer || d.kind == KindPDW || d.kind == KindAzure
}

// UseStatement возвращает команду смены текущей базы/схемы.
// Пустая строка - для СУБД, где база задается строкой подключения.
func (d *Dialect) UseStatement(database string) string {
	if database == "" {
		return ""
	}
	switch d.kind {
	case KindMSAccess, KindBigQuery, KindAzure, KindSnowflake, KindSQLite:
		return ""
	case KindOracle:
		return "ALTER SESSION SET current_schema = " + database
	case KindPostgreSQL, KindRedshift:
		return "SET search_path TO " + database
	case KindTeradata:
		return "database " + database
	default:
		return "USE " + database
	}
}

// TablesQuery возвращает запрос списка таблиц и представлений.
// Имя таблицы - в первой колонке результата.
func (d *Dialect) TablesQuery(database string) (string, error) {
	switch d.kind {
	case KindMySQL:
		if database == "" {
			return "SHOW TABLES", nil
		}
		return "SHOW TABLES IN " + database, nil
	case KindSQLServer, KindPDW, KindAzure:
		prefix := ""
		if database != "" && d.kind != KindAzure {
			prefix = database + "."
		}
		return fmt.Sprintf("SELECT CONCAT(schemas.name, '.', tables_views.name) FROM "+
			"(SELECT schema_id, name FROM %[1]ssys.tables UNION ALL SELECT schema_id, name FROM %[1]ssys.views) tables_views "+
			"INNER JOIN %[1]ssys.schemas ON tables_views.schema_id = schemas.schema_id "+
			"ORDER BY schemas.name, tables_views.name", prefix), nil
	case KindOracle:
		return "SELECT table_name FROM " +
			"(SELECT table_name, owner FROM all_tables UNION ALL SELECT view_name, owner FROM all_views) tables_views " +
			"WHERE owner = " + literal(strings.ToUpper(database)), nil
	case KindPostgreSQL, KindRedshift:
		schema := strings.ToLower(database)
		if schema == "" {
			schema = "public"
		}
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = " + literal(schema) +
			" ORDER BY table_name", nil
	case KindMSAccess:
		return "SELECT Name FROM MSysObjects WHERE (Type = 1 OR Type = 5) AND Flags = 0", nil
	case KindTeradata:
		return "SELECT TableName FROM dbc.tables WHERE tablekind IN ('T','V') AND databasename = " + literal(database), nil
	case KindBigQuery:
		return "SELECT table_name FROM " + database + ".INFORMATION_SCHEMA.TABLES ORDER BY table_name", nil
	case KindSnowflake:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = " +
			literal(strings.ToUpper(snowflakeSchema(database))) + " ORDER BY table_name", nil
	case KindSQLite:
		return "SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name", nil
	}
	return "", fmt.Errorf("no query was specified to obtain the table names for database type %s", d.kind)
}

// FieldsQuery возвращает запрос колонок таблицы: имя в первой колонке результата,
// тип во второй. Пустой запрос без ошибки означает, что колонки берутся из
// метаданных результата MetadataQuery.
func (d *Dialect) FieldsQuery(database, table string) (string, error) {
	switch d.kind {
	case KindMSAccess, KindSnowflake:
		return "", nil
	case KindOracle:
		return "SELECT COLUMN_NAME, DATA_TYPE FROM ALL_TAB_COLUMNS WHERE table_name = " + literal(table) +
			" AND owner = " + literal(strings.ToUpper(database)) + " ORDER BY COLUMN_ID", nil
	case KindSQLServer, KindPDW, KindAzure:
		schema, name := splitSchema(table)
		query := "SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS WHERE "
		if d.kind != KindAzure && database != "" {
			query += "TABLE_CATALOG = " + literal(strings.TrimSuffix(strings.TrimPrefix(database, "["), "]")) + " AND "
		}
		return query + "TABLE_SCHEMA = " + literal(schema) + " AND TABLE_NAME = " + literal(name) +
			" ORDER BY ORDINAL_POSITION", nil
	case KindMySQL:
		schema := "DATABASE()"
		if database != "" {
			schema = literal(database)
		}
		return "SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = " + schema +
			" AND TABLE_NAME = " + literal(table) + " ORDER BY ORDINAL_POSITION", nil
	case KindPostgreSQL, KindRedshift:
		schema := strings.ToLower(database)
		if schema == "" {
			schema = "public"
		}
		return "SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = " + literal(schema) +
			" AND TABLE_NAME = " + literal(strings.ToLower(table)) + " ORDER BY ordinal_position", nil
	case KindTeradata:
		return "SELECT ColumnName, ColumnType FROM dbc.columns WHERE DatabaseName = " + literal(strings.ToLower(database)) +
			" AND TableName = " + literal(strings.ToLower(table)) + " ORDER BY ColumnId", nil
	case KindBigQuery:
		return "SELECT column_name, data_type FROM " + database + ".INFORMATION_SCHEMA.COLUMNS WHERE table_name = " +
			literal(table) + " ORDER BY ordinal_position", nil
	case KindSQLite:
		return "SELECT name, type FROM pragma_table_info(" + literal(table) + ") ORDER BY cid", nil
	}
	return "", fmt.Errorf("no query was specified to obtain the table structure for database type %s", d.kind)
}

// MetadataQuery возвращает пустую выборку из таблицы для чтения колонок из
// метаданных результата
func (d *Dialect) MetadataQuery(database, table string) string {
	return "SELECT * FROM " + d.QualifiedTable(database, table) + " WHERE 1 = 0"
}

// QualifiedTable возвращает имя таблицы для FROM.
// SQL Server: schema.table → [schema].[table]; MS Access: [table].
// Имена без схемы квалифицируются базой, чтобы запросы не зависели от
// состояния конкретного соединения пула.
func (d *Dialect) QualifiedTable(database, table string) string {
	switch d.kind {
	case KindSQLServer, KindPDW, KindAzure:
		return "[" + strings.ReplaceAll(table, ".", "].[") + "]"
	case KindMSAccess:
		return "[" + table + "]"
	case KindSQLite:
		return `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
	case KindSnowflake:
		return table
	}
	if database == "" || strings.Contains(table, ".") {
		return table
	}
	return database + "." + table
}

// RowCountQuery возвращает запрос количества строк
func (d *Dialect) RowCountQuery(database, table string) string {
	if d.sqlServerFamily() {
		return "SELECT COUNT_BIG(*) FROM " + d.QualifiedTable(database, table)
	}
	return "SELECT COUNT(*) FROM " + d.QualifiedTable(database, table)
}

// SampleQuery возвращает запрос случайной выборки sampleSize строк.
// sampleSize = -1 - все строки таблицы.
func (d *Dialect) SampleQuery(database, table string, rowCount, sampleSize int64) (string, error) {
	from := d.QualifiedTable(database, table)
	all := "SELECT * FROM " + from
	if sampleSize < 0 {
		return all, nil
	}

	n := strconv.FormatInt(sampleSize, 10)
	switch d.kind {
	case KindSQLServer, KindAzure:
		return all + " TABLESAMPLE (" + n + " ROWS)", nil
	case KindPDW:
		return "SELECT TOP " + n + " * FROM " + from + " ORDER BY RAND()", nil
	case KindMySQL, KindBigQuery:
		return all + " ORDER BY RAND() LIMIT " + n, nil
	case KindOracle:
		if sampleSize >= rowCount {
			return all, nil
		}
		percentage := 100 * float64(sampleSize) / float64(rowCount)
		return all + " SAMPLE(" + strconv.FormatFloat(percentage, 'f', -1, 64) + ")", nil
	case KindPostgreSQL, KindRedshift, KindSnowflake, KindSQLite:
		return all + " ORDER BY RANDOM() LIMIT " + n, nil
	case KindMSAccess:
		return "SELECT TOP " + n + " * FROM " + from, nil
	case KindTeradata:
		return all + " SAMPLE " + n, nil
	}
	return "", fmt.Errorf("no query was generated for database type %s", d.kind)
}

// VersionQuery возвращает запрос версии СУБД; пустая строка - версия недоступна
func (d *Dialect) VersionQuery() string {
	switch d.kind {
	case KindPostgreSQL, KindRedshift:
		return "SELECT version()"
	case KindMySQL:
		return "SELECT VERSION()"
	case KindSQLServer, KindPDW, KindAzure:
		return "SELECT @@VERSION"
	case KindSQLite:
		return "SELECT sqlite_version()"
	case KindOracle:
		return "SELECT banner FROM v$version WHERE ROWNUM = 1"
	case KindTeradata:
		return "SELECT InfoData FROM dbc.dbcinfo WHERE InfoKey = 'VERSION'"
	case KindSnowflake:
		return "SELECT CURRENT_VERSION()"
	}
	return ""
}

// literal экранирует строковую константу SQL
func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// splitSchema делит "schema.table"; без схемы - dbo
func splitSchema(table string) (string, string) {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return schema, name
	}
	return "dbo", table
}

// snowflakeSchema возвращает схему из "warehouse.database.schema"
func snowflakeSchema(database string) string {
	if i := strings.LastIndex(database, "."); i >= 0 {
		return database[i+1:]
	}
	return database
}

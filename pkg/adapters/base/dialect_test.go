package base

import (
	"strings"
	"testing"
)

func mustDialect(t *testing.T, kind string) *Dialect {
	t.Helper()
	d, err := NewDialect(kind)
	if err != nil {
		t.Fatalf("Failed to create dialect %s: %v", kind, err)
	}
	return d
}

func TestNewDialect_Unknown(t *testing.T) {
	if _, err := NewDialect("db2"); err == nil {
		t.Error("Expected error for unknown dialect")
	}
}

func TestDialect_UseStatement(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{KindOracle, "ALTER SESSION SET current_schema = cdm"},
		{KindPostgreSQL, "SET search_path TO cdm"},
		{KindRedshift, "SET search_path TO cdm"},
		{KindTeradata, "database cdm"},
		{KindMySQL, "USE cdm"},
		{KindSQLServer, "USE cdm"},
		{KindPDW, "USE cdm"},
		{KindAzure, ""},
		{KindMSAccess, ""},
		{KindBigQuery, ""},
		{KindSnowflake, ""},
		{KindSQLite, ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if got := mustDialect(t, tt.kind).UseStatement("cdm"); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	if got := mustDialect(t, KindMySQL).UseStatement(""); got != "" {
		t.Errorf("Expected no statement for empty database, got %q", got)
	}
}

func TestDialect_TablesQuery(t *testing.T) {
	tests := []struct {
		kind     string
		database string
		contains []string
	}{
		{KindMySQL, "cdm", []string{"SHOW TABLES IN cdm"}},
		{KindSQLServer, "cdm", []string{"cdm.sys.tables", "cdm.sys.views", "cdm.sys.schemas", "CONCAT(schemas.name, '.', tables_views.name)"}},
		{KindAzure, "cdm", []string{"FROM sys.tables"}},
		{KindOracle, "scott", []string{"all_tables", "all_views", "owner = 'SCOTT'"}},
		{KindPostgreSQL, "Native", []string{"table_schema = 'native'", "ORDER BY table_name"}},
		{KindMSAccess, "", []string{"MSysObjects", "(Type = 1 OR Type = 5) AND Flags = 0"}},
		{KindTeradata, "cdm", []string{"dbc.tables", "tablekind IN ('T','V')", "databasename = 'cdm'"}},
		{KindBigQuery, "ds", []string{"ds.INFORMATION_SCHEMA.TABLES"}},
		{KindSnowflake, "wh.db.weather", []string{"table_schema = 'WEATHER'"}},
		{KindSQLite, "", []string{"sqlite_master"}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := mustDialect(t, tt.kind).TablesQuery(tt.database)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Query %q does not contain %q", got, want)
				}
			}
		})
	}
}

func TestDialect_FieldsQuery(t *testing.T) {
	tests := []struct {
		kind     string
		database string
		table    string
		contains []string
		empty    bool
	}{
		{kind: KindSQLServer, database: "[cdm]", table: "dbo.person",
			contains: []string{"TABLE_CATALOG = 'cdm'", "TABLE_SCHEMA = 'dbo'", "TABLE_NAME = 'person'"}},
		{kind: KindAzure, database: "cdm", table: "dbo.person",
			contains: []string{"TABLE_SCHEMA = 'dbo'", "TABLE_NAME = 'person'"}},
		{kind: KindPostgreSQL, database: "Native", table: "Person",
			contains: []string{"TABLE_SCHEMA = 'native'", "TABLE_NAME = 'person'"}},
		{kind: KindOracle, database: "scott", table: "EMP",
			contains: []string{"ALL_TAB_COLUMNS", "owner = 'SCOTT'", "table_name = 'EMP'"}},
		{kind: KindTeradata, database: "CDM", table: "Person",
			contains: []string{"dbc.columns", "DatabaseName = 'cdm'", "TableName = 'person'"}},
		{kind: KindMySQL, database: "cdm", table: "o'brien",
			contains: []string{"TABLE_NAME = 'o''brien'"}},
		{kind: KindBigQuery, database: "ds", table: "person",
			contains: []string{"ds.INFORMATION_SCHEMA.COLUMNS", "table_name = 'person'"}},
		{kind: KindSQLite, table: "person", contains: []string{"pragma_table_info('person')"}},
		{kind: KindMSAccess, table: "person", empty: true},
		{kind: KindSnowflake, table: "person", empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := mustDialect(t, tt.kind).FieldsQuery(tt.database, tt.table)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.empty != (got == "") {
				t.Fatalf("Expected empty=%v, got %q", tt.empty, got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Query %q does not contain %q", got, want)
				}
			}
		})
	}
}

func TestDialect_RowCountQuery(t *testing.T) {
	tests := []struct {
		kind     string
		database string
		table    string
		want     string
	}{
		{KindSQLServer, "cdm", "dbo.person", "SELECT COUNT_BIG(*) FROM [dbo].[person]"},
		{KindPDW, "cdm", "dbo.person", "SELECT COUNT_BIG(*) FROM [dbo].[person]"},
		{KindMSAccess, "", "person", "SELECT COUNT(*) FROM [person]"},
		{KindPostgreSQL, "native", "person", "SELECT COUNT(*) FROM native.person"},
		{KindMySQL, "", "person", "SELECT COUNT(*) FROM person"},
		{KindSQLite, "", `my "table"`, `SELECT COUNT(*) FROM "my ""table"""`},
		{KindSnowflake, "wh.db.s", "PERSON", "SELECT COUNT(*) FROM PERSON"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if got := mustDialect(t, tt.kind).RowCountQuery(tt.database, tt.table); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDialect_SampleQuery(t *testing.T) {
	tests := []struct {
		kind       string
		table      string
		rowCount   int64
		sampleSize int64
		want       string
	}{
		{KindSQLServer, "dbo.person", 1000, 100, "SELECT * FROM [dbo].[person] TABLESAMPLE (100 ROWS)"},
		{KindAzure, "dbo.person", 1000, 100, "SELECT * FROM [dbo].[person] TABLESAMPLE (100 ROWS)"},
		{KindSQLServer, "dbo.person", 1000, -1, "SELECT * FROM [dbo].[person]"},
		{KindPDW, "dbo.person", 1000, 100, "SELECT TOP 100 * FROM [dbo].[person] ORDER BY RAND()"},
		{KindMySQL, "person", 1000, 100, "SELECT * FROM person ORDER BY RAND() LIMIT 100"},
		{KindBigQuery, "person", 1000, 100, "SELECT * FROM ds.person ORDER BY RAND() LIMIT 100"},
		{KindOracle, "PERSON", 1000, 100, "SELECT * FROM ds.PERSON SAMPLE(10)"},
		{KindOracle, "PERSON", 400, 100, "SELECT * FROM ds.PERSON SAMPLE(25)"},
		{KindOracle, "PERSON", 50, 100, "SELECT * FROM ds.PERSON"},
		{KindPostgreSQL, "person", 1000, 100, "SELECT * FROM ds.person ORDER BY RANDOM() LIMIT 100"},
		{KindRedshift, "person", 1000, 100, "SELECT * FROM ds.person ORDER BY RANDOM() LIMIT 100"},
		{KindSnowflake, "PERSON", 1000, 100, "SELECT * FROM PERSON ORDER BY RANDOM() LIMIT 100"},
		{KindSQLite, "person", 1000, 100, `SELECT * FROM "person" ORDER BY RANDOM() LIMIT 100`},
		{KindMSAccess, "person", 1000, 100, "SELECT TOP 100 * FROM [person]"},
		{KindMSAccess, "person", 1000, -1, "SELECT * FROM [person]"},
		{KindTeradata, "person", 1000, 100, "SELECT * FROM ds.person SAMPLE 100"},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.want, func(t *testing.T) {
			database := "ds"
			if tt.kind == KindMySQL {
				database = ""
			}
			got, err := mustDialect(t, tt.kind).SampleQuery(database, tt.table, tt.rowCount, tt.sampleSize)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDialect_VersionQuery(t *testing.T) {
	if mustDialect(t, KindSQLite).VersionQuery() != "SELECT sqlite_version()" {
		t.Error("Unexpected SQLite version query")
	}
	if mustDialect(t, KindMSAccess).VersionQuery() != "" {
		t.Error("Expected no version query for MS Access")
	}
}

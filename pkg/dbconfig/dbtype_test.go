package dbconfig

import "testing"

func TestDbType_LabelsMatchNames(t *testing.T) {
	for _, dt := range AllDbTypes() {
		if normalizedName(dt.Label()) != dt.Name() {
			t.Errorf("label %q normalizes to %q, expected %q", dt.Label(), normalizedName(dt.Label()), dt.Name())
		}
	}
}

func TestDbTypeFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    DbType
		wantErr bool
	}{
		{"SQL Server", SQLServer, false},
		{"sql server", SQLServer, false},
		{"SQL_SERVER", SQLServer, false},
		{"PostgreSQL", PostgreSQL, false},
		{"Delimited text files", DelimitedTextFiles, false},
		{"SAS7bdat", Sas7bdat, false},
		{"ms access", MSAccess, false},
		{"sqlite", SQLite, false},
		{"DB2", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DbTypeFromName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDbType_AdapterType(t *testing.T) {
	tests := map[DbType]string{
		PostgreSQL:         "postgresql",
		SQLServer:          "sql_server",
		MSAccess:           "ms_access",
		Snowflake:          "snowflake",
		DelimitedTextFiles: "",
		Sas7bdat:           "",
	}
	for dt, want := range tests {
		if got := dt.AdapterType(); got != want {
			t.Errorf("%v: expected %q, got %q", dt, want, got)
		}
	}
}

func TestChoices(t *testing.T) {
	choices := Choices()
	if len(choices) != len(AllDbTypes()) {
		t.Fatalf("Expected %d choices, got %d", len(AllDbTypes()), len(choices))
	}
	if choices[0] != "Delimited text files" || choices[3] != "SQL Server" {
		t.Errorf("Unexpected choices: %v", choices)
	}
}

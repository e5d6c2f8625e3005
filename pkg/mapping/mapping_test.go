package mapping

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ruslano69/whiterabbit/pkg/report"
	"github.com/ruslano69/whiterabbit/pkg/scan"
)

const cdmCSV = "\xEF\xBB\xBFTABLE_NAME,COLUMN_NAME,IS_NULLABLE,DATA_TYPE,DESCRIPTION\n" +
	"PERSON,PERSON_ID,NO,integer,A unique identifier\n" +
	"PERSON,YEAR_OF_BIRTH,NO,integer,\n" +
	"PERSON,GENDER_SOURCE_VALUE,YES,varchar(50),\"Source code, verbatim\"\n" +
	"OBSERVATION_PERIOD,PERSON_ID,NO,integer,\n"

func newTestETL(t *testing.T) *ETL {
	t.Helper()
	target, err := FromCDMCSV(strings.NewReader(cdmCSV), "cdm")
	if err != nil {
		t.Fatalf("Failed to read data model: %v", err)
	}
	source := &Database{Name: "source", Tables: []*Table{
		{Name: "patients.csv", Fields: []*Field{{Name: "id"}, {Name: "birthdate"}, {Name: "gender"}}},
		{Name: "encounters.csv", Fields: []*Field{{Name: "patient"}}},
	}}
	return NewETL(source, target)
}

func TestFromCDMCSV(t *testing.T) {
	db, err := FromCDMCSV(strings.NewReader(cdmCSV), "cdm")
	if err != nil {
		t.Fatalf("Failed to read data model: %v", err)
	}

	names := db.TableNames()
	if len(names) != 2 || names[0] != "person" || names[1] != "observation_period" {
		t.Fatalf("Expected [person observation_period], got %v", names)
	}

	person := db.Table("PERSON")
	if len(person.Fields) != 3 {
		t.Fatalf("Expected 3 person fields, got %d", len(person.Fields))
	}
	id := person.Field("person_id")
	if id == nil || id.Type != "integer" || id.Nullable || id.Description != "A unique identifier" {
		t.Errorf("Unexpected person_id: %+v", id)
	}
	gender := person.Field("gender_source_value")
	if gender == nil || !gender.Nullable || gender.Description != "Source code, verbatim" {
		t.Errorf("Unexpected gender_source_value: %+v", gender)
	}
}

func TestFromCDMCSV_WithoutBOM(t *testing.T) {
	db, err := FromCDMCSV(strings.NewReader(strings.TrimPrefix(cdmCSV, "\xEF\xBB\xBF")), "cdm")
	if err != nil {
		t.Fatalf("Failed to read data model: %v", err)
	}
	if db.Table("person") == nil {
		t.Error("Expected person table")
	}
}

func TestFromCDMCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"missing column", "TABLE_NAME,DATA_TYPE\nperson,integer\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromCDMCSV(strings.NewReader(tt.data), "cdm"); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestETL_AddMapping(t *testing.T) {
	etl := newTestETL(t)

	tests := []struct {
		name    string
		m       ItemToItemMap
		wantErr error
	}{
		{"field before table", ItemToItemMap{SourceTable: "patients.csv", SourceField: "id", TargetTable: "person", TargetField: "person_id"}, ErrNoTableMapping},
		{"table", ItemToItemMap{SourceTable: "patients.csv", TargetTable: "person"}, nil},
		{"field", ItemToItemMap{SourceTable: "patients.csv", SourceField: "id", TargetTable: "person", TargetField: "person_id"}, nil},
		{"field case-insensitive", ItemToItemMap{SourceTable: "Patients.csv", SourceField: "BIRTHDATE", TargetTable: "PERSON", TargetField: "year_of_birth"}, nil},
		{"unknown source table", ItemToItemMap{SourceTable: "claims.csv", TargetTable: "person"}, ErrUnknownItem},
		{"unknown target field", ItemToItemMap{SourceTable: "patients.csv", SourceField: "id", TargetTable: "person", TargetField: "nope"}, ErrUnknownItem},
		{"half field mapping", ItemToItemMap{SourceTable: "patients.csv", SourceField: "id", TargetTable: "person"}, ErrIncompleteFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := etl.AddMapping(tt.m)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if got := len(etl.MappingsFor("patients.csv", "person")); got != 2 {
		t.Errorf("Expected 2 field mappings, got %d", got)
	}

	// re-adding updates the logic instead of duplicating
	if err := etl.AddMapping(ItemToItemMap{SourceTable: "patients.csv", TargetTable: "person", Logic: "one row per patient"}); err != nil {
		t.Fatal(err)
	}
	tables := etl.TableMappings()
	if len(tables) != 1 || tables[0].Logic != "one row per patient" {
		t.Errorf("Expected one table mapping with logic, got %v", tables)
	}
	if targets := etl.TargetsOf("PATIENTS.CSV"); len(targets) != 1 || targets[0] != "person" {
		t.Errorf("Expected targets [person], got %v", targets)
	}
}

func TestETL_RemoveMapping(t *testing.T) {
	etl := newTestETL(t)
	mappings := []ItemToItemMap{
		{SourceTable: "patients.csv", TargetTable: "person"},
		{SourceTable: "patients.csv", SourceField: "id", TargetTable: "person", TargetField: "person_id"},
		{SourceTable: "patients.csv", SourceField: "birthdate", TargetTable: "person", TargetField: "year_of_birth"},
		{SourceTable: "encounters.csv", TargetTable: "observation_period"},
		{SourceTable: "encounters.csv", SourceField: "patient", TargetTable: "observation_period", TargetField: "person_id"},
	}
	for _, m := range mappings {
		if err := etl.AddMapping(m); err != nil {
			t.Fatalf("Failed to add %s: %v", m, err)
		}
	}

	if !etl.RemoveMapping(mappings[1]) {
		t.Error("Expected field mapping to be removed")
	}
	if etl.RemoveMapping(mappings[1]) {
		t.Error("Expected second removal to report false")
	}
	if got := len(etl.MappingsFor("patients.csv", "person")); got != 1 {
		t.Errorf("Expected 1 remaining field mapping, got %d", got)
	}

	if !etl.RemoveMapping(mappings[0]) {
		t.Error("Expected table mapping to be removed")
	}
	if got := len(etl.MappingsFor("patients.csv", "person")); got != 0 {
		t.Errorf("Expected field mappings of the table pair to be removed, got %d", got)
	}
	if len(etl.Mappings) != 2 {
		t.Errorf("Expected the encounters mappings to remain, got %v", etl.Mappings)
	}
}

func TestETL_SaveLoad(t *testing.T) {
	tests := []struct {
		file       string
		compressed bool
	}{
		{"etl-specs.json", false},
		{"etl-specs.json.gz", true},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			etl := newTestETL(t)
			etl.Source.Table("patients.csv").Fields[0].ValueCounts = []ValueCount{{Value: "1", Frequency: 10}}
			if err := etl.AddMapping(ItemToItemMap{SourceTable: "patients.csv", TargetTable: "person", Comment: "ok"}); err != nil {
				t.Fatal(err)
			}

			path := filepath.Join(t.TempDir(), tt.file)
			if err := etl.Save(path); err != nil {
				t.Fatalf("Failed to save: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if got := bytes.HasPrefix(data, gzipMagic); got != tt.compressed {
				t.Errorf("Expected compressed=%v, got %v", tt.compressed, got)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Failed to load: %v", err)
			}
			if len(loaded.Mappings) != 1 || loaded.Mappings[0].Comment != "ok" {
				t.Errorf("Unexpected mappings: %v", loaded.Mappings)
			}
			vc := loaded.Source.Table("patients.csv").Field("id").ValueCounts
			if len(vc) != 1 || vc[0].Frequency != 10 {
				t.Errorf("Unexpected value counts: %v", vc)
			}
			if loaded.Target.Table("person").Field("gender_source_value") == nil {
				t.Error("Expected target model to be saved")
			}
		})
	}
}

func TestETL_SaveFailureKeepsExistingFile(t *testing.T) {
	for _, file := range []string{"etl-specs.json", "etl-specs.json.gz"} {
		t.Run(file, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, file)

			etl := newTestETL(t)
			if err := etl.Save(path); err != nil {
				t.Fatalf("Failed to save: %v", err)
			}
			before, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			// NaN cannot be encoded as JSON
			etl.Source.Table("patients.csv").Fields[0].FractionEmpty = math.NaN()
			if err := etl.Save(path); err == nil {
				t.Fatal("Expected encoding error")
			}

			after, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Existing file lost: %v", err)
			}
			if !bytes.Equal(before, after) {
				t.Error("Existing file was modified by a failed save")
			}
			if _, err := Load(path); err != nil {
				t.Errorf("Existing file no longer loads: %v", err)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Errorf("Expected only %s in the folder, got %d entries", file, len(entries))
			}
		})
	}

	missing := filepath.Join(t.TempDir(), "etl-specs.json")
	etl := newTestETL(t)
	etl.Source.Table("patients.csv").Fields[0].FractionEmpty = math.NaN()
	if err := etl.Save(missing); err == nil {
		t.Fatal("Expected encoding error")
	}
	if _, err := os.Stat(missing); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Failed save left a file behind: %v", err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode(strings.NewReader("not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
	if _, err := Decode(bytes.NewReader([]byte{0x1f, 0x8b, 0x00})); err == nil {
		t.Error("Expected error for broken gzip stream")
	}
}

func TestFromScanReport(t *testing.T) {
	params := scan.DefaultParameters()
	params.MinCellCount = 1

	field := scan.NewFieldInfo(params, "gender", "varchar")
	for _, v := range []string{"M", "F", "M", ""} {
		field.ProcessValue(v)
	}
	field.RowCount = 4
	field.Trim()

	result := &scan.Result{
		ID:         uuid.New(),
		Source:     "sqlite",
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Parameters: params,
		Tables: []*scan.TableResult{{
			Name: "patients", RowCount: 4, RowsChecked: 4, Fields: []*scan.FieldInfo{field},
		}},
	}

	path := filepath.Join(t.TempDir(), "ScanReport.xlsx")
	if err := report.Write(result, path); err != nil {
		t.Fatalf("Failed to write report: %v", err)
	}

	db, err := FromScanReport(path)
	if err != nil {
		t.Fatalf("Failed to build model: %v", err)
	}
	if db.Name != "ScanReport" {
		t.Errorf("Expected name ScanReport, got %s", db.Name)
	}

	patients := db.Table("patients")
	if patients == nil || patients.RowCount != 4 || patients.RowsCheckedCount != 4 {
		t.Fatalf("Unexpected table: %+v", patients)
	}
	gender := patients.Field("gender")
	if gender == nil || gender.Type != "varchar" || !gender.Nullable || gender.UniqueCount != 3 {
		t.Fatalf("Unexpected field: %+v", gender)
	}
	if len(gender.ValueCounts) != 3 || gender.ValueCounts[0] != (ValueCount{Value: "M", Frequency: 2}) {
		t.Errorf("Unexpected value counts: %v", gender.ValueCounts)
	}
}

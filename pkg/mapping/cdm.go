package mapping

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Columns of a data model description file.
const (
	cdmTableName   = "table_name"
	cdmColumnName  = "column_name"
	cdmIsNullable  = "is_nullable"
	cdmDataType    = "data_type"
	cdmDescription = "description"
)

// LoadCDMCSV reads a target data model description file.
func LoadCDMCSV(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data model: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromCDMCSV(f, name)
}

// FromCDMCSV builds a data model from a CSV with one row per column and the
// header TABLE_NAME, COLUMN_NAME, IS_NULLABLE, DATA_TYPE and DESCRIPTION in
// any case and order. A UTF-8 byte order mark is skipped. Tables keep the
// order of first appearance.
func FromCDMCSV(r io.Reader, name string) (*Database, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("data model %s is empty", name)
		}
		return nil, fmt.Errorf("failed to read data model header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{cdmTableName, cdmColumnName} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("data model %s has no %s column", name, strings.ToUpper(required))
		}
	}

	get := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	db := &Database{Name: name}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data model line %d: %w", line, err)
		}

		tableName := strings.ToLower(get(record, cdmTableName))
		if tableName == "" {
			continue
		}
		table := db.Table(tableName)
		if table == nil {
			table = &Table{Name: tableName}
			db.Tables = append(db.Tables, table)
		}
		table.Fields = append(table.Fields, &Field{
			Name:        strings.ToLower(get(record, cdmColumnName)),
			Type:        get(record, cdmDataType),
			Description: get(record, cdmDescription),
			Nullable:    strings.EqualFold(get(record, cdmIsNullable), "yes"),
		})
	}
	return db, nil
}

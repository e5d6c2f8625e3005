package mapping

import "strings"

// ValueCount is a value of a source field with its frequency.
type ValueCount struct {
	Value     string `json:"value"`
	Frequency int64  `json:"frequency"`
}

// Field is a column of a source or target table.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Nullable    bool   `json:"nullable"`
	MaxLength   int    `json:"max_length,omitempty"`

	RowCount         int64        `json:"row_count,omitempty"`
	RowsCheckedCount int64        `json:"rows_checked_count,omitempty"`
	FractionEmpty    float64      `json:"fraction_empty,omitempty"`
	UniqueCount      int64        `json:"unique_count,omitempty"`
	FractionUnique   float64      `json:"fraction_unique,omitempty"`
	ValueCounts      []ValueCount `json:"value_counts,omitempty"`
}

// Table is a source or target table.
type Table struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Comment          string   `json:"comment,omitempty"`
	RowCount         int64    `json:"row_count,omitempty"`
	RowsCheckedCount int64    `json:"rows_checked_count,omitempty"`
	Fields           []*Field `json:"fields"`
}

// Field returns the field with the given name ignoring case, or nil.
func (t *Table) Field(name string) *Field {
	for _, f := range t.Fields {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// Database is a set of tables: a scanned source or a target data model.
type Database struct {
	Name   string   `json:"name"`
	Tables []*Table `json:"tables"`
}

// Table returns the table with the given name ignoring case, or nil.
func (d *Database) Table(name string) *Table {
	if d == nil {
		return nil
	}
	for _, t := range d.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// TableNames returns the table names in model order.
func (d *Database) TableNames() []string {
	names := make([]string, len(d.Tables))
	for i, t := range d.Tables {
		names[i] = t.Name
	}
	return names
}

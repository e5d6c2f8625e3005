package mapping

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownItem      = errors.New("unknown mapping item")
	ErrNoTableMapping   = errors.New("field mapping without table mapping")
	ErrIncompleteFields = errors.New("source and target field must both be set")
)

// ItemToItemMap maps a source item to a target item. Table mappings leave the
// field names empty.
type ItemToItemMap struct {
	SourceTable string `json:"source_table"`
	SourceField string `json:"source_field,omitempty"`
	TargetTable string `json:"target_table"`
	TargetField string `json:"target_field,omitempty"`
	Logic       string `json:"logic,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// IsTableMapping reports whether the map connects two tables.
func (m ItemToItemMap) IsTableMapping() bool {
	return m.SourceField == "" && m.TargetField == ""
}

func (m ItemToItemMap) sameItems(o ItemToItemMap) bool {
	return strings.EqualFold(m.SourceTable, o.SourceTable) &&
		strings.EqualFold(m.SourceField, o.SourceField) &&
		strings.EqualFold(m.TargetTable, o.TargetTable) &&
		strings.EqualFold(m.TargetField, o.TargetField)
}

func (m ItemToItemMap) sameTables(sourceTable, targetTable string) bool {
	return strings.EqualFold(m.SourceTable, sourceTable) && strings.EqualFold(m.TargetTable, targetTable)
}

func (m ItemToItemMap) String() string {
	if m.IsTableMapping() {
		return fmt.Sprintf("%s -> %s", m.SourceTable, m.TargetTable)
	}
	return fmt.Sprintf("%s.%s -> %s.%s", m.SourceTable, m.SourceField, m.TargetTable, m.TargetField)
}

// ETL is a source database, a target data model and the mappings between them.
type ETL struct {
	Source   *Database       `json:"source"`
	Target   *Database       `json:"target"`
	Mappings []ItemToItemMap `json:"mappings"`
}

// NewETL creates an ETL without mappings.
func NewETL(source, target *Database) *ETL {
	return &ETL{Source: source, Target: target}
}

// AddMapping adds m after checking that its items exist. A field mapping needs
// the mapping of its tables. Adding an existing mapping updates its logic and
// comment.
func (e *ETL) AddMapping(m ItemToItemMap) error {
	if (m.SourceField == "") != (m.TargetField == "") {
		return fmt.Errorf("%w: %s", ErrIncompleteFields, m)
	}
	if err := e.checkItem(e.Source, "source", m.SourceTable, m.SourceField); err != nil {
		return err
	}
	if err := e.checkItem(e.Target, "target", m.TargetTable, m.TargetField); err != nil {
		return err
	}
	if !m.IsTableMapping() && !e.hasTableMapping(m.SourceTable, m.TargetTable) {
		return fmt.Errorf("%w: %s -> %s", ErrNoTableMapping, m.SourceTable, m.TargetTable)
	}

	for i := range e.Mappings {
		if e.Mappings[i].sameItems(m) {
			e.Mappings[i].Logic = m.Logic
			e.Mappings[i].Comment = m.Comment
			return nil
		}
	}
	e.Mappings = append(e.Mappings, m)
	return nil
}

func (e *ETL) checkItem(db *Database, side, table, field string) error {
	t := db.Table(table)
	if t == nil {
		return fmt.Errorf("%w: %s table %s", ErrUnknownItem, side, table)
	}
	if field != "" && t.Field(field) == nil {
		return fmt.Errorf("%w: %s field %s.%s", ErrUnknownItem, side, table, field)
	}
	return nil
}

func (e *ETL) hasTableMapping(sourceTable, targetTable string) bool {
	for _, m := range e.Mappings {
		if m.IsTableMapping() && m.sameTables(sourceTable, targetTable) {
			return true
		}
	}
	return false
}

// RemoveMapping removes the mapping between the given items. Removing a table
// mapping also removes the field mappings of that table pair. It reports
// whether a mapping was removed.
func (e *ETL) RemoveMapping(m ItemToItemMap) bool {
	found := false
	for _, existing := range e.Mappings {
		if existing.sameItems(m) {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	kept := e.Mappings[:0]
	for _, existing := range e.Mappings {
		if existing.sameItems(m) {
			continue
		}
		if m.IsTableMapping() && !existing.IsTableMapping() && existing.sameTables(m.SourceTable, m.TargetTable) {
			continue
		}
		kept = append(kept, existing)
	}
	e.Mappings = kept
	return true
}

// TableMappings returns the table-to-table mappings.
func (e *ETL) TableMappings() []ItemToItemMap {
	var out []ItemToItemMap
	for _, m := range e.Mappings {
		if m.IsTableMapping() {
			out = append(out, m)
		}
	}
	return out
}

// MappingsFor returns the field-to-field mappings of a table pair.
func (e *ETL) MappingsFor(sourceTable, targetTable string) []ItemToItemMap {
	var out []ItemToItemMap
	for _, m := range e.Mappings {
		if !m.IsTableMapping() && m.sameTables(sourceTable, targetTable) {
			out = append(out, m)
		}
	}
	return out
}

// TargetsOf returns the names of the target tables a source table maps to.
func (e *ETL) TargetsOf(sourceTable string) []string {
	var out []string
	for _, m := range e.TableMappings() {
		if strings.EqualFold(m.SourceTable, sourceTable) {
			out = append(out, m.TargetTable)
		}
	}
	return out
}

package dbconfig

import (
	"fmt"
	"io"
	"strings"
)

// Scan field names shared by every configuration.
const (
	DelimiterField               = "DELIMITER"
	TablesToScanField            = "TABLES_TO_SCAN"
	ScanFieldValuesField         = "SCAN_FIELD_VALUES"
	MinCellCountField            = "MIN_CELL_COUNT"
	MaxDistinctValuesField       = "MAX_DISTINCT_VALUES"
	RowsPerTableField            = "ROWS_PER_TABLE"
	CalculateNumericStatsField   = "CALCULATE_NUMERIC_STATS"
	NumericStatsSamplerSizeField = "NUMERIC_STATS_SAMPLER_SIZE"
)

const ErrDuplicateDefinitionsForField = "Multiple definitions for field "

// ConfigurationValidator checks relations between fields of a configuration.
type ConfigurationValidator func(c *Configuration) *ValidationFeedback

// Configuration is an ordered set of fields plus validators spanning several fields.
type Configuration struct {
	fields     []*ConfigurationField
	validators []ConfigurationValidator
}

// NewConfiguration creates a configuration. Field names must be unique.
func NewConfiguration(fields ...*ConfigurationField) (*Configuration, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return nil, &ConfigError{Message: ErrDuplicateDefinitionsForField + f.Name}
		}
		seen[f.Name] = true
	}
	return &Configuration{fields: fields}, nil
}

// ScanFields returns fresh copies of the fields controlling a scan.
func ScanFields() []*ConfigurationField {
	return []*ConfigurationField{
		NewField(DelimiterField, "Delimiter", "Field delimiter of delimited text files").
			DefaultValue(",").Required(),
		NewField(TablesToScanField, "Tables to scan", "Comma separated list of tables, or * for all tables").
			DefaultValue("*").Required(),
		NewField(ScanFieldValuesField, "Scan field values", "Collect value frequencies (yes/no)").
			DefaultValue("yes").YesNoValue().Required(),
		NewField(MinCellCountField, "Min cell count", "Values occurring fewer times are left out of the report").
			DefaultValue("5").IntegerValue().Required(),
		NewField(MaxDistinctValuesField, "Max distinct values", "Maximum number of distinct values reported per field").
			DefaultValue("1000").IntegerValue().Required(),
		NewField(RowsPerTableField, "Rows per table", "Number of rows sampled per table").
			DefaultValue("100000").IntegerValue().Required(),
		NewField(CalculateNumericStatsField, "Calculate numeric stats", "Calculate numeric statistics (yes/no)").
			DefaultValue("no").YesNoValue().Required(),
		NewField(NumericStatsSamplerSizeField, "Numeric stats sampler size", "Reservoir size for numeric statistics").
			DefaultValue("500").IntegerValue().Required(),
	}
}

// AddValidator registers a validator spanning several fields.
func (c *Configuration) AddValidator(v ConfigurationValidator) {
	c.validators = append(c.validators, v)
}

func (c *Configuration) Fields() []*ConfigurationField {
	return c.fields
}

// Field returns the field with the given name (case-insensitive), or nil.
func (c *Configuration) Field(name string) *ConfigurationField {
	for _, f := range c.fields {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// Get is like Field but fails for unknown names.
func (c *Configuration) Get(name string) (*ConfigurationField, error) {
	if f := c.Field(name); f != nil {
		return f, nil
	}
	return nil, configErrorf("No ConfigurationField object found for field name '%s'", name)
}

// Value returns the value of the named field, or "" when there is no such field.
func (c *Configuration) Value(name string) string {
	if f := c.Field(name); f != nil {
		return f.Value()
	}
	return ""
}

// LoadAndValidate copies values from the ini file into the fields and validates them.
// A key missing from the ini file takes the field default.
func (c *Configuration) LoadAndValidate(iniFile *IniFile) *ValidationFeedback {
	for _, f := range c.fields {
		if iniFile.Has(f.Name) {
			f.SetValue(iniFile.Get(f.Name))
		} else {
			f.SetValue(f.Default())
		}
	}
	return c.ValidateAll()
}

// ValidateAll runs the field validators, then the configuration validators.
func (c *Configuration) ValidateAll() *ValidationFeedback {
	feedback := NewValidationFeedback()
	for _, f := range c.fields {
		feedback.Merge(f.Validate())
	}
	for _, v := range c.validators {
		feedback.Merge(v(c))
	}
	return feedback
}

// ToIniFile renders the current values as an ini file.
func (c *Configuration) ToIniFile() *IniFile {
	f := NewIniFile()
	for _, field := range c.fields {
		f.Set(field.Name, field.Value())
	}
	return f
}

// PrintIniFileTemplate writes one "NAME: default<TAB>tooltip" line per field.
func (c *Configuration) PrintIniFileTemplate(w io.Writer) error {
	for _, f := range c.fields {
		def := f.Default()
		if def == "" {
			def = "_"
		}
		if _, err := fmt.Fprintf(w, "%s: %s\t%s\n", f.Name, def, f.ToolTip); err != nil {
			return err
		}
	}
	return nil
}

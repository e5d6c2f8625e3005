package dbconfig

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	ValueRequiredFormat    = "A non-empty value is required for field %s (name %s)"
	IntegerValueFormat     = "An integer value is allowed for field %s (name %s)"
	OnlyYesNoAllowedFormat = "Only the values 'yes' or 'no' are allowed for field %s (name %s)"
)

var (
	integerPattern = regexp.MustCompile(`^\d*$`)
	yesNoPattern   = regexp.MustCompile(`(?i)^(yes|no)$`)
)

// FieldValidator checks a single field. Validators may normalize the value.
type FieldValidator func(field *ConfigurationField) *ValidationFeedback

// ConfigurationField is one named setting of a source configuration.
type ConfigurationField struct {
	Name    string
	Label   string
	ToolTip string

	value        string
	defaultValue string
	validators   []FieldValidator
}

// NewField creates a field without validators and with an empty default.
func NewField(name, label, toolTip string) *ConfigurationField {
	return &ConfigurationField{Name: name, Label: label, ToolTip: toolTip}
}

// Required adds a validator rejecting empty values.
func (f *ConfigurationField) Required() *ConfigurationField {
	return f.AddValidator(requiredValidator)
}

// IntegerValue adds a validator accepting only digits. Empty values pass.
func (f *ConfigurationField) IntegerValue() *ConfigurationField {
	return f.AddValidator(integerValidator)
}

// YesNoValue adds a validator accepting only yes or no, in any case.
// Accepted values are stored in lower case.
func (f *ConfigurationField) YesNoValue() *ConfigurationField {
	return f.AddValidator(yesNoValidator)
}

// DefaultValue sets the value used when the ini file has no entry for the field.
func (f *ConfigurationField) DefaultValue(value string) *ConfigurationField {
	f.defaultValue = value
	return f
}

// AddValidator appends a custom validator.
func (f *ConfigurationField) AddValidator(v FieldValidator) *ConfigurationField {
	f.validators = append(f.validators, v)
	return f
}

func (f *ConfigurationField) SetValue(value string) *ConfigurationField {
	f.value = value
	return f
}

func (f *ConfigurationField) Value() string {
	return f.value
}

func (f *ConfigurationField) Default() string {
	return f.defaultValue
}

// Validate runs all validators of the field and merges their feedback.
func (f *ConfigurationField) Validate() *ValidationFeedback {
	feedback := NewValidationFeedback()
	for _, v := range f.validators {
		feedback.Merge(v(f))
	}
	return feedback
}

func (f *ConfigurationField) String() string {
	return fmt.Sprintf("%s=%q", f.Name, f.value)
}

func requiredValidator(f *ConfigurationField) *ValidationFeedback {
	feedback := NewValidationFeedback()
	if f.value == "" {
		feedback.AddError(fmt.Sprintf(ValueRequiredFormat, f.Label, f.Name), f)
	}
	return feedback
}

func integerValidator(f *ConfigurationField) *ValidationFeedback {
	feedback := NewValidationFeedback()
	if f.value != "" && !integerPattern.MatchString(f.value) {
		feedback.AddError(fmt.Sprintf(IntegerValueFormat, f.Label, f.Name), f)
	}
	return feedback
}

func yesNoValidator(f *ConfigurationField) *ValidationFeedback {
	feedback := NewValidationFeedback()
	if f.value == "" {
		return feedback
	}
	if yesNoPattern.MatchString(f.value) {
		f.value = strings.ToLower(f.value)
	} else {
		feedback.AddError(fmt.Sprintf(OnlyYesNoAllowedFormat, f.Label, f.Name), f)
	}
	return feedback
}

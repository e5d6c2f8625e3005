package dbconfig

import "strings"

// ValidationFeedback collects warning and error messages, each linked to the fields
// that caused it. Messages keep the order in which they were first reported.
type ValidationFeedback struct {
	warnings     map[string][]*ConfigurationField
	errors       map[string][]*ConfigurationField
	warningOrder []string
	errorOrder   []string
}

func NewValidationFeedback() *ValidationFeedback {
	return &ValidationFeedback{
		warnings: make(map[string][]*ConfigurationField),
		errors:   make(map[string][]*ConfigurationField),
	}
}

func (v *ValidationFeedback) IsFullyValid() bool {
	return len(v.warnings) == 0 && len(v.errors) == 0
}

func (v *ValidationFeedback) HasWarnings() bool {
	return len(v.warnings) > 0
}

func (v *ValidationFeedback) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *ValidationFeedback) AddWarning(message string, field *ConfigurationField) {
	v.warningOrder = add(v.warnings, v.warningOrder, message, field)
}

func (v *ValidationFeedback) AddError(message string, field *ConfigurationField) {
	v.errorOrder = add(v.errors, v.errorOrder, message, field)
}

// Merge adds all messages of other. Fields reported under an existing message are
// appended to it.
func (v *ValidationFeedback) Merge(other *ValidationFeedback) {
	if other == nil {
		return
	}
	for _, msg := range other.warningOrder {
		for _, f := range other.warnings[msg] {
			v.AddWarning(msg, f)
		}
	}
	for _, msg := range other.errorOrder {
		for _, f := range other.errors[msg] {
			v.AddError(msg, f)
		}
	}
}

// Errors returns the error messages in reporting order.
func (v *ValidationFeedback) Errors() []string {
	return append([]string(nil), v.errorOrder...)
}

// Warnings returns the warning messages in reporting order.
func (v *ValidationFeedback) Warnings() []string {
	return append([]string(nil), v.warningOrder...)
}

// ErrorFields returns the fields reported with an error message.
func (v *ValidationFeedback) ErrorFields(message string) []*ConfigurationField {
	return v.errors[message]
}

// WarningFields returns the fields reported with a warning message.
func (v *ValidationFeedback) WarningFields(message string) []*ConfigurationField {
	return v.warnings[message]
}

// Err returns a ConfigError listing every error message, or nil.
func (v *ValidationFeedback) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return configErrorf("There are errors in the configuration:\n\t%s", strings.Join(v.errorOrder, "\n\t"))
}

func add(m map[string][]*ConfigurationField, order []string, message string, field *ConfigurationField) []string {
	fields, ok := m[message]
	if !ok {
		order = append(order, message)
	}
	for _, f := range fields {
		if f == field {
			return order
		}
	}
	m[message] = append(fields, field)
	return order
}

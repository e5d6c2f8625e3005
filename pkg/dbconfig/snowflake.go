package dbconfig

import (
	"fmt"
	"strings"
)

const (
	SnowflakeAccount       = "SNOWFLAKE_ACCOUNT"
	SnowflakeUser          = "SNOWFLAKE_USER"
	SnowflakePassword      = "SNOWFLAKE_PASSWORD"
	SnowflakeAuthenticator = "SNOWFLAKE_AUTHENTICATOR"
	SnowflakeWarehouse     = "SNOWFLAKE_WAREHOUSE"
	SnowflakeDatabase      = "SNOWFLAKE_DATABASE"
	SnowflakeSchema        = "SNOWFLAKE_SCHEMA"

	ErrMustSetPasswordOrAuthenticator     = "Either password or authenticator must be specified for Snowflake"
	ErrMustNotSetPasswordAndAuthenticator = "Specify only one of password or authenticator Snowflake"
	ErrIncorrectSchemaSpecification       = "Database should be specified as 'warehouse.database.schema', " +
		"e.g. 'computewh.snowflake_sample_data.weather"
)

// NewSnowflakeConfiguration returns the fields of a Snowflake source. Exactly one of
// password and authenticator must be set.
func NewSnowflakeConfiguration() *Configuration {
	c, _ := NewConfiguration(
		NewField(SnowflakeAccount, "Account", "Account for the Snowflake instance").Required(),
		NewField(SnowflakeUser, "User", "User for the Snowflake instance").Required(),
		NewField(SnowflakePassword, "Password", "Password for the Snowflake instance"),
		NewField(SnowflakeWarehouse, "Warehouse", "Warehouse for the Snowflake instance").Required(),
		NewField(SnowflakeDatabase, "Database", "Database for the Snowflake instance").Required(),
		NewField(SnowflakeSchema, "Schema", "Schema for the Snowflake instance").Required(),
		NewField(SnowflakeAuthenticator, "Authenticator method",
			"Snowflake authenticator method (only 'externalbrowser' is currently supported)"),
	)
	c.AddValidator(passwordXORAuthenticator)
	return c
}

func passwordXORAuthenticator(c *Configuration) *ValidationFeedback {
	feedback := NewValidationFeedback()
	password := c.Value(SnowflakePassword)
	authenticator := c.Value(SnowflakeAuthenticator)

	var msg string
	switch {
	case password == "" && authenticator == "":
		msg = ErrMustSetPasswordOrAuthenticator
	case password != "" && authenticator != "":
		msg = ErrMustNotSetPasswordAndAuthenticator
	default:
		return feedback
	}
	feedback.AddError(msg, c.Field(SnowflakePassword))
	feedback.AddError(msg, c.Field(SnowflakeAuthenticator))
	return feedback
}

// SnowflakeSettings validates the Snowflake fields of an ini file and converts them
// into connection settings. Warnings are returned alongside valid settings.
func SnowflakeSettings(iniFile *IniFile) (*DbSettings, *ValidationFeedback, error) {
	c := NewSnowflakeConfiguration()
	feedback := c.LoadAndValidate(iniFile)
	if err := feedback.Err(); err != nil {
		return nil, feedback, err
	}

	database := fmt.Sprintf("%s.%s.%s",
		c.Value(SnowflakeWarehouse),
		c.Value(SnowflakeDatabase),
		c.Value(SnowflakeSchema))
	return &DbSettings{
		SourceType:    SourceDatabase,
		DbType:        Snowflake,
		Server:        fmt.Sprintf("https://%s.snowflakecomputing.com", c.Value(SnowflakeAccount)),
		Database:      database,
		Domain:        database,
		User:          c.Value(SnowflakeUser),
		Password:      c.Value(SnowflakePassword),
		Authenticator: c.Value(SnowflakeAuthenticator),
	}, feedback, nil
}

// SplitSnowflakeDatabase splits "warehouse.database.schema".
func SplitSnowflakeDatabase(name string) (warehouse, database, schema string, err error) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 {
		return "", "", "", &ConfigError{Message: ErrIncorrectSchemaSpecification}
	}
	return parts[0], parts[1], parts[2], nil
}

package dbconfig

import "net"

const (
	MySQLServer   = "MYSQL_SERVER"
	MySQLPort     = "MYSQL_PORT"
	MySQLDatabase = "MYSQL_DATABASE"
	MySQLUser     = "MYSQL_USER"
	MySQLPassword = "MYSQL_PASSWORD"
)

// NewMySQLConfiguration returns the fields of a MySQL source configured with
// MYSQL_* keys instead of the classic SERVER_LOCATION / DATABASE_NAME keys.
func NewMySQLConfiguration() *Configuration {
	c, _ := NewConfiguration(
		NewField(MySQLServer, "Server", "Name or IP address of the database server").Required(),
		NewField(MySQLPort, "Port", "The IP port of the database server (usually 3306)").
			DefaultValue("3306").IntegerValue().Required(),
		NewField(MySQLDatabase, "Database", "The name of the database containing the source tables").Required(),
		NewField(MySQLUser, "User", "The user used to log in to the server").Required(),
		NewField(MySQLPassword, "Password", "The password used to log in to the server"),
	)
	return c
}

// MySQLSettings validates the MYSQL_* fields of an ini file and converts them into
// connection settings.
func MySQLSettings(iniFile *IniFile) (*DbSettings, *ValidationFeedback, error) {
	c := NewMySQLConfiguration()
	feedback := c.LoadAndValidate(iniFile)
	if err := feedback.Err(); err != nil {
		return nil, feedback, err
	}

	database := c.Value(MySQLDatabase)
	return &DbSettings{
		SourceType: SourceDatabase,
		DbType:     MySQL,
		Server:     net.JoinHostPort(c.Value(MySQLServer), c.Value(MySQLPort)),
		Database:   database,
		Domain:     database,
		User:       c.Value(MySQLUser),
		Password:   c.Value(MySQLPassword),
	}, feedback, nil
}

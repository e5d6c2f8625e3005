package main

import "flag"

// Flags holds all command-line flags
type Flags struct {
	// Commands
	Ini               *string
	Scan              *bool
	List              *bool
	CreateConfig      *string
	PrintIniTemplate  *string
	MappingFromReport *string
	ReplayDLQ         *bool

	// Options
	Config      *string
	Output      *string
	Tables      *string
	Parallelism *int
	CDM         *string
	EnvFile     *string

	// Logging
	LogLevel *string
	LogJSON  *bool

	// Info
	Version *bool
	Help    *bool
}

// ParseFlags parses command-line flags
func ParseFlags() *Flags {
	f := &Flags{
		Ini:               flag.String("ini", "", "Scan the source described by a WhiteRabbit ini file"),
		Scan:              flag.Bool("scan", false, "Scan the source described by --config"),
		List:              flag.Bool("list", false, "List the tables of the configured source"),
		CreateConfig:      flag.String("create-config", "", "Write a sample config.yaml for a database type"),
		PrintIniTemplate:  flag.String("print-ini-template", "", "Print the ini template of a database type"),
		MappingFromReport: flag.String("mapping-from-report", "", "Create a mapping document from a scan report"),
		ReplayDLQ:         flag.Bool("replay-dlq", false, "Resend scan events from the dead letter queue"),

		Config:      flag.String("config", "config.yaml", "Configuration file"),
		Output:      flag.String("output", "", "Output file (report, config or mapping document)"),
		Tables:      flag.String("tables", "", "Comma separated tables, overrides the configuration"),
		Parallelism: flag.Int("parallel", 0, "Tables scanned at once, -1 = one per CPU (0 = from config)"),
		CDM:         flag.String("cdm", "", "CDM field CSV used as mapping target"),
		EnvFile:     flag.String("env", ".env", "Environment file loaded before the configuration"),

		LogLevel: flag.String("log-level", "info", "Log level: debug, info, warn, error"),
		LogJSON:  flag.Bool("log-json", false, "Write logs as JSON"),

		Version: flag.Bool("version", false, "Show version"),
		Help:    flag.Bool("help", false, "Show help"),
	}

	flag.Usage = PrintHelp
	flag.Parse()
	return f
}

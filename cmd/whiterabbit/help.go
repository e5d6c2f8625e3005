package main

import "fmt"

const version = "1.0.0"

// PrintVersion prints version information
func PrintVersion() {
	fmt.Printf("whiterabbit version %s\n", version)
	fmt.Println("WhiteRabbit - source data scanner for ETL design")
}

// PrintHelp prints help information
func PrintHelp() {
	fmt.Println("WhiteRabbit - source data scanner for ETL design")
	fmt.Printf("Version: %s\n\n", version)

	fmt.Println("USAGE:")
	fmt.Println("  whiterabbit [command] [options]")
	fmt.Println()

	fmt.Println("COMMANDS:")
	fmt.Println("    --ini <file>                   Scan using a WhiteRabbit ini file, writes ScanReport.xlsx")
	fmt.Println("                                   into WORKING_FOLDER")
	fmt.Println("    --scan                         Scan using the YAML config (--config)")
	fmt.Println("    --list                         List tables of the configured source")
	fmt.Println("    --mapping-from-report <xlsx>   Create a mapping document (.json or .json.gz)")
	fmt.Println("    --replay-dlq                   Resend undelivered scan events")
	fmt.Println("    --create-config <type>         Write a sample config (default config.yaml)")
	fmt.Println("    --print-ini-template <type>    Print the ini fields of a database type")
	fmt.Println()

	fmt.Println("OPTIONS:")
	fmt.Println("    --config <file>                Configuration file (default: config.yaml)")
	fmt.Println("    --output <file>                Output file")
	fmt.Println("    --tables <a,b>                 Tables to scan")
	fmt.Println("    --parallel <n>                 Tables scanned at once")
	fmt.Println("    --cdm <csv>                    CDM field CSV for --mapping-from-report")
	fmt.Println("    --env <file>                   Environment file (default: .env)")
	fmt.Println("    --log-level <level>            debug, info, warn, error")
	fmt.Println("    --log-json                     JSON logs")
	fmt.Println("    --version                      Show version")
	fmt.Println("    --help                         Show this help")
	fmt.Println()

	fmt.Println("DATABASE TYPES:")
	fmt.Println("    Delimited text files, MySQL, Oracle, SQL Server, PostgreSQL, MS Access, PDW,")
	fmt.Println("    Redshift, Teradata, BigQuery, Azure, Snowflake, SQLite")
	fmt.Println()

	fmt.Println("EXAMPLES:")
	fmt.Println("  whiterabbit --ini source.ini")
	fmt.Println("  whiterabbit --create-config postgresql --output cdm.yaml")
	fmt.Println("  whiterabbit --config cdm.yaml --scan --parallel 4")
	fmt.Println("  whiterabbit --mapping-from-report ScanReport.xlsx --cdm CDM_v5.4.csv --output etl.json.gz")
}

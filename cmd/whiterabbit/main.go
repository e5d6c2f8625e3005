package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/whiterabbit/cmd/whiterabbit/commands"
	_ "github.com/ruslano69/whiterabbit/pkg/adapters/mssql"
	_ "github.com/ruslano69/whiterabbit/pkg/adapters/mysql"
	_ "github.com/ruslano69/whiterabbit/pkg/adapters/odbc"
	_ "github.com/ruslano69/whiterabbit/pkg/adapters/postgres"
	_ "github.com/ruslano69/whiterabbit/pkg/adapters/redshift"
	_ "github.com/ruslano69/whiterabbit/pkg/adapters/sqlite"
	"github.com/ruslano69/whiterabbit/pkg/dbconfig"
	"github.com/ruslano69/whiterabbit/pkg/retry"
	"github.com/ruslano69/whiterabbit/pkg/scan"
)

func main() {
	flags := ParseFlags()
	setupLogging(*flags.LogLevel, *flags.LogJSON)

	if *flags.Version {
		PrintVersion()
		return
	}
	if *flags.Help {
		PrintHelp()
		return
	}

	if err := godotenv.Load(*flags.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("file", *flags.EnvFile).Msg("Failed to load environment file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case *flags.CreateConfig != "":
		err = createConfig(*flags.CreateConfig, *flags.Output)
	case *flags.PrintIniTemplate != "":
		err = commands.PrintIniTemplate(os.Stdout, *flags.PrintIniTemplate)
	case *flags.MappingFromReport != "":
		_, err = commands.MappingFromReport(commands.MappingOptions{
			ReportPath: *flags.MappingFromReport,
			CDMPath:    *flags.CDM,
			Output:     *flags.Output,
		})
	case *flags.Ini != "":
		err = scanIni(ctx, flags)
	case *flags.Scan:
		err = scanConfig(ctx, flags)
	case *flags.List:
		err = listTables(ctx, flags)
	case *flags.ReplayDLQ:
		err = replayDLQ(ctx, flags)
	default:
		PrintHelp()
		os.Exit(1)
	}

	if err != nil {
		fatal(err)
	}
}

func setupLogging(level string, jsonOutput bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if jsonOutput {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// scanIni runs a classic ini scan: the report goes to WORKING_FOLDER
func scanIni(ctx context.Context, flags *Flags) error {
	iniFile, err := dbconfig.LoadIniFile(*flags.Ini)
	if err != nil {
		return err
	}

	settings, feedback, err := dbconfig.SettingsFromIni(iniFile)
	logFeedback(feedback)
	if err != nil {
		return err
	}

	scanSettings, feedback, err := dbconfig.ScanSettingsFromIni(iniFile)
	logFeedback(feedback)
	if err != nil {
		return err
	}

	params := scan.ParametersFromSettings(scanSettings)
	if *flags.Parallelism != 0 {
		params.Parallelism = *flags.Parallelism
	}

	_, err = commands.RunScan(ctx, commands.ScanOptions{
		Settings:   settings,
		Params:     params,
		Tables:     dbconfig.ParseTables(*flags.Tables),
		ReportPath: commands.ReportPath(settings, *flags.Output),
		Retry:      retry.DefaultConfig(),
	})
	return err
}

// scanConfig runs a YAML configured scan and notifies the integrations
func scanConfig(ctx context.Context, flags *Flags) error {
	config, settings, err := loadSettings(*flags.Config)
	if err != nil {
		return err
	}

	params := config.ScanParameters()
	if *flags.Parallelism != 0 {
		params.Parallelism = *flags.Parallelism
	}
	output := config.Output.Report
	if *flags.Output != "" {
		output = *flags.Output
	}

	out, scanErr := commands.RunScan(ctx, commands.ScanOptions{
		Settings:   settings,
		Params:     params,
		Tables:     dbconfig.ParseTables(*flags.Tables),
		ReportPath: commands.ReportPath(settings, output),
		Checksum:   config.Output.Checksum,
		Retry:      config.Retry,
	})

	// Integrations are notified about failed scans too
	pubErr := commands.Publish(ctx, config.PublishOptions(), out, scanErr)
	if pubErr != nil {
		log.Error().Err(pubErr).Msg("Failed to publish scan results")
	}

	if config.Metrics.PushGateway != "" {
		if err := commands.PushMetrics(ctx, config.Metrics.PushGateway, config.Metrics.Job); err != nil {
			log.Error().Err(err).Msg("Failed to push metrics")
		}
	}

	if scanErr != nil {
		return scanErr
	}
	return pubErr
}

func listTables(ctx context.Context, flags *Flags) error {
	config, settings, err := loadSettings(*flags.Config)
	if err != nil {
		return err
	}
	return commands.ListTables(ctx, os.Stdout, settings, config.Retry)
}

func replayDLQ(ctx context.Context, flags *Flags) error {
	config, err := LoadConfig(*flags.Config)
	if err != nil {
		return err
	}
	_, err = commands.ReplayDLQ(ctx, config.PublishOptions())
	return err
}

func loadSettings(path string) (*Config, *dbconfig.DbSettings, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	settings, feedback, err := config.DbSettings()
	logFeedback(feedback)
	if err != nil {
		return nil, nil, err
	}
	return config, settings, nil
}

// createConfig writes a sample configuration file
func createConfig(dbType, output string) error {
	config, err := CreateSampleConfig(dbType)
	if err != nil {
		return err
	}
	if output == "" {
		output = "config.yaml"
	}
	if err := SaveConfig(output, config); err != nil {
		return err
	}

	log.Info().Str("file", output).Msgf("Created sample %s config", config.Source.Type)
	log.Info().Msgf("Edit the file with your source settings and run: whiterabbit --config %s --scan", output)
	return nil
}

func logFeedback(feedback *dbconfig.ValidationFeedback) {
	if feedback == nil {
		return
	}
	for _, w := range feedback.Warnings() {
		log.Warn().Msg(w)
	}
	for _, e := range feedback.Errors() {
		log.Error().Msg(e)
	}
}

// fatal logs the error and exits
func fatal(err error) {
	log.Fatal().Err(err).Msg("Command failed")
}

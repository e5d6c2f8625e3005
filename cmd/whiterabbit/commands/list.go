package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/ruslano69/whiterabbit/pkg/dbconfig"
	"github.com/ruslano69/whiterabbit/pkg/retry"
	"github.com/ruslano69/whiterabbit/pkg/scan"
)

// ListTables prints the tables of the source.
func ListTables(ctx context.Context, w io.Writer, settings *dbconfig.DbSettings, cfg retry.Config) error {
	source, err := openSource(ctx, settings, cfg)
	if err != nil {
		return err
	}
	defer source.Close(ctx)

	tables, err := source.TableNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables found")
		return nil
	}

	fmt.Fprintf(w, "Found %d table(s) in %s:\n", len(tables), source.Name())
	for i, table := range tables {
		fmt.Fprintf(w, "  %d. %s\n", i+1, table)
	}
	return nil
}

// PrintIniTemplate writes the ini fields accepted for a source type.
func PrintIniTemplate(w io.Writer, dbType string) error {
	t, err := dbconfig.DbTypeFromName(dbType)
	if err != nil {
		return err
	}
	if t == dbconfig.Sas7bdat {
		return scan.ErrSASUnsupported
	}
	return dbconfig.TemplateConfiguration(t).PrintIniFileTemplate(w)
}

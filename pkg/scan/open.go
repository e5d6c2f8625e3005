package scan

import (
	"context"
	"fmt"

	"github.com/ruslano69/whiterabbit/pkg/dbconfig"
)

// OpenSource opens the source described by settings. Tables configured in the
// settings are not applied here for databases; pass them to Scanner.Run.
func OpenSource(ctx context.Context, settings *dbconfig.DbSettings) (Source, error) {
	switch settings.SourceType {
	case dbconfig.SourceCSVFiles:
		return NewDelimitedSource(settings.WorkingFolder, settings.Delimiter, settings.Encoding, settings.Tables)
	case dbconfig.SourceSASFiles:
		return nil, ErrSASUnsupported
	case dbconfig.SourceDatabase:
		cfg, err := settings.AdapterConfig()
		if err != nil {
			return nil, err
		}
		return OpenDatabaseSource(ctx, cfg)
	}
	return nil, fmt.Errorf("unsupported source type %s", settings.SourceType)
}

// SelectTables returns the configured tables, or all tables of the source when
// none are configured.
func SelectTables(ctx context.Context, source Source, configured []string) ([]string, error) {
	if len(configured) > 0 {
		return configured, nil
	}
	tables, err := source.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

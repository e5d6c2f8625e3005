package odbc

import (
	"context"
	"os"
	"testing"

	"github.com/ruslano69/whiterabbit/pkg/adapters"
)

func TestRegistration(t *testing.T) {
	for _, kind := range Kinds {
		if !adapters.IsRegistered(kind) {
			t.Errorf("Expected %s to be registered", kind)
			continue
		}
		a, err := adapters.NewWithoutConnect(kind)
		if err != nil {
			t.Fatalf("Failed to create %s adapter: %v", kind, err)
		}
		if a.(*Adapter).Kind() != kind {
			t.Errorf("Expected kind %s, got %s", kind, a.(*Adapter).Kind())
		}
	}
}

func TestConnect_UnknownKind(t *testing.T) {
	a := &Adapter{kind: "db2"}
	if err := a.Connect(context.Background(), adapters.Config{DSN: "Driver=x;"}); err == nil {
		t.Error("Expected error for a type without SQL dialect")
	}
}

// TestIntegration_Oracle requires ORACLE_ODBC_DSN and ORACLE_SCHEMA.
func TestIntegration_Oracle(t *testing.T) {
	dsn := os.Getenv("ORACLE_ODBC_DSN")
	if dsn == "" {
		t.Skip("ORACLE_ODBC_DSN not set")
	}
	ctx := context.Background()

	adapter, err := adapters.New(ctx, adapters.Config{
		Type:     "oracle",
		DSN:      dsn,
		Database: os.Getenv("ORACLE_SCHEMA"),
	})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer adapter.Close(ctx)

	tables, err := adapter.GetTableNames(ctx)
	if err != nil {
		t.Fatalf("Failed to list tables: %v", err)
	}
	t.Logf("Oracle tables: %v", tables)
}

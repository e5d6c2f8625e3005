package retry

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestDLQ(t *testing.T, maxSize int) (*DLQ, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dlq", "events.json")
	dlq, err := NewDLQ(DLQConfig{Enabled: true, FilePath: path, MaxSize: maxSize, RetentionPeriod: time.Hour})
	if err != nil {
		t.Fatalf("Failed to create DLQ: %v", err)
	}
	return dlq, path
}

func addEntry(t *testing.T, dlq *DLQ, topic string, ts time.Time) {
	t.Helper()
	err := dlq.Add(DLQEntry{
		Timestamp:   ts,
		Topic:       topic,
		Attempts:    3,
		LastError:   "broker unavailable",
		FailureType: "max_attempts_exceeded",
		Data:        json.RawMessage(`{"scan_id":"1"}`),
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
}

func TestDLQ_AddAndGet(t *testing.T) {
	dlq, path := newTestDLQ(t, 0)
	addEntry(t, dlq, "scans", time.Time{})

	entries := dlq.Get()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID == "" || entries[0].Timestamp.IsZero() {
		t.Errorf("ID and timestamp must be set: %+v", entries[0])
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("DLQ file not written: %v", err)
	}
}

func TestDLQ_MaxSize(t *testing.T) {
	dlq, _ := newTestDLQ(t, 2)
	for _, topic := range []string{"a", "b", "c"} {
		addEntry(t, dlq, topic, time.Now())
	}

	entries := dlq.Get()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Topic != "b" || entries[1].Topic != "c" {
		t.Errorf("Oldest entry should be dropped, got %s, %s", entries[0].Topic, entries[1].Topic)
	}
}

func TestDLQ_PersistAndLoad(t *testing.T) {
	dlq, path := newTestDLQ(t, 0)
	addEntry(t, dlq, "scans", time.Now())
	addEntry(t, dlq, "states", time.Now())

	loaded, err := NewDLQ(DLQConfig{FilePath: path})
	if err != nil {
		t.Fatalf("Failed to load DLQ: %v", err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("Expected 2 entries, got %d", loaded.Size())
	}
	if string(loaded.Get()[0].Data) != `{"scan_id":"1"}` {
		t.Errorf("Data = %s", loaded.Get()[0].Data)
	}
}

func TestDLQ_GetByIDAndRemove(t *testing.T) {
	dlq, _ := newTestDLQ(t, 0)
	addEntry(t, dlq, "scans", time.Now())
	id := dlq.Get()[0].ID

	if e := dlq.GetByID(id); e == nil || e.Topic != "scans" {
		t.Errorf("GetByID(%s) = %+v", id, e)
	}
	if dlq.GetByID("missing") != nil {
		t.Error("Expected nil for unknown ID")
	}
	if !dlq.Remove(id) {
		t.Error("Remove should report success")
	}
	if dlq.Remove(id) {
		t.Error("Second Remove should report failure")
	}
	if dlq.Size() != 0 {
		t.Errorf("Expected empty DLQ, got %d", dlq.Size())
	}
}

func TestDLQ_Clear(t *testing.T) {
	dlq, path := newTestDLQ(t, 0)
	addEntry(t, dlq, "scans", time.Now())

	if err := dlq.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", data)
	}
}

func TestDLQ_CleanupOld(t *testing.T) {
	dlq, _ := newTestDLQ(t, 0)
	addEntry(t, dlq, "old", time.Now().Add(-2*time.Hour))
	addEntry(t, dlq, "new", time.Now())

	if removed := dlq.CleanupOld(); removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
	if entries := dlq.Get(); len(entries) != 1 || entries[0].Topic != "new" {
		t.Errorf("Unexpected entries after cleanup: %+v", entries)
	}
}

func TestDLQ_Replay(t *testing.T) {
	dlq, _ := newTestDLQ(t, 0)
	for _, topic := range []string{"a", "b", "c"} {
		addEntry(t, dlq, topic, time.Now())
	}

	var sent []string
	n, err := dlq.Replay(context.Background(), func(ctx context.Context, e DLQEntry) error {
		if e.Topic == "c" {
			return errors.New("still down")
		}
		sent = append(sent, e.Topic)
		return nil
	})
	if err == nil {
		t.Fatal("Expected replay error")
	}
	if n != 2 || len(sent) != 2 {
		t.Errorf("Expected 2 sent, got %d (%v)", n, sent)
	}
	if entries := dlq.Get(); len(entries) != 1 || entries[0].Topic != "c" {
		t.Errorf("Failed entry should stay queued, got %+v", entries)
	}
}

func TestDLQ_GetStats(t *testing.T) {
	dlq, _ := newTestDLQ(t, 0)

	empty := dlq.GetStats()
	if empty.TotalEntries != 0 || !empty.OldestEntry.IsZero() {
		t.Errorf("Unexpected stats of empty DLQ: %+v", empty)
	}

	older := time.Now().Add(-time.Minute)
	newer := time.Now()
	addEntry(t, dlq, "scans", newer)
	addEntry(t, dlq, "scans", older)
	addEntry(t, dlq, "states", newer)

	stats := dlq.GetStats()
	if stats.TotalEntries != 3 {
		t.Errorf("TotalEntries = %d, want 3", stats.TotalEntries)
	}
	if stats.ByTopic["scans"] != 2 || stats.ByTopic["states"] != 1 {
		t.Errorf("ByTopic = %v", stats.ByTopic)
	}
	if stats.ByFailureType["max_attempts_exceeded"] != 3 {
		t.Errorf("ByFailureType = %v", stats.ByFailureType)
	}
	if !stats.OldestEntry.Equal(older) || !stats.NewestEntry.Equal(newer) {
		t.Errorf("Oldest/Newest = %v/%v", stats.OldestEntry, stats.NewestEntry)
	}
}

package resultlog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ruslano69/whiterabbit/pkg/scan"
)

func newTestPublisher(t *testing.T) (*RedisPublisher, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	p, err := NewRedisPublisher(Config{Type: "redis", Address: mr.Addr(), Name: "cdm_source", TTL: 60})
	if err != nil {
		t.Fatalf("NewRedisPublisher: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p, mr
}

func TestRedisPublisher_Publish(t *testing.T) {
	p, mr := newTestPublisher(t)
	ctx := context.Background()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()}).Subscribe(ctx, "whiterabbit:scan:cdm_source")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	summary := &scan.Summary{
		ID:         "b7a1",
		Source:     "postgresql",
		FinishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Tables:     []scan.TableSummary{{Name: "person", RowCount: 10, Fields: 3}},
		TotalRows:  10,
	}
	if err := p.Publish(ctx, summary, nil); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if ttl := mr.TTL("whiterabbit:scan:cdm_source:state"); ttl != 60*time.Second {
		t.Errorf("TTL = %v, want 60s", ttl)
	}

	state, err := p.LastState(ctx)
	if err != nil {
		t.Fatalf("LastState: %v", err)
	}
	if state.Status != scan.StatusSuccess || state.Error != nil {
		t.Errorf("unexpected state %+v", state)
	}
	if state.Summary == nil || state.Summary.TotalRows != 10 || state.Summary.Tables[0].Name != "person" {
		t.Errorf("unexpected summary %+v", state.Summary)
	}
	if !state.FinishedAt.Equal(summary.FinishedAt) {
		t.Errorf("FinishedAt = %v, want %v", state.FinishedAt, summary.FinishedAt)
	}

	select {
	case msg := <-sub.Channel():
		var event scan.Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Name != "cdm_source" || event.Summary.ID != "b7a1" {
			t.Errorf("unexpected event %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
	}
}

func TestRedisPublisher_PublishFailure(t *testing.T) {
	p, _ := newTestPublisher(t)
	ctx := context.Background()

	if err := p.Publish(ctx, nil, errors.New("connection refused")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	state, err := p.LastState(ctx)
	if err != nil {
		t.Fatalf("LastState: %v", err)
	}
	if state.Status != scan.StatusFailed || state.Error == nil || *state.Error != "connection refused" {
		t.Errorf("unexpected state %+v", state)
	}
	if state.Summary != nil {
		t.Errorf("failed scan should have no summary")
	}
}

func TestRedisPublisher_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	p, err := NewRedisPublisher(Config{Type: "redis", Address: mr.Addr(), Name: "x"})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	mr.Close()

	if err := p.Publish(context.Background(), nil, nil); err == nil {
		t.Error("expected error when Redis is down")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{}, false},
		{"none", Config{Type: "none"}, false},
		{"valid", Config{Type: "redis", Address: "localhost:6379", Name: "scan"}, false},
		{"unknown type", Config{Type: "memcached", Address: "x", Name: "y"}, true},
		{"missing address", Config{Type: "redis", Name: "scan"}, true},
		{"missing name", Config{Type: "redis", Address: "localhost:6379"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

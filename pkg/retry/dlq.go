package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DLQEntry представляет событие, которое не удалось доставить
type DLQEntry struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Topic       string          `json:"topic"`
	Attempts    int             `json:"attempts"`
	LastError   string          `json:"last_error"`
	FailureType string          `json:"failure_type"` // max_attempts_exceeded, context_cancelled, non_retryable
	Data        json.RawMessage `json:"data,omitempty"`
}

// DLQ - Dead Letter Queue в JSON файле
type DLQ struct {
	mu      sync.RWMutex
	config  DLQConfig
	entries []DLQEntry
}

// NewDLQ создает DLQ и загружает существующие записи из файла
func NewDLQ(config DLQConfig) (*DLQ, error) {
	dlq := &DLQ{config: config}

	if _, err := os.Stat(config.FilePath); err == nil {
		if err := dlq.Load(); err != nil {
			return nil, fmt.Errorf("failed to load DLQ: %w", err)
		}
	}

	return dlq, nil
}

// Add добавляет запись и сохраняет файл
func (d *DLQ) Add(entry DLQEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	d.entries = append(d.entries, entry)

	// Удаляем самые старые записи сверх лимита
	if d.config.MaxSize > 0 && len(d.entries) > d.config.MaxSize {
		d.entries = d.entries[len(d.entries)-d.config.MaxSize:]
	}

	log.Warn().
		Str("dlq_id", entry.ID).
		Str("topic", entry.Topic).
		Str("error", entry.LastError).
		Msg("Event moved to dead letter queue")

	return d.saveUnsafe()
}

// Get возвращает копию всех записей
func (d *DLQ) Get() []DLQEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]DLQEntry, len(d.entries))
	copy(result, d.entries)
	return result
}

// GetByID возвращает запись по ID или nil
func (d *DLQ) GetByID(id string) *DLQEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.entries {
		if d.entries[i].ID == id {
			entry := d.entries[i]
			return &entry
		}
	}
	return nil
}

// Remove удаляет запись по ID
func (d *DLQ) Remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.entries {
		if d.entries[i].ID == id {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			if err := d.saveUnsafe(); err != nil {
				log.Error().Err(err).Msg("Failed to save dead letter queue")
			}
			return true
		}
	}
	return false
}

// Clear очищает DLQ
func (d *DLQ) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries = nil
	return d.saveUnsafe()
}

// CleanupOld удаляет записи старше RetentionPeriod и возвращает их количество
func (d *DLQ) CleanupOld() int {
	if d.config.RetentionPeriod <= 0 {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := time.Now().Add(-d.config.RetentionPeriod)
	kept := d.entries[:0]
	for _, e := range d.entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(d.entries) - len(kept)
	d.entries = kept

	if removed > 0 {
		if err := d.saveUnsafe(); err != nil {
			log.Error().Err(err).Msg("Failed to save dead letter queue")
		}
	}
	return removed
}

// Replay повторно отправляет записи через send. Успешно отправленные записи
// удаляются; возвращается их количество. Первая ошибка прерывает replay.
func (d *DLQ) Replay(ctx context.Context, send func(ctx context.Context, entry DLQEntry) error) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sent := 0
	var sendErr error
	for _, e := range d.entries {
		if err := ctx.Err(); err != nil {
			sendErr = err
			break
		}
		if err := send(ctx, e); err != nil {
			sendErr = fmt.Errorf("replay %s: %w", e.ID, err)
			break
		}
		sent++
	}
	d.entries = d.entries[sent:]

	if sent > 0 {
		if err := d.saveUnsafe(); err != nil {
			return sent, errors.Join(sendErr, err)
		}
	}
	return sent, sendErr
}

// Size возвращает количество записей
func (d *DLQ) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Save сохраняет DLQ в файл
func (d *DLQ) Save() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.saveUnsafe()
}

func (d *DLQ) saveUnsafe() error {
	if dir := filepath.Dir(d.config.FilePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create DLQ directory: %w", err)
		}
	}

	entries := d.entries
	if entries == nil {
		entries = []DLQEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ: %w", err)
	}

	// Запись через временный файл
	tmp := d.config.FilePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write DLQ file: %w", err)
	}
	if err := os.Rename(tmp, d.config.FilePath); err != nil {
		return fmt.Errorf("failed to replace DLQ file: %w", err)
	}
	return nil
}

// Load загружает DLQ из файла
func (d *DLQ) Load() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read DLQ file: %w", err)
	}

	var entries []DLQEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal DLQ: %w", err)
	}
	d.entries = entries
	return nil
}

// DLQStats - статистика DLQ
type DLQStats struct {
	TotalEntries  int            `json:"total_entries"`
	ByFailureType map[string]int `json:"by_failure_type"`
	ByTopic       map[string]int `json:"by_topic"`
	OldestEntry   time.Time      `json:"oldest_entry,omitempty"`
	NewestEntry   time.Time      `json:"newest_entry,omitempty"`
}

// GetStats возвращает статистику DLQ
func (d *DLQ) GetStats() DLQStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := DLQStats{
		TotalEntries:  len(d.entries),
		ByFailureType: make(map[string]int),
		ByTopic:       make(map[string]int),
	}

	for i, e := range d.entries {
		stats.ByFailureType[e.FailureType]++
		stats.ByTopic[e.Topic]++
		if i == 0 || e.Timestamp.Before(stats.OldestEntry) {
			stats.OldestEntry = e.Timestamp
		}
		if i == 0 || e.Timestamp.After(stats.NewestEntry) {
			stats.NewestEntry = e.Timestamp
		}
	}
	return stats
}

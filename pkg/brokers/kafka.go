package brokers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka реализует MessageBroker для Apache Kafka
type Kafka struct {
	config Config
	writer *kafka.Writer
}

// NewKafka создает новый Kafka брокер
func NewKafka(cfg Config) (*Kafka, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic name is required for Kafka")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required for Kafka")
	}
	if cfg.Key == "" {
		cfg.Key = defaultMessageKey
	}

	return &Kafka{config: cfg}, nil
}

// Connect создает writer и проверяет доступность топика
func (k *Kafka) Connect(ctx context.Context) error {
	k.writer = &kafka.Writer{
		Addr:         kafka.TCP(k.config.Brokers...),
		Topic:        k.config.Topic,
		Balancer:     &kafka.Hash{}, // сообщения с одним ключом в одну партицию
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}
	// Сжатое тело Snappy уже не уменьшит
	if !k.config.Compress {
		k.writer.Compression = kafka.Snappy
	}

	return k.Ping(ctx)
}

// Close закрывает writer
func (k *Kafka) Close() error {
	if k.writer == nil {
		return nil
	}
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// Send отправляет сообщение в Kafka topic
func (k *Kafka) Send(ctx context.Context, msg Message) error {
	if k.writer == nil {
		return fmt.Errorf("not connected to Kafka")
	}

	return k.writer.WriteMessages(ctx, k.message(msg))
}

func (k *Kafka) message(msg Message) kafka.Message {
	headers := []kafka.Header{
		{Key: "content-type", Value: []byte(ContentTypeJSON)},
		{Key: "producer", Value: []byte("whiterabbit")},
	}
	if msg.Encoding != "" {
		headers = append(headers, kafka.Header{Key: "content-encoding", Value: []byte(msg.Encoding)})
	}
	if msg.Checksum != "" {
		headers = append(headers, kafka.Header{Key: headerChecksum, Value: []byte(msg.Checksum)})
	}
	return kafka.Message{
		Key:     []byte(k.config.Key),
		Value:   msg.Body,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Ping проверяет доступность Kafka и наличие топика
func (k *Kafka) Ping(ctx context.Context) error {
	var errs []error
	for _, addr := range k.config.Brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			errs = append(errs, fmt.Errorf("dial %s: %w", addr, err))
			continue
		}
		_, err = conn.ReadPartitions(k.config.Topic)
		conn.Close()
		if err != nil {
			return fmt.Errorf("failed to read topic partitions: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to dial Kafka brokers: %w", errors.Join(errs...))
}

// GetBrokerType возвращает тип брокера
func (k *Kafka) GetBrokerType() string {
	return "kafka"
}

// Stats возвращает статистику writer
func (k *Kafka) Stats() kafka.WriterStats {
	if k.writer == nil {
		return kafka.WriterStats{}
	}
	return k.writer.Stats()
}

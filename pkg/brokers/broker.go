package brokers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ruslano69/whiterabbit/pkg/processors"
	"github.com/ruslano69/whiterabbit/pkg/scan"
)

// Кодировки тела сообщения
const (
	ContentTypeJSON    = "application/json"
	EncodingZstdBase64 = "zstd+base64"
	defaultMessageKey  = "whiterabbit"

	headerChecksum = "content-checksum"
)

// MessageBroker - интерфейс публикации событий сканирования.
// Поддерживает RabbitMQ и Apache Kafka.
type MessageBroker interface {
	// Connect устанавливает соединение с брокером
	Connect(ctx context.Context) error

	// Close закрывает соединение с брокером
	Close() error

	// Send отправляет сообщение
	Send(ctx context.Context, msg Message) error

	// Ping проверяет доступность брокера
	Ping(ctx context.Context) error

	// GetBrokerType возвращает тип брокера (rabbitmq, kafka)
	GetBrokerType() string
}

// Config содержит параметры подключения к message broker
type Config struct {
	Type string `yaml:"type"` // rabbitmq, kafka

	// RabbitMQ
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Queue      string `yaml:"queue"`
	VHost      string `yaml:"vhost"`   // по умолчанию "/"
	UseTLS     bool   `yaml:"use_tls"` // amqps://
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"` // если пустой, используется имя очереди

	// Параметры очереди должны совпадать с существующей очередью
	Durable    bool `yaml:"durable"`
	AutoDelete bool `yaml:"auto_delete"`
	Exclusive  bool `yaml:"exclusive"`

	// Kafka
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Key     string   `yaml:"key"` // ключ сообщений, по умолчанию "whiterabbit"

	// Compress сжимает тело события zstd и кодирует base64,
	// если оно не меньше MinCompressSize (по умолчанию 1 KB)
	Compress         bool `yaml:"compress"`
	CompressionLevel int  `yaml:"compression_level"`
	MinCompressSize  int  `yaml:"min_compress_size"`
}

// Destination возвращает имя очереди или топика
func (c *Config) Destination() string {
	if c.Topic != "" {
		return c.Topic
	}
	return c.Queue
}

// New создает MessageBroker на основе конфигурации
func New(cfg Config) (MessageBroker, error) {
	switch strings.ToLower(cfg.Type) {
	case "rabbitmq":
		return NewRabbitMQ(cfg)
	case "kafka":
		return NewKafka(cfg)
	default:
		return nil, fmt.Errorf("unsupported broker type: %s (supported: rabbitmq, kafka)", cfg.Type)
	}
}

// Message - тело события и метаданные для заголовков
type Message struct {
	Body     []byte
	Encoding string // "" для JSON
	Checksum string // xxh3 JSON до сжатия
}

// EncodeEvent сериализует событие в JSON и считает его контрольную сумму.
// При cfg.Compress тело не меньше cfg.MinCompressSize сжимается.
func EncodeEvent(ctx context.Context, event scan.Event, cfg Config) (Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	checksum := processors.RecordChecksum()
	chain := processors.NewChain(checksum)
	encoding := ""
	if cfg.Compress && processors.ShouldCompress(len(data), cfg.MinCompressSize) {
		chain.Add(processors.NewCompressor(cfg.CompressionLevel))
		encoding = EncodingZstdBase64
	}

	body, err := chain.Process(ctx, data)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode event: %w", err)
	}
	return Message{Body: body, Encoding: encoding, Checksum: checksum.Sum()}, nil
}

// DecodeEvent разбирает сообщение, созданное EncodeEvent; при наличии
// контрольной суммы JSON сверяется с ней.
func DecodeEvent(ctx context.Context, msg Message) (scan.Event, error) {
	var event scan.Event

	chain := processors.NewChain()
	switch msg.Encoding {
	case "":
	case EncodingZstdBase64:
		chain.Add(processors.NewDecompressor())
	default:
		return event, fmt.Errorf("unknown content encoding %q", msg.Encoding)
	}
	if msg.Checksum != "" {
		chain.Add(processors.ExpectChecksum(msg.Checksum))
	}

	data, err := chain.Process(ctx, msg.Body)
	if err != nil {
		return event, fmt.Errorf("failed to decode event: %w", err)
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}

// PublishEvent кодирует и отправляет событие
func PublishEvent(ctx context.Context, b MessageBroker, cfg Config, event scan.Event) error {
	msg, err := EncodeEvent(ctx, event, cfg)
	if err != nil {
		return err
	}
	return b.Send(ctx, msg)
}

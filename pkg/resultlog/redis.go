package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruslano69/whiterabbit/pkg/scan"
)

// Config определяет параметры публикации результата сканирования в Redis.
//
// Redis-ключи:
//
//	SET  whiterabbit:scan:<name>:state  <JSON>  EX <ttl>  - последнее состояние для опроса
//	PUB  whiterabbit:scan:<name>                          - событие для подписчиков
type Config struct {
	Type     string `yaml:"type"`     // redis (пустое = отключено)
	Address  string `yaml:"address"`  // например "127.0.0.1:6379"
	Name     string `yaml:"name"`     // имя результата (ключ/канал)
	Password string `yaml:"password"` // опционально
	DB       int    `yaml:"db"`
	TTL      int    `yaml:"ttl"` // TTL ключа в секундах, 0 = без срока
}

// Enabled сообщает, включена ли публикация
func (c *Config) Enabled() bool {
	return c.Type != "" && c.Type != "none"
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Type != "redis" {
		return fmt.Errorf("unsupported result log type '%s', must be 'redis'", c.Type)
	}
	if c.Address == "" {
		return fmt.Errorf("address is required when type is 'redis'")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required when type is 'redis'")
	}
	return nil
}

// StateKey возвращает ключ последнего состояния
func (c *Config) StateKey() string {
	return fmt.Sprintf("whiterabbit:scan:%s:state", c.Name)
}

// Channel возвращает канал событий
func (c *Config) Channel() string {
	return fmt.Sprintf("whiterabbit:scan:%s", c.Name)
}

// RedisPublisher публикует результат сканирования в Redis
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedisPublisher создает publisher на основе конфигурации
func NewRedisPublisher(config Config) (*RedisPublisher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}, nil
}

// Publish сохраняет состояние и публикует событие. Вызывается независимо от
// результата сканирования; summary == nil и scanErr != nil для неудачного скана.
func (p *RedisPublisher) Publish(ctx context.Context, summary *scan.Summary, scanErr error) error {
	return p.PublishEvent(ctx, scan.NewEvent(p.config.Name, summary, scanErr))
}

// PublishEvent сохраняет готовое событие как состояние и рассылает его
func (p *RedisPublisher) PublishEvent(ctx context.Context, event scan.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal scan event: %w", err)
	}

	ttl := time.Duration(p.config.TTL) * time.Second

	if err := p.client.Set(ctx, p.config.StateKey(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	if err := p.client.Publish(ctx, p.config.Channel(), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// LastState читает последнее опубликованное состояние
func (p *RedisPublisher) LastState(ctx context.Context) (*scan.Event, error) {
	data, err := p.client.Get(ctx, p.config.StateKey()).Bytes()
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	var event scan.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scan event: %w", err)
	}
	return &event, nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

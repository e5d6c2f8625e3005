package retry

import (
	"fmt"
	"time"
)

// BackoffStrategy определяет стратегию задержки между повторами
type BackoffStrategy string

const (
	// BackoffConstant - постоянная задержка
	BackoffConstant BackoffStrategy = "constant"
	// BackoffLinear - линейное увеличение задержки
	BackoffLinear BackoffStrategy = "linear"
	// BackoffExponential - экспоненциальное увеличение задержки
	BackoffExponential BackoffStrategy = "exponential"
)

// Config содержит конфигурацию повторов для подключений к источникам
// и публикации результатов сканирования.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// MaxAttempts - максимальное количество попыток (включая первую), 0 - без ограничения
	MaxAttempts int `yaml:"max_attempts"`

	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`

	BackoffStrategy BackoffStrategy `yaml:"backoff_strategy"`

	// BackoffMultiplier - множитель для exponential backoff (обычно 2.0)
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`

	// Jitter - доля случайного отклонения задержки (0.0 - 1.0)
	Jitter float64 `yaml:"jitter"`

	// RetryableErrors - подстроки ошибок, для которых нужен повтор.
	// Пустой список - повтор для всех ошибок.
	RetryableErrors []string `yaml:"retryable_errors,omitempty"`

	// OnRetry вызывается перед каждым повтором. По умолчанию повтор пишется в лог.
	OnRetry func(attempt int, err error, delay time.Duration) `yaml:"-"`

	// DLQ хранит события, которые не удалось опубликовать
	DLQ DLQConfig `yaml:"dlq"`
}

// DLQConfig содержит конфигурацию Dead Letter Queue
type DLQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	FilePath string `yaml:"file_path"`

	// MaxSize - максимальный размер DLQ (в записях), старые записи удаляются
	MaxSize int `yaml:"max_size"`

	// RetentionPeriod - как долго хранить записи в DLQ
	RetentionPeriod time.Duration `yaml:"retention_period"`
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", c.MaxAttempts)
	}

	if c.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must be >= 0")
	}

	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max_delay (%v) must be >= initial_delay (%v)", c.MaxDelay, c.InitialDelay)
	}

	switch c.BackoffStrategy {
	case BackoffConstant, BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("invalid backoff strategy: %s", c.BackoffStrategy)
	}

	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = 2.0
	}

	if c.Jitter < 0 || c.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", c.Jitter)
	}

	if c.DLQ.Enabled && c.DLQ.FilePath == "" {
		return fmt.Errorf("dlq file_path is required when the dlq is enabled")
	}

	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		MaxAttempts:       3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffStrategy:   BackoffExponential,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		DLQ: DLQConfig{
			Enabled:         false,
			FilePath:        "./whiterabbit-dlq.json",
			MaxSize:         1000,
			RetentionPeriod: 7 * 24 * time.Hour,
		},
	}
}

// EnableRetry создает конфигурацию с включенным retry
func EnableRetry(maxAttempts int, initialDelay time.Duration) Config {
	config := DefaultConfig()
	config.Enabled = true
	config.MaxAttempts = maxAttempts
	config.InitialDelay = initialDelay
	return config
}

// EnableRetryWithDLQ создает конфигурацию с retry и DLQ
func EnableRetryWithDLQ(maxAttempts int, initialDelay time.Duration, dlqPath string) Config {
	config := EnableRetry(maxAttempts, initialDelay)
	config.DLQ.Enabled = true
	config.DLQ.FilePath = dlqPath
	return config
}

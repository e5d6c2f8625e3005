package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryableFunc - функция которую можно retry
type RetryableFunc func(ctx context.Context) error

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку как неустранимую повтором.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retryer выполняет retry логику
type Retryer struct {
	config Config
	dlq    *DLQ
}

// NewRetryer создает новый Retryer
func NewRetryer(config Config) (*Retryer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	var dlq *DLQ
	if config.Enabled && config.DLQ.Enabled {
		var err error
		dlq, err = NewDLQ(config.DLQ)
		if err != nil {
			return nil, fmt.Errorf("failed to create DLQ: %w", err)
		}
	}

	if config.OnRetry == nil {
		config.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying")
		}
	}

	return &Retryer{
		config: config,
		dlq:    dlq,
	}, nil
}

// Do выполняет функцию с retry
func (r *Retryer) Do(ctx context.Context, fn RetryableFunc) error {
	_, err := r.do(ctx, fn)
	return err
}

// DoWithData выполняет функцию с retry и сохраняет данные в DLQ, если все
// попытки исчерпаны. topic - назначение данных (очередь, топик, ключ).
func (r *Retryer) DoWithData(ctx context.Context, fn RetryableFunc, topic string, data any) error {
	attempts, err := r.do(ctx, fn)
	if err == nil || r.dlq == nil {
		return err
	}

	payload, merr := json.Marshal(data)
	if merr != nil {
		return fmt.Errorf("%w (dlq: %v)", err, merr)
	}
	failure := "max_attempts_exceeded"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		failure = "context_cancelled"
	case isPermanent(err):
		failure = "non_retryable"
	}
	if derr := r.dlq.Add(DLQEntry{
		Timestamp:   time.Now(),
		Topic:       topic,
		Attempts:    attempts,
		LastError:   err.Error(),
		FailureType: failure,
		Data:        payload,
	}); derr != nil {
		return fmt.Errorf("%w (dlq: %v)", err, derr)
	}
	return err
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

func (r *Retryer) do(ctx context.Context, fn RetryableFunc) (int, error) {
	if !r.config.Enabled {
		return 1, fn(ctx)
	}

	attempts := 0
	for {
		attempts++

		err := fn(ctx)
		if err == nil {
			return attempts, nil
		}

		if !r.isRetryableError(err) {
			return attempts, fmt.Errorf("non-retryable error: %w", err)
		}

		if r.config.MaxAttempts > 0 && attempts >= r.config.MaxAttempts {
			return attempts, fmt.Errorf("max retry attempts (%d) exceeded: %w", r.config.MaxAttempts, err)
		}

		if ctx.Err() != nil {
			return attempts, fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		delay := r.calculateDelay(attempts)
		r.config.OnRetry(attempts, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return attempts, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

// calculateDelay вычисляет задержку для текущей попытки
func (r *Retryer) calculateDelay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.BackoffStrategy {
	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		multiplier := math.Pow(r.config.BackoffMultiplier, float64(attempt-1))
		delay = time.Duration(float64(r.config.InitialDelay) * multiplier)
	default:
		delay = r.config.InitialDelay
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter > 0 {
		delay += time.Duration(float64(delay) * r.config.Jitter * (rand.Float64()*2 - 1))
		if delay < 0 {
			delay = r.config.InitialDelay
		}
	}

	return delay
}

// isRetryableError проверяет нужен ли retry для ошибки
func (r *Retryer) isRetryableError(err error) bool {
	if err == nil || isPermanent(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	if len(r.config.RetryableErrors) == 0 {
		return true
	}

	errStr := err.Error()
	for _, pattern := range r.config.RetryableErrors {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// GetDLQ возвращает DLQ если он включен
func (r *Retryer) GetDLQ() *DLQ {
	return r.dlq
}

// Close закрывает Retryer и сохраняет DLQ
func (r *Retryer) Close() error {
	if r.dlq != nil {
		return r.dlq.Save()
	}
	return nil
}

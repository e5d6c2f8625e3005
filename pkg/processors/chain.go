package processors

import (
	"context"
	"fmt"
)

// Processor преобразует тело сообщения целиком.
type Processor interface {
	Process(ctx context.Context, data []byte) ([]byte, error)
}

// Chain применяет процессоры по порядку, передавая результат дальше.
type Chain struct {
	steps []Processor
}

// NewChain создает цепочку; nil-процессоры пропускаются, чтобы шаги
// можно было включать по условию.
func NewChain(steps ...Processor) *Chain {
	c := &Chain{}
	for _, p := range steps {
		c.Add(p)
	}
	return c
}

// Add добавляет шаг в конец цепочки
func (c *Chain) Add(p Processor) {
	if p != nil {
		c.steps = append(c.steps, p)
	}
}

// Len возвращает число шагов
func (c *Chain) Len() int {
	return len(c.steps)
}

// Process прогоняет data через все шаги
func (c *Chain) Process(ctx context.Context, data []byte) ([]byte, error) {
	for i, p := range c.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := p.Process(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("step %d (%T): %w", i+1, p, err)
		}
		data = out
	}
	return data, nil
}

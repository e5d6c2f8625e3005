package processors

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Параметры сжатия по умолчанию
const (
	DefaultCompressionLevel = 3
	DefaultMinCompressSize  = 1024
)

// ShouldCompress сообщает, стоит ли сжимать данные размера size.
// minSize <= 0 означает DefaultMinCompressSize.
func ShouldCompress(size, minSize int) bool {
	if minSize <= 0 {
		minSize = DefaultMinCompressSize
	}
	return size >= minSize
}

// Compressor сжимает данные zstd и кодирует результат в base64,
// чтобы тело оставалось текстом для брокеров и Redis.
type Compressor struct {
	level int
}

// NewCompressor создает шаг сжатия; level 1 (быстрее) .. 22 (сильнее),
// 0 - DefaultCompressionLevel.
func NewCompressor(level int) *Compressor {
	if level <= 0 {
		level = DefaultCompressionLevel
	}
	return &Compressor{level: level}
}

func (c *Compressor) Process(_ context.Context, data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(c.level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()

	compressed := enc.EncodeAll(data, nil)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(compressed)))
	base64.StdEncoding.Encode(out, compressed)
	return out, nil
}

// Decompressor обращает Compressor.
type Decompressor struct{}

// NewDecompressor создает шаг распаковки
func NewDecompressor() *Decompressor {
	return &Decompressor{}
}

func (d *Decompressor) Process(_ context.Context, data []byte) ([]byte, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(raw, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(raw[:n], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress zstd: %w", err)
	}
	return out, nil
}

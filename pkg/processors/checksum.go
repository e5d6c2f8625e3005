package processors

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
)

// ChecksumExtension - расширение файла с контрольной суммой отчета.
const ChecksumExtension = ".xxh3"

// ErrChecksumMismatch возвращается, когда данные не совпадают с ожидаемой суммой.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Checksum - шаг цепочки, считающий xxh3 проходящих данных без их изменения.
// С ожидаемой суммой шаг сверяет данные с ней.
type Checksum struct {
	expected string
	sum      string
}

// RecordChecksum запоминает сумму данных; ее возвращает Sum.
func RecordChecksum() *Checksum {
	return &Checksum{}
}

// ExpectChecksum проверяет, что сумма данных равна sum.
func ExpectChecksum(sum string) *Checksum {
	return &Checksum{expected: strings.ToLower(sum)}
}

func (c *Checksum) Process(_ context.Context, data []byte) ([]byte, error) {
	c.sum = ComputeChecksum(data)
	if c.expected != "" && c.sum != c.expected {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, c.expected, c.sum)
	}
	return data, nil
}

// Sum возвращает сумму последних обработанных данных
func (c *Checksum) Sum() string {
	return c.sum
}

func formatSum(v uint64) string {
	return hex.EncodeToString(binary.BigEndian.AppendUint64(nil, v))
}

// ComputeChecksum возвращает xxh3 данных в hex (16 символов).
func ComputeChecksum(data []byte) string {
	return formatSum(xxh3.Hash(data))
}

// ChecksumReader считает xxh3 потока, не загружая его в память.
func ChecksumReader(r io.Reader) (string, error) {
	h := xxh3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash data: %w", err)
	}
	return formatSum(h.Sum64()), nil
}

// ChecksumFile считает xxh3 файла.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ChecksumReader(f)
}

// WriteChecksumFile записывает рядом с файлом <path>.xxh3 в формате
// "<hash>  <имя файла>" и возвращает хеш.
func WriteChecksumFile(path string) (string, error) {
	sum, err := ChecksumFile(path)
	if err != nil {
		return "", err
	}

	line := fmt.Sprintf("%s  %s\n", sum, filepath.Base(path))
	if err := os.WriteFile(path+ChecksumExtension, []byte(line), 0o644); err != nil {
		return "", fmt.Errorf("failed to write checksum file: %w", err)
	}
	return sum, nil
}

// VerifyChecksumFile сверяет файл с его файлом контрольной суммы.
func VerifyChecksumFile(path string) error {
	data, err := os.ReadFile(path + ChecksumExtension)
	if err != nil {
		return fmt.Errorf("failed to read checksum file: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return fmt.Errorf("checksum file %s is empty", path+ChecksumExtension)
	}

	actual, err := ChecksumFile(path)
	if err != nil {
		return err
	}
	if actual != strings.ToLower(fields[0]) {
		return fmt.Errorf("%w for %s: expected %s, got %s", ErrChecksumMismatch, path, fields[0], actual)
	}
	return nil
}

package mapping

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Save writes the ETL as JSON to path, gzip-compressed when path ends in .gz.
// The file is written next to path and renamed into place, so a failed save
// leaves an existing file untouched.
func (e *ETL) Save(path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	tmp := f.Name()

	err = f.Chmod(0o644)
	if err == nil {
		err = e.Encode(f, strings.HasSuffix(strings.ToLower(path), ".gz"))
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to write %s: %w", path, cerr)
	}
	if err == nil {
		if err = os.Rename(tmp, path); err != nil {
			err = fmt.Errorf("failed to replace %s: %w", path, err)
		}
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Encode writes the ETL as indented JSON, optionally gzip-compressed.
func (e *ETL) Encode(w io.Writer, compress bool) error {
	if !compress {
		return encodeJSON(w, e)
	}

	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if err := encodeJSON(zw, e); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

func encodeJSON(w io.Writer, e *ETL) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("failed to encode ETL: %w", err)
	}
	return nil
}

// Load reads an ETL saved by Save. Compression is detected from the content,
// not the file name.
func Load(path string) (*ETL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads an ETL from plain or gzip-compressed JSON.
func Decode(r io.Reader) (*ETL, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br

	if magic, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(magic, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	var e ETL
	if err := json.NewDecoder(src).Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to decode ETL: %w", err)
	}
	if e.Source == nil {
		e.Source = &Database{}
	}
	if e.Target == nil {
		e.Target = &Database{}
	}
	return &e, nil
}

package scan

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ruslano69/whiterabbit/pkg/adapters"
)

var delimitedExtensions = map[string]bool{".csv": true, ".tsv": true, ".txt": true}

// DelimitedSource scans delimited text files of a folder; each file is a table.
type DelimitedSource struct {
	folder    string
	delimiter rune
	decoder   encoding.Encoding
	tables    []string
}

// NewDelimitedSource creates a source over folder. charset is an IANA or
// WHATWG encoding name ("" means UTF-8). tables limits the scan to the given
// file names; empty means all .csv, .tsv and .txt files.
func NewDelimitedSource(folder string, delimiter rune, charset string, tables []string) (*DelimitedSource, error) {
	if delimiter == 0 {
		delimiter = ','
	}

	enc := encoding.Nop
	if charset != "" && !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "utf8") {
		var err error
		enc, err = htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("unsupported file encoding %q: %w", charset, err)
		}
	}

	return &DelimitedSource{
		folder:    folder,
		delimiter: delimiter,
		decoder:   enc,
		tables:    tables,
	}, nil
}

func (s *DelimitedSource) Name() string {
	return "delimited text files"
}

// TableNames returns the configured files or the delimited files of the folder.
func (s *DelimitedSource) TableNames(ctx context.Context) ([]string, error) {
	if len(s.tables) > 0 {
		return s.tables, nil
	}

	entries, err := os.ReadDir(s.folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.folder, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && delimitedExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadTable opens the file. The header row names the fields. Row counts are
// taken by reading the whole file.
func (s *DelimitedSource) ReadTable(ctx context.Context, table string, params Parameters) (*TableData, error) {
	path := table
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.folder, table)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", table, err)
	}

	r := csv.NewReader(transform.NewReader(file, unicode.BOMOverride(s.decoder.NewDecoder())))
	r.Comma = s.delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		file.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file %s is empty", table)
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", table, err)
	}

	it := &delimitedRows{
		file:    file,
		reader:  r,
		columns: append([]string(nil), header...),
		limit:   int64(params.SampleSize),
	}
	it.values = make([]string, len(it.columns))

	fields := make([]adapters.Field, len(it.columns))
	for i, name := range it.columns {
		fields[i] = adapters.Field{Name: name}
	}

	return &TableData{
		Fields:    fields,
		RowCount:  -1,
		Rows:      it,
		CountRows: it.countRows,
	}, nil
}

func (s *DelimitedSource) Close(ctx context.Context) error {
	return nil
}

// delimitedRows yields records until the sample limit; countRows reads on to
// the end of the file.
type delimitedRows struct {
	file    *os.File
	reader  *csv.Reader
	columns []string
	values  []string
	limit   int64
	read    int64
	done    bool
	err     error
}

func (it *delimitedRows) Columns() []string {
	return it.columns
}

func (it *delimitedRows) limitReached() bool {
	if it.limit < 0 || it.read < it.limit {
		return false
	}
	return it.read*int64(len(it.columns)) >= MinCellCountForCSV
}

func (it *delimitedRows) Next() bool {
	if it.done || it.err != nil || it.limitReached() {
		return false
	}

	record, err := it.reader.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			it.err = fmt.Errorf("failed to read record %d: %w", it.read+1, err)
		}
		it.done = true
		return false
	}

	it.read++
	for i := range it.values {
		if i < len(record) {
			it.values[i] = record[i]
		} else {
			it.values[i] = ""
		}
	}
	return true
}

func (it *delimitedRows) Values() []string {
	return it.values
}

func (it *delimitedRows) Err() error {
	return it.err
}

func (it *delimitedRows) Close() error {
	return it.file.Close()
}

func (it *delimitedRows) countRows() (int64, error) {
	total := it.read
	for !it.done {
		if _, err := it.reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, fmt.Errorf("failed to count records: %w", err)
		}
		total++
	}
	it.done = true
	return total, nil
}

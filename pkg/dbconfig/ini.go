package dbconfig

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/ini.v1"
)

var iniOptions = ini.LoadOptions{
	Insensitive:         true,
	IgnoreInlineComment: true,
	KeyValueDelimiters:  "=:",
}

// IniFile holds the KEY = value settings of a WhiteRabbit ini file.
// Key lookups are case-insensitive; keys may also appear inside sections.
type IniFile struct {
	file *ini.File
	path string
}

// LoadIniFile reads an ini file from disk.
func LoadIniFile(path string) (*IniFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ini file: %w", err)
	}
	f, err := ParseIni(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ini file %s: %w", path, err)
	}
	f.path = path
	return f, nil
}

// ParseIni parses ini content.
func ParseIni(data []byte) (*IniFile, error) {
	file, err := ini.LoadSources(iniOptions, bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if err != nil {
		return nil, err
	}
	return &IniFile{file: file}, nil
}

// NewIniFile creates an empty ini file, filled with Set.
func NewIniFile() *IniFile {
	return &IniFile{file: ini.Empty(iniOptions)}
}

// Path returns the file the settings were loaded from, if any.
func (f *IniFile) Path() string {
	return f.path
}

// Get returns the value for key, or "" when the key is absent.
func (f *IniFile) Get(key string) string {
	if k := f.lookup(key); k != nil {
		return k.String()
	}
	return ""
}

// Has reports whether key is present.
func (f *IniFile) Has(key string) bool {
	return f.lookup(key) != nil
}

func (f *IniFile) Set(key, value string) {
	f.file.Section(ini.DefaultSection).Key(key).SetValue(value)
}

// Keys returns all keys in lower case, sorted.
func (f *IniFile) Keys() []string {
	var keys []string
	for _, s := range f.file.Sections() {
		keys = append(keys, s.KeyStrings()...)
	}
	sort.Strings(keys)
	return keys
}

// WriteTo writes the settings in KEY = value form.
func (f *IniFile) WriteTo(w io.Writer) (int64, error) {
	return f.file.WriteTo(w)
}

func (f *IniFile) lookup(key string) *ini.Key {
	if s := f.file.Section(ini.DefaultSection); s.HasKey(key) {
		return s.Key(key)
	}
	for _, s := range f.file.Sections() {
		if s.HasKey(key) {
			return s.Key(key)
		}
	}
	return nil
}

package base

import (
	"testing"
	"time"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"bytes", []byte("abc"), "abc"},
		{"string", "text", "text"},
		{"midnight string", "2023-01-31 00:00:00", "2023-01-31"},
		{"int64", int64(-42), "-42"},
		{"int32", int32(7), "7"},
		{"float", 1234567.25, "1234567.25"},
		{"float without fraction", float64(80), "80"},
		{"bool", true, "true"},
		{"midnight time", time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), "2023-01-31"},
		{"time", time.Date(2023, 1, 31, 13, 5, 9, 0, time.UTC), "2023-01-31 13:05:09"},
		{"fractional time", time.Date(2023, 1, 31, 13, 5, 9, 500000000, time.UTC), "2023-01-31 13:05:09.5"},
		{"uuid", [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0},
			"12345678-9abc-def0-1234-56789abcdef0"},
		{"json", map[string]any{"a": 1.0}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

package processors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestComputeChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"event json", []byte(`{"name":"cdm","status":"success"}`)},
		{"binary", []byte{0x00, 0x01, 0xFF, 0xFE}},
		{"large", make([]byte, 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := ComputeChecksum(tt.data)
			if len(sum) != 16 {
				t.Errorf("ComputeChecksum() length = %d, want 16", len(sum))
			}
			if sum != ComputeChecksum(tt.data) {
				t.Error("ComputeChecksum() is not stable")
			}
			if len(tt.data) > 0 {
				changed := append([]byte{}, tt.data...)
				changed[0] ^= 0xFF
				if ComputeChecksum(changed) == sum {
					t.Error("changed data has the same checksum")
				}
			}
		})
	}
}

func TestChecksum_Process(t *testing.T) {
	ctx := context.Background()
	data := []byte(`{"tables":["person","visit_occurrence"]}`)

	rec := RecordChecksum()
	out, err := rec.Process(ctx, data)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if string(out) != string(data) {
		t.Error("Process() must not change data")
	}
	if rec.Sum() != ComputeChecksum(data) {
		t.Errorf("Sum() = %s, want %s", rec.Sum(), ComputeChecksum(data))
	}

	tests := []struct {
		name     string
		expected string
		wantErr  bool
	}{
		{"matching", ComputeChecksum(data), false},
		{"upper case", strings.ToUpper(ComputeChecksum(data)), false},
		{"mismatch", "0000000000000000", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpectChecksum(tt.expected).Process(ctx, data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Process() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrChecksumMismatch) {
				t.Errorf("error %v is not ErrChecksumMismatch", err)
			}
		})
	}
}

func TestChecksumFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ScanReport.xlsx")
	data := []byte("scan report bytes")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	sum, err := WriteChecksumFile(path)
	if err != nil {
		t.Fatalf("WriteChecksumFile() error = %v", err)
	}
	if sum != ComputeChecksum(data) {
		t.Errorf("WriteChecksumFile() = %s, want %s", sum, ComputeChecksum(data))
	}

	sidecar, err := os.ReadFile(path + ChecksumExtension)
	if err != nil {
		t.Fatalf("Failed to read checksum file: %v", err)
	}
	if want := sum + "  ScanReport.xlsx\n"; string(sidecar) != want {
		t.Errorf("Checksum file = %q, want %q", sidecar, want)
	}

	if err := VerifyChecksumFile(path); err != nil {
		t.Errorf("VerifyChecksumFile() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("modified"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := VerifyChecksumFile(path); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("VerifyChecksumFile() error = %v, want mismatch", err)
	}

	if err := VerifyChecksumFile(filepath.Join(dir, "missing.xlsx")); err == nil {
		t.Error("VerifyChecksumFile() expected error without checksum file")
	}
}

func TestChecksumReader_MatchesBlock(t *testing.T) {
	data := strings.Repeat("person;cost;visit\n", 500)
	sum, err := ChecksumReader(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if sum != ComputeChecksum([]byte(data)) {
		t.Errorf("streaming hash %s differs from block hash %s", sum, ComputeChecksum([]byte(data)))
	}
}

func TestChain_Process(t *testing.T) {
	ctx := context.Background()
	data := []byte(`{"tables":["person","cost"]}`)

	rec := RecordChecksum()
	chain := NewChain(rec, NewCompressor(0), nil)
	chain.Add(NewDecompressor())
	chain.Add(ExpectChecksum(ComputeChecksum(data)))
	chain.Add(nil)

	if chain.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", chain.Len())
	}

	out, err := chain.Process(ctx, data)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if string(out) != string(data) || rec.Sum() != ComputeChecksum(data) {
		t.Errorf("Process() = %q (sum %s), want round trip", out, rec.Sum())
	}

	failing := NewChain(ExpectChecksum("0000000000000000"))
	if _, err := failing.Process(ctx, data); !errors.Is(err, ErrChecksumMismatch) || !strings.Contains(err.Error(), "step 1") {
		t.Errorf("Process() error = %v, want step 1 mismatch", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := NewChain(RecordChecksum()).Process(cancelled, data); !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}

	if out, err := NewChain().Process(ctx, data); err != nil || string(out) != string(data) {
		t.Errorf("empty chain must pass data through, got %q, %v", out, err)
	}
}

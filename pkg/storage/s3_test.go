package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestS3Config_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     S3Config
		wantErr bool
	}{
		{"disabled", S3Config{}, false},
		{"bucket only", S3Config{Enabled: true, Bucket: "scans"}, false},
		{"missing bucket", S3Config{Enabled: true}, true},
		{"key without secret", S3Config{Enabled: true, Bucket: "b", AccessKeyID: "AK"}, true},
		{"static keys", S3Config{Enabled: true, Bucket: "b", AccessKeyID: "AK", SecretAccessKey: "SK"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestS3Config_ObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		file   string
		want   string
	}{
		{"", "/data/ScanReport.xlsx", "ScanReport.xlsx"},
		{"scans", "/data/ScanReport.xlsx", "scans/ScanReport.xlsx"},
		{"/scans/2026/", "ScanReport.xlsx.xxh3", "scans/2026/ScanReport.xlsx.xxh3"},
	}
	for _, tt := range tests {
		cfg := S3Config{Prefix: tt.prefix}
		if got := cfg.ObjectKey(tt.file); got != tt.want {
			t.Errorf("ObjectKey(%q) with prefix %q = %q, want %q", tt.file, tt.prefix, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	if got := contentType("a.XLSX"); got != xlsxContentType {
		t.Errorf("xlsx content type = %s", got)
	}
	if got := contentType("a.unknownext"); got != "application/octet-stream" {
		t.Errorf("fallback content type = %s", got)
	}
}

func TestUploader_Upload(t *testing.T) {
	var (
		mu       sync.Mutex
		requests = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests[r.Method+" "+r.URL.Path] = string(body)
		mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	report := filepath.Join(dir, "ScanReport.xlsx")
	sidecar := report + ".xxh3"
	if err := os.WriteFile(report, []byte("report"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sidecar, []byte("abc  ScanReport.xlsx\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	u, err := NewUploader(context.Background(), S3Config{
		Enabled:         true,
		Bucket:          "scans",
		Prefix:          "cdm",
		Endpoint:        srv.URL,
		AccessKeyID:     "AK",
		SecretAccessKey: "SK",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}

	keys, err := u.UploadAll(context.Background(), report, sidecar)
	if err != nil {
		t.Fatalf("UploadAll: %v", err)
	}
	if len(keys) != 2 || keys[0] != "cdm/ScanReport.xlsx" || keys[1] != "cdm/ScanReport.xlsx.xxh3" {
		t.Errorf("keys = %v", keys)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, want := range []string{"PUT /scans/cdm/ScanReport.xlsx", "PUT /scans/cdm/ScanReport.xlsx.xxh3"} {
		if _, ok := requests[want]; !ok {
			t.Errorf("missing request %s, got %v", want, requests)
		}
	}
}

func TestUploader_MissingFile(t *testing.T) {
	u, err := NewUploader(context.Background(), S3Config{Enabled: true, Bucket: "b", AccessKeyID: "AK", SecretAccessKey: "SK"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Error("expected error for missing file")
	}
}

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		limit  int
		expect string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"trimmed before measuring", "  hi  ", 10, "hi"},
		{"zero limit", "hello", 0, ""},
		{"multibyte runes", "héllo wörld", 5, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := TruncateForLog(tt.in, tt.limit); got != tt.expect {
				t.Fatalf("TruncateForLog(%q, %d) = %q, expected %q", tt.in, tt.limit, got, tt.expect)
			}
		})
	}
}

func TestNewWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")

	log, err := New(true, false, path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	log.Info("startup complete")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "startup complete") {
		t.Fatalf("log file missing entry: %s", data)
	}
}

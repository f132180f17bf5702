package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	th "github.com/desertthunder/vtx/internal/testing"
)

func TestFormatSizeMB(t *testing.T) {
	tc := []struct {
		name string
		size int64
		want string
	}{
		{name: "zero", size: 0, want: "0.00"},
		{name: "exactly one megabyte", size: 1024 * 1024, want: "1.00"},
		{name: "rounds to two decimals", size: 1536 * 1024, want: "1.50"},
		{name: "small file", size: 5000, want: "0.00"},
		{name: "large file", size: 123456789, want: "117.74"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSizeMB(tt.size); got != tt.want {
				t.Errorf("FormatSizeMB(%d) = %v, want %v", tt.size, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	if got := ParseLogLevel("debug"); got != log.DebugLevel {
		t.Errorf("expected debug level, got %v", got)
	}
	if got := ParseLogLevel("nonsense"); got != log.InfoLevel {
		t.Errorf("expected info level fallback, got %v", got)
	}
	if got := ParseLogLevel(""); got != log.InfoLevel {
		t.Errorf("expected info level for empty string, got %v", got)
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		WithLogger(logger, "component", "test").Info("hello")

		out := buf.String()
		if !strings.Contains(out, "hello") || !strings.Contains(out, "component=test") {
			t.Errorf("unexpected log output: %q", out)
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "vtx.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("to file")

		th.AssertFileExists(t, path)
		if !strings.Contains(th.MustReadFile(t, path), "to file") {
			t.Error("expected log line in file")
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string length 36, got %d", len(a))
	}
}

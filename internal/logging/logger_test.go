package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("creates log file and parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "taskban.log")

		logger, err := New(Options{Level: LevelDebug, Format: FormatJSON, File: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer logger.Close()

		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("log file was not created at %s", path)
		}
	})

	t.Run("writes to the given writer when no file is set", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Options{Level: LevelInfo, Writer: &buf})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer logger.Close()

		if logger.file != nil {
			t.Error("expected file to be nil when File is empty")
		}
		logger.Info("hello", "key", "value")
		if !strings.Contains(buf.String(), "msg=hello") {
			t.Errorf("expected text output, got %q", buf.String())
		}
	})

	t.Run("text format omits timestamps", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Options{Level: LevelInfo, Format: FormatText, Writer: &buf})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		logger.Info("hello")
		if strings.Contains(buf.String(), "time=") {
			t.Errorf("expected no time attribute, got %q", buf.String())
		}
	})
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: LevelWarn, Format: FormatJSON, Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines at WARN, got %d: %q", len(lines), buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: LevelInfo, Format: FormatJSON, Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.WithCommand("plan").WithProject("work.infra").WithTask(12).Info("moved", "direction", "up")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}

	if entry["command"] != "plan" {
		t.Errorf("expected command=plan, got %v", entry["command"])
	}
	if entry["project"] != "work.infra" {
		t.Errorf("expected project=work.infra, got %v", entry["project"])
	}
	// JSON numbers are float64
	if entry["task_id"] != float64(12) {
		t.Errorf("expected task_id=12, got %v", entry["task_id"])
	}
	if entry["direction"] != "up" {
		t.Errorf("expected direction=up, got %v", entry["direction"])
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: LevelInfo, Format: FormatJSON, Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if logger.With() != logger {
		t.Error("With() without arguments should return the same logger")
	}

	logger.With("foo", "bar", 42, "ignored", "count", 3).Info("test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	if entry["foo"] != "bar" {
		t.Errorf("expected foo=bar, got %v", entry["foo"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("expected count=3, got %v", entry["count"])
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	if err := logger.Close(); err != nil {
		t.Errorf("NopLogger.Close() returned error: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"ERROR", LevelError},
		{"invalid", LevelInfo},
		{"", LevelInfo},
	}

	for _, tc := range tests {
		if result := ParseLevel(tc.input); result != tc.expected {
			t.Errorf("ParseLevel(%q) = %q, expected %q", tc.input, result, tc.expected)
		}
	}
}

func TestLevelFromFlags(t *testing.T) {
	tests := []struct {
		name     string
		verbose  int
		quiet    bool
		fallback string
		want     string
	}{
		{"default uses fallback", 0, false, "warn", LevelWarn},
		{"single v", 1, false, "warn", LevelInfo},
		{"double v", 2, false, "warn", LevelDebug},
		{"triple v", 3, false, "warn", LevelDebug},
		{"quiet", 0, true, "warn", LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFromFlags(tt.verbose, tt.quiet, tt.fallback); got != tt.want {
				t.Errorf("LevelFromFlags() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskban.log")

	logger, err := New(Options{Level: LevelInfo, Format: FormatJSON, File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("test message")

	if err := logger.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
	// Second close should be a no-op (file is nil)
	if err := logger.Close(); err != nil {
		t.Errorf("Second Close() returned error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(content) == 0 {
		t.Error("log file is empty, expected content")
	}
}

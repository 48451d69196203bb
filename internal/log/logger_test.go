package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dca-sim/internal/config"
)

func TestNewLogger_WritesJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(config.LoggingConfig{
		Level:       "debug",
		Encoding:    "json",
		OutputPaths: []string{out},
	})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	logger.Debug("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"service":"dca-sim"`) || !strings.Contains(line, `"msg":"hello"`) {
		t.Errorf("unexpected log line %q", line)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(config.LoggingConfig{Level: "loud", Encoding: "json"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/heartmarshall/wordbook/internal/config"
)

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"})
	if slog.Default().Handler() != logger.Handler() {
		t.Error("NewLogger should install the returned logger as slog default")
	}
}

func TestNewLogger_JSONHasNoSource(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Level: "info", Format: "JSON"}).
		Info("search", slog.String("word", "test"))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("json handler produced invalid JSON: %v (%s)", err, buf.String())
	}
	if m["word"] != "test" {
		t.Errorf("word = %v, want test", m["word"])
	}
	if _, ok := m["source"]; ok {
		t.Error("json format should not include source")
	}
}

func TestNewLogger_TextHasSource(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Level: "info", Format: "text"}).Info("hello")

	if !strings.Contains(buf.String(), "source=") {
		t.Errorf("text format should include source, got %q", buf.String())
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, config.LogConfig{Level: tt.level, Format: "json"})
			ctx := context.Background()

			logger.Log(ctx, tt.want, "emitted")
			if buf.Len() == 0 {
				t.Errorf("expected output at level %v", tt.want)
			}

			buf.Reset()
			logger.Log(ctx, tt.want-1, "dropped")
			if buf.Len() != 0 {
				t.Errorf("level %v should drop %v, got %s", tt.want, tt.want-1, buf.String())
			}
		})
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("cluster registered", "id", "0x0006")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if rec["msg"] != "cluster registered" || rec["id"] != "0x0006" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewWriterText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "debug", "text")
	logger.Debug("visible", "clusters", 3)
	if !strings.Contains(buf.String(), "msg=visible") || !strings.Contains(buf.String(), "clusters=3") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestValid(t *testing.T) {
	if !ValidLevel("Warn") || ValidLevel("trace") {
		t.Error("ValidLevel mismatch")
	}
	if !ValidFormat("JSON") || ValidFormat("logfmt") {
		t.Error("ValidFormat mismatch")
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug level", "debug", "console"},
		{"info level", "info", "console"},
		{"warn level", "warn", "console"},
		{"error level", "error", "console"},
		{"json format", "info", "json"},
		{"uppercase level", "DEBUG", "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Setup(tt.level, tt.format)
			if Log == nil {
				t.Error("expected Log to be initialized")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level  string
		expect zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"Info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			Setup(tt.level, "console")
			if got := zerolog.GlobalLevel(); got != tt.expect {
				t.Errorf("level %s: expected %v, got %v", tt.level, tt.expect, got)
			}
		})
	}
}

func TestJSONFieldsCaptured(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(os.Stderr)

	Setup("debug", "json")
	SetOutput(&buf)

	Log.Warn("skipping invalid line", "file", "w.txt", "line", "abc", 7, true)

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if rec["level"] != "warn" {
		t.Errorf("expected warn level, got %v", rec["level"])
	}
	if rec["file"] != "w.txt" || rec["line"] != "abc" {
		t.Errorf("missing fields: %v", rec)
	}
	if rec["7"] != true {
		t.Errorf("non-string key should be stringified: %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(os.Stderr)

	Setup("error", "json")
	SetOutput(&buf)

	Log.Debug("filtered")
	Log.Info("filtered")
	Log.Warn("filtered")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below error, got %q", buf.String())
	}

	Log.Error("kept", "key", nil)
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected error message, got %q", buf.String())
	}
}

func TestLoggerWithOddArgs(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(os.Stderr)

	Setup("info", "json")
	SetOutput(&buf)

	Log.Info("odd args", "key1", "value1", "orphan_key")
	if strings.Contains(buf.String(), "orphan_key") {
		t.Errorf("orphan key should be dropped: %q", buf.String())
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(os.Stderr)

	Setup("info", "console")
	SetOutput(&buf)

	Log.Info("processed", "path", "a.mem")
	if !strings.Contains(buf.String(), "processed") || !strings.Contains(buf.String(), "a.mem") {
		t.Errorf("unexpected console output %q", buf.String())
	}
}

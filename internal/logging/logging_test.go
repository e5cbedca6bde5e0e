// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected info level, got %s", cfg.Level)
	}
	if cfg.JSON {
		t.Error("Default should be text output")
	}
	if cfg.Output == nil {
		t.Error("Default output should be set")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestLoggerJSONComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: LevelDebug, JSON: true}).WithComponent("hiera")

	logger.Info("loaded data", "keys", 3)

	out := buf.String()
	if !strings.Contains(out, `"component"`) || !strings.Contains(out, `"hiera"`) {
		t.Errorf("Expected component field, got %s", out)
	}
	if !strings.Contains(out, `"loaded data"`) {
		t.Errorf("Expected message field, got %s", out)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: LevelWarn})

	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below warn, got %q", buf.String())
	}

	logger.WithError(errors.New("boom")).Warn("visible")
	if !strings.Contains(buf.String(), "visible") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("Expected warn entry with error, got %q", buf.String())
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(New(Config{Output: &buf, Level: LevelInfo}))
	Info("from default")

	if !strings.Contains(buf.String(), "from default") {
		t.Errorf("Expected default logger output, got %q", buf.String())
	}

	SetDefault(nil)
	if Default() == nil {
		t.Error("SetDefault(nil) must not clear the default logger")
	}
}

// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the structured logger used across voxdoc.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", s)
	}
}

// Config controls logger output.
type Config struct {
	Output    io.Writer
	Level     Level
	JSON      bool
	Timestamp bool
}

// DefaultConfig returns text logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Output:    os.Stderr,
		Level:     LevelInfo,
		Timestamp: true,
	}
}

// Logger is a leveled key/value logger.
type Logger struct {
	l *log.Logger
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	formatter := log.TextFormatter
	if cfg.JSON {
		formatter = log.JSONFormatter
	}

	return &Logger{
		l: log.NewWithOptions(out, log.Options{
			Level:           toCharmLevel(cfg.Level),
			ReportTimestamp: cfg.Timestamp,
			Formatter:       formatter,
		}),
	}
}

func toCharmLevel(l Level) log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// With returns a logger carrying the given key/value pairs.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{l: l.l.With(keyvals...)}
}

// WithComponent tags every entry with the component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// WithError attaches err to every entry.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.With("error", err.Error())
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.l.Debug(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.l.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.l.Warn(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...any) { l.l.Error(msg, keyvals...) }

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(DefaultConfig())
)

// Default returns the process-wide logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// WithComponent returns the default logger tagged with a component.
func WithComponent(name string) *Logger {
	return Default().WithComponent(name)
}

func Debug(msg string, keyvals ...any) { Default().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { Default().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { Default().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { Default().Error(msg, keyvals...) }

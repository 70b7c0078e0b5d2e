// Package utils provides logging shared by the ctxwin packages.
package utils

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LogLevel controls which messages a Logger emits.
type LogLevel int

const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger is the minimal structured logging surface used across the
// module. Key-value pairs follow the message, slog style.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	SetLevel(level LogLevel)
}

// DefaultLogger writes text-formatted records to stderr via log/slog.
type DefaultLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
	off    bool
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a DefaultLogger emitting at the given level.
func NewLogger(level LogLevel) *DefaultLogger {
	lv := new(slog.LevelVar)
	lv.Set(slogLevel(level))
	return &DefaultLogger{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})),
		level:  lv,
		off:    level == LogLevelOff,
	}
}

// SetLevel adjusts the emission threshold of an existing logger.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.off = level == LogLevelOff
	l.level.Set(slogLevel(level))
}

func (l *DefaultLogger) Debug(msg string, keysAndValues ...any) {
	if !l.off {
		l.logger.Debug(msg, keysAndValues...)
	}
}

func (l *DefaultLogger) Info(msg string, keysAndValues ...any) {
	if !l.off {
		l.logger.Info(msg, keysAndValues...)
	}
}

func (l *DefaultLogger) Warn(msg string, keysAndValues ...any) {
	if !l.off {
		l.logger.Warn(msg, keysAndValues...)
	}
}

func (l *DefaultLogger) Error(msg string, keysAndValues ...any) {
	if !l.off {
		l.logger.Error(msg, keysAndValues...)
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "OFF"
	case LogLevelError:
		return "ERROR"
	case LogLevelWarn:
		return "WARN"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "OFF":
		*l = LogLevelOff
	case "ERROR":
		*l = LogLevelError
	case "WARN":
		*l = LogLevelWarn
	case "INFO":
		*l = LogLevelInfo
	case "DEBUG":
		*l = LogLevelDebug
	default:
		return fmt.Errorf("invalid log level: %s", string(text))
	}
	return nil
}

package server

import (
	"context"
	"log/slog"
	"os"
)

// Logger interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value any
}

// SlogLogger writes through a *slog.Logger
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

// NewDefaultLogger logs text lines to stdout
func NewDefaultLogger() *SlogLogger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func (l *SlogLogger) Debug(msg string, fields ...Field) {
	l.log(slog.LevelDebug, msg, fields...)
}

func (l *SlogLogger) Info(msg string, fields ...Field) {
	l.log(slog.LevelInfo, msg, fields...)
}

func (l *SlogLogger) Error(msg string, fields ...Field) {
	l.log(slog.LevelError, msg, fields...)
}

func (l *SlogLogger) Warn(msg string, fields ...Field) {
	l.log(slog.LevelWarn, msg, fields...)
}

func (l *SlogLogger) log(level slog.Level, msg string, fields ...Field) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, sanitizeValue(f.Value)))
	}

	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// Request paths come straight off the wire, keep them short in logs
func sanitizeValue(v any) any {
	if s, ok := v.(string); ok {
		if len(s) > 100 {
			return s[:100] + "...[truncated]"
		}
	}
	return v
}

type multiLogger []Logger

// MultiLogger sends every entry to each of loggers
func MultiLogger(loggers ...Logger) Logger {
	return multiLogger(loggers)
}

func (m multiLogger) Debug(msg string, fields ...Field) {
	for _, l := range m {
		l.Debug(msg, fields...)
	}
}

func (m multiLogger) Info(msg string, fields ...Field) {
	for _, l := range m {
		l.Info(msg, fields...)
	}
}

func (m multiLogger) Error(msg string, fields ...Field) {
	for _, l := range m {
		l.Error(msg, fields...)
	}
}

func (m multiLogger) Warn(msg string, fields ...Field) {
	for _, l := range m {
		l.Warn(msg, fields...)
	}
}

// NullLogger discards all logs (for testing)
type NullLogger struct{}

func (n *NullLogger) Debug(msg string, fields ...Field) {}
func (n *NullLogger) Info(msg string, fields ...Field)  {}
func (n *NullLogger) Error(msg string, fields ...Field) {}
func (n *NullLogger) Warn(msg string, fields ...Field)  {}

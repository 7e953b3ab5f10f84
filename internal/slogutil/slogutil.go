package slogutil

import (
	"io"
	"log/slog"
	"strings"
)

// Output formats accepted by NewLoggerWithFormat.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
)

// NewLogger creates a logger using the line format.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return NewLoggerWithFormat(w, FormatHuman, level)
}

// NewLoggerWithFormat creates a logger writing format ("human" or "json") to w.
// Anything other than json gets the line format.
func NewLoggerWithFormat(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(NewLineHandler(w, opts))
}

// NewDiscardLogger returns a logger that drops every record.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Component tags every record from the returned logger with the process tier
// ("gateway", "lookup") that produced it.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(ComponentKey, name)
}

// LevelFromString parses debug, info, warn (or warning), error, with an
// optional offset such as "info+2". Unrecognized input means info.
func LevelFromString(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

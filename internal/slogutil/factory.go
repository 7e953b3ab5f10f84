package slogutil

import (
	"io"
	"log/slog"

	"mdbgw/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// FromConfig builds the process logger. Records always go to console; when
// cfg.File is set they are also appended to that file, rotated per cfg.MaxSize.
// The returned closer releases the file and is never nil.
func FromConfig(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, io.Closer, error) {
	level := LevelFromString(cfg.Level)
	consoleHandler := NewLoggerWithFormat(console, cfg.Format, level).Handler()

	if cfg.File == "" {
		return slog.New(consoleHandler), nopCloser{}, nil
	}

	rf, err := OpenRotatingFile(cfg.File, ParseSize(cfg.MaxSize), cfg.MaxBackups)
	if err != nil {
		return nil, nil, err
	}
	fileHandler := NewLoggerWithFormat(rf, cfg.Format, level).Handler()

	return slog.New(Fanout(consoleHandler, fileHandler)), rf, nil
}

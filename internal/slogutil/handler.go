// Package slogutil builds the loggers used by the mdbgw servers and tools.
package slogutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ComponentKey is the attribute LineHandler prints in front of the message
// rather than after it. Set it with Component.
const ComponentKey = "component"

var levelNames = [...]string{"debug", "info", "warn", "error"}

// LineHandler renders each record as one line:
//
//	2024-05-01T12:00:00Z [info] gateway: Connection started | conn=3f2a client=127.0.0.1
type LineHandler struct {
	out       *syncWriter
	level     slog.Leveler
	component string
	group     string
	// attrs holds attributes from WithAttrs, already rendered.
	attrs []byte
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineHandler creates a LineHandler writing to w.
func NewLineHandler(w io.Writer, opts *slog.HandlerOptions) *LineHandler {
	h := &LineHandler{out: &syncWriter{w: w}, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = r.Time.UTC().AppendFormat(buf, time.RFC3339)
	buf = append(buf, " ["...)
	buf = append(buf, levelName(r.Level)...)
	buf = append(buf, "] "...)
	if h.component != "" {
		buf = append(buf, h.component...)
		buf = append(buf, ": "...)
	}
	buf = append(buf, r.Message...)

	tail := slices.Clone(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		tail = appendAttr(tail, h.group, a)
		return true
	})
	if len(tail) > 0 {
		buf = append(buf, " |"...)
		buf = append(buf, tail...)
	}
	buf = append(buf, '\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := h.out.w.Write(buf)
	return err
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		if a.Key == ComponentKey && h.group == "" {
			next.component = a.Value.Resolve().String()
			continue
		}
		next.attrs = appendAttr(next.attrs, h.group, a)
	}
	return &next
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

// appendAttr renders " key=value", flattening groups into dotted keys.
func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, prefix, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
			return strconv.AppendQuote(buf, s)
		}
		return append(buf, s...)
	case slog.KindTime:
		return v.Time().UTC().AppendFormat(buf, time.RFC3339)
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	default:
		return fmt.Append(buf, v.Any())
	}
}

// levelName maps a level onto the nearest standard name at or below it.
func levelName(l slog.Level) string {
	i := int(l-slog.LevelDebug) / 4
	return levelNames[min(max(i, 0), len(levelNames)-1)]
}

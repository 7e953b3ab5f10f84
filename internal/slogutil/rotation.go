package slogutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// RotatingFile appends to a log file and shifts it to path.1, path.2, ...
// when the next write would take it past its size limit.
type RotatingFile struct {
	mu      sync.Mutex
	path    string
	limit   int64
	keep    int
	f       *os.File
	written int64
	closed  bool
}

// OpenRotatingFile opens path for appending, creating parent directories.
// maxSize <= 0 disables rotation; maxBackups <= 0 discards the old file on
// rotation.
func OpenRotatingFile(path string, maxSize int64, maxBackups int) (*RotatingFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	rf := &RotatingFile{path: path, limit: maxSize, keep: maxBackups}
	if err := rf.reopen(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *RotatingFile) reopen() error {
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	rf.f, rf.written = f, info.Size()
	return nil
}

func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.closed {
		return 0, os.ErrClosed
	}
	if rf.f != nil && rf.limit > 0 && rf.written > 0 && rf.written+int64(len(p)) > rf.limit {
		rf.shift()
	}
	if rf.f == nil {
		if err := rf.reopen(); err != nil {
			return 0, err
		}
	}

	n, err := rf.f.Write(p)
	rf.written += int64(n)
	return n, err
}

func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	rf.closed = true
	if rf.f == nil {
		return nil
	}
	err := rf.f.Close()
	rf.f = nil
	return err
}

// shift closes the current file and renames path.N-1 to path.N down to
// path to path.1. The oldest backup is overwritten. Rename failures are
// ignored; the next write reopens path either way.
func (rf *RotatingFile) shift() {
	_ = rf.f.Close()
	rf.f = nil

	if rf.keep <= 0 {
		_ = os.Remove(rf.path)
		return
	}
	for i := rf.keep; i > 0; i-- {
		src := rf.path
		if i > 1 {
			src = rf.backup(i - 1)
		}
		_ = os.Rename(src, rf.backup(i))
	}
}

func (rf *RotatingFile) backup(n int) string {
	return rf.path + "." + strconv.Itoa(n)
}

var sizeUnits = []struct {
	suffix string
	scale  float64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses sizes like "10MB", "512kb", "1.5GB" or a bare byte count.
// Empty or invalid input yields 0.
func ParseSize(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	scale := 1.0
	for _, u := range sizeUnits {
		if rest, ok := strings.CutSuffix(s, u.suffix); ok {
			s, scale = strings.TrimSpace(rest), u.scale
			break
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v >= 0) || v*scale >= math.MaxInt64 {
		return 0
	}
	return int64(v * scale)
}

// Package accesslog formats gateway access-log lines and optionally keeps
// them in a SQLite database for later inspection.
package accesslog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Entry is one answered gateway request.
type Entry struct {
	ID          string
	Time        time.Time
	ClientIP    string
	RequestLine string
	Status      string
	Duration    time.Duration
}

// Line renders e the way it is printed to the access log:
// 127.0.0.1 "GET /index.html HTTP/1.0" 200 OK
func (e Entry) Line() string {
	return fmt.Sprintf("%s \"%s\" %s", e.ClientIP, e.RequestLine, e.Status)
}

// timestampFormat is fixed width so ts sorts chronologically as text.
const timestampFormat = "2006-01-02T15:04:05.000000000Z"

// Store persists entries in SQLite.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the access-log database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create access log directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open access log database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{conn: conn, logger: logger, dbPath: path}
	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize access log schema: %w", err)
	}

	logger.Debug("Access log database ready", "path", path)
	return s, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS access_log (
			id TEXT PRIMARY KEY,
			ts TEXT NOT NULL,
			client_ip TEXT NOT NULL,
			request_line TEXT NOT NULL,
			status TEXT NOT NULL,
			duration_us INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_access_log_ts ON access_log(ts DESC);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Record inserts e, assigning an ID and timestamp when they are unset.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO access_log (id, ts, client_ip, request_line, status, duration_us) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UTC().Format(timestampFormat), e.ClientIP, e.RequestLine, e.Status, e.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record access log entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, ts, client_ip, request_line, status, duration_us FROM access_log ORDER BY ts DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query access log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		var us int64
		if err := rows.Scan(&e.ID, &ts, &e.ClientIP, &e.RequestLine, &e.Status, &us); err != nil {
			return nil, fmt.Errorf("failed to scan access log row: %w", err)
		}
		e.Time, _ = time.Parse(timestampFormat, ts)
		e.Duration = time.Duration(us) * time.Microsecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Package lookup implements both ends of the line-oriented lookup protocol.
//
// A client sends one key per line. The server answers with one line per
// matching record, formatted by mdb.FormatMatch, followed by a line holding
// only "\n".
package lookup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"mdbgw/internal/mdb"
	"mdbgw/internal/slogutil"
)

// DefaultMaxKeyLen matches the visible width of a record name.
const DefaultMaxKeyLen = mdb.NameWidth - 1

// ServerConfig configures a lookup server.
type ServerConfig struct {
	// Database is the record file reloaded for every connection.
	Database string
	// MaxKeyLen truncates every received key. Zero means DefaultMaxKeyLen.
	MaxKeyLen int
}

// Server answers lookup queries one connection at a time.
type Server struct {
	cfg    ServerConfig
	logger *slog.Logger
	load   func(path string) (*mdb.Store, error)
}

// NewServer creates a lookup server.
func NewServer(cfg ServerConfig, logger *slog.Logger) (*Server, error) {
	if cfg.Database == "" {
		return nil, mdb.ErrEmptyPath
	}
	if cfg.MaxKeyLen <= 0 {
		cfg.MaxKeyLen = DefaultMaxKeyLen
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Server{cfg: cfg, logger: logger, load: mdb.Load}, nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and serves each one to completion before
// accepting the next. It returns nil once ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer func() { _ = ln.Close() }()

	s.logger.Info("Lookup server listening", "addr", ln.Addr().String(), "database", s.cfg.Database)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("Accept failed", "error", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer func() { _ = conn.Close() }()

	client := remoteIP(conn.RemoteAddr())
	s.logger.Info("Connection started", "client", client)
	s.ServeStream(conn, client)
	s.logger.Info("Connection terminated", "client", client)
}

// ServeStream runs the protocol on an established stream until the peer
// closes its write side. The store is loaded once, before the first read.
func (s *Server) ServeStream(rw io.ReadWriter, client string) {
	store, err := s.load(s.cfg.Database)
	if err != nil {
		s.logger.Error("Failed to load database", "client", client, "error", err)
		return
	}
	s.logger.Debug("Database loaded", "client", client, "records", store.Len(), "digest", store.Digest)

	r := bufio.NewReader(rw)
	for {
		line, err := r.ReadString('\n')
		if line == "" && err != nil {
			if err != io.EOF {
				s.logger.Warn("Read failed", "client", client, "error", err)
			}
			return
		}

		key := NormalizeKey(line, s.cfg.MaxKeyLen)
		matches := mdb.Find(store, key)
		s.logger.Debug("Query", "client", client, "key", key, "matches", len(matches))
		s.writeResults(rw, matches, client)

		if err != nil {
			return
		}
	}
}

// writeResults sends every match and the terminator. Failed writes are
// logged and skipped.
func (s *Server) writeResults(w io.Writer, matches []mdb.Match, client string) {
	for _, m := range matches {
		if _, err := io.WriteString(w, mdb.FormatMatch(m)); err != nil {
			s.logger.Error("Send failed", "client", client, "position", m.Position, "error", err)
		}
	}
	if _, err := io.WriteString(w, mdb.Terminator); err != nil {
		s.logger.Error("Send failed", "client", client, "error", err)
	}
}

// NormalizeKey strips the trailing newline from a received line and cuts the
// result to at most maxLen bytes.
func NormalizeKey(line string, maxLen int) string {
	key := strings.TrimSuffix(line, "\n")
	if maxLen > 0 && len(key) > maxLen {
		key = key[:maxLen]
	}
	return key
}

func remoteIP(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

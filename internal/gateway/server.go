// Package gateway implements the HTTP front end: it answers exactly one
// request per connection, serving static files from a document root and the
// /mdb-lookup page backed by the lookup server.
package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"mdbgw/internal/accesslog"
	mdberrors "mdbgw/internal/errors"
	"mdbgw/internal/slogutil"
)

const (
	lookupPath      = "/mdb-lookup"
	lookupKeyPrefix = "/mdb-lookup?key="

	defaultMaxRequestLine = 8192

	lingerTimeout  = 500 * time.Millisecond
	maxLingerBytes = 64 << 10
)

// Querier streams lookup results for a key. *lookup.Client implements it.
type Querier interface {
	Stream(ctx context.Context, key string, fn func(line string) error) error
}

// Recorder persists access-log entries. *accesslog.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e accesslog.Entry) error
}

// Options configures a gateway Server.
type Options struct {
	WebRoot string
	Lookup  Querier
	Logger  *slog.Logger
	// AccessLog receives one line per answered request. Nil discards.
	AccessLog io.Writer
	// Recorder additionally stores each entry when set.
	Recorder Recorder
	// MaxRequestLine bounds the request line; zero means 8192 bytes.
	MaxRequestLine int
}

// Server is the HTTP front end. It handles one connection at a time.
type Server struct {
	webRoot  string
	lookup   Querier
	logger   *slog.Logger
	access   io.Writer
	recorder Recorder
	maxLine  int
}

// NewServer creates a gateway server.
func NewServer(opts Options) (*Server, error) {
	if opts.WebRoot == "" {
		return nil, errors.New("web root is required")
	}
	if opts.Lookup == nil {
		return nil, errors.New("lookup client is required")
	}
	if opts.Logger == nil {
		opts.Logger = slogutil.NewDiscardLogger()
	}
	if opts.AccessLog == nil {
		opts.AccessLog = io.Discard
	}
	if opts.MaxRequestLine <= 0 {
		opts.MaxRequestLine = defaultMaxRequestLine
	}

	return &Server{
		webRoot:  opts.WebRoot,
		lookup:   opts.Lookup,
		logger:   opts.Logger,
		access:   opts.AccessLog,
		recorder: opts.Recorder,
		maxLine:  opts.MaxRequestLine,
	}, nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts browser connections and answers each before accepting the
// next. It returns nil once ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer func() { _ = ln.Close() }()

	s.logger.Info("Gateway listening", "addr", ln.Addr().String(), "webRoot", s.webRoot)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("Accept failed", "error", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer lingerClose(conn)

	s.ServeStream(ctx, conn, clientIP(conn.RemoteAddr()))
}

// lingerClose half-closes conn and discards unread request headers before
// closing. Closing with unread input resets the connection, and the browser
// may then drop the response it has not read yet.
func lingerClose(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
		_ = tcp.SetReadDeadline(time.Now().Add(lingerTimeout))
		_, _ = io.Copy(io.Discard, io.LimitReader(tcp, maxLingerBytes))
	}
	_ = conn.Close()
}

// ServeStream reads one request from rw, answers it and writes the access
// log entry. It returns the status sent, or "" when no request line arrived.
func (s *Server) ServeStream(ctx context.Context, rw io.ReadWriter, client string) string {
	start := time.Now()
	id := uuid.New().String()
	logger := s.logger.With("conn", id, "client", client)

	line, err := readRequestLine(bufio.NewReader(rw), s.maxLine)
	if line == "" {
		logger.Debug("Connection closed without a request line", "error", err)
		return ""
	}

	req := ParseRequestLine(line)
	status, err := s.respond(ctx, rw, req, logger)
	if err != nil {
		logger.Warn("Response abandoned", "status", status, "error", err)
	}

	s.logAccess(ctx, logger, accesslog.Entry{
		ID:          id,
		Time:        start,
		ClientIP:    client,
		RequestLine: req.Raw,
		Status:      status,
		Duration:    time.Since(start),
	})
	return status
}

// respond validates and dispatches req. The returned error reports a failed
// write; the status is what was (or was attempted to be) sent.
func (s *Server) respond(ctx context.Context, w io.Writer, req RequestLine, logger *slog.Logger) (string, error) {
	path, err := Validate(req, s.webRoot)
	if err != nil {
		status := statusOf(err)
		logger.Debug("Request rejected", "status", status, "error", err)
		return status, writeError(w, status)
	}

	switch {
	case req.Target == lookupPath:
		if err := writeHeader(w, StatusOK); err != nil {
			return StatusOK, err
		}
		_, err := io.WriteString(w, formPage)
		return StatusOK, err

	case strings.HasPrefix(req.Target, lookupKeyPrefix):
		return StatusOK, s.serveLookup(ctx, w, strings.TrimPrefix(req.Target, lookupKeyPrefix), logger)

	default:
		return s.serveFile(w, path)
	}
}

func (s *Server) serveLookup(ctx context.Context, w io.Writer, key string, logger *slog.Logger) error {
	logger.Debug("Looking up", "key", key)

	if err := writeHeader(w, StatusOK); err != nil {
		return err
	}
	if _, err := io.WriteString(w, pageHead+lookupForm+tableOpen); err != nil {
		return err
	}

	rows := 0
	err := s.lookup.Stream(ctx, key, func(line string) error {
		rows++
		_, err := io.WriteString(w, tableRow(rows, line))
		return err
	})
	if err != nil {
		// A browser write failure surfaces here too; in that case the
		// closing tags cannot be delivered either.
		if !mdberrors.Is(err, mdberrors.LookupUnavailable) && !mdberrors.Is(err, mdberrors.ProtocolError) {
			return err
		}
		logger.Error("Lookup failed", "key", key, "error", err)
	}

	_, err = io.WriteString(w, tableClose)
	return err
}

func (s *Server) serveFile(w io.Writer, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return StatusNotFound, writeError(w, StatusNotFound)
	}
	defer func() { _ = f.Close() }()

	if info, err := f.Stat(); err != nil || !info.Mode().IsRegular() {
		return StatusNotFound, writeError(w, StatusNotFound)
	}

	if err := writeHeader(w, StatusOK); err != nil {
		return StatusOK, err
	}
	_, err = io.Copy(w, f)
	return StatusOK, err
}

func (s *Server) logAccess(ctx context.Context, logger *slog.Logger, e accesslog.Entry) {
	if _, err := io.WriteString(s.access, e.Line()+"\n"); err != nil {
		logger.Warn("Failed to write access log", "error", err)
	}
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, e); err != nil {
			logger.Warn("Failed to record access log entry", "error", err)
		}
	}
}

func clientIP(addr net.Addr) string {
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

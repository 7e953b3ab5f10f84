package lookup

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	mdberrors "mdbgw/internal/errors"
	"mdbgw/internal/mdb"
)

// Mode selects how a Client uses connections.
type Mode string

const (
	// ModeShared keeps one connection open and serializes queries on it.
	ModeShared Mode = "shared"
	// ModePerRequest dials a fresh connection for every query.
	ModePerRequest Mode = "per-request"
)

// Client queries a lookup server. It is safe for concurrent use; in shared
// mode queries are serialized so results never interleave on the wire.
type Client struct {
	addr string
	mode Mode
	dial func(ctx context.Context, network, addr string) (net.Conn, error)

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// NewClient creates a client for addr without connecting.
func NewClient(addr string, mode Mode) *Client {
	if mode == "" {
		mode = ModeShared
	}
	d := &net.Dialer{Timeout: 10 * time.Second}
	return &Client{addr: addr, mode: mode, dial: d.DialContext}
}

// Dial creates a client and, in shared mode, opens its connection right away
// so an unreachable lookup server is reported at startup.
func Dial(ctx context.Context, addr string, mode Mode) (*Client, error) {
	c := NewClient(addr, mode)
	if c.mode != ModeShared {
		return c, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Addr returns the lookup server address.
func (c *Client) Addr() string {
	return c.addr
}

// Query sends key and collects every result line, newline included.
func (c *Client) Query(ctx context.Context, key string) ([]string, error) {
	var lines []string
	err := c.Stream(ctx, key, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	return lines, err
}

// Stream sends key and calls fn for each result line before the terminator,
// newline included. Once fn fails it is not called again, but the remaining
// lines are still read so the connection stays aligned; fn's error is
// returned. The key is cut at its first newline.
func (c *Client) Stream(ctx context.Context, key string, fn func(line string) error) error {
	key, _, _ = strings.Cut(key, "\n")

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			return err
		}
	}
	if c.mode == ModePerRequest {
		defer c.dropLocked()
	}

	conn := c.conn
	// Zero when ctx has no deadline, which also clears one left by a
	// cancellation that fired after the previous query finished.
	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := io.WriteString(conn, key+"\n"); err != nil {
		c.dropLocked()
		return mdberrors.New(mdberrors.LookupUnavailable, "failed to send query", err)
	}

	var fnErr error
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			c.dropLocked()
			if err == io.EOF {
				return mdberrors.New(mdberrors.ProtocolError, "lookup stream ended before terminator", err)
			}
			return mdberrors.New(mdberrors.LookupUnavailable, "failed to read results", err)
		}
		if line == mdb.Terminator {
			return fnErr
		}
		if fnErr == nil {
			fnErr = fn(line)
		}
	}
}

// Close closes the current connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

func (c *Client) connectLocked(ctx context.Context) error {
	conn, err := c.dial(ctx, "tcp4", c.addr)
	if err != nil {
		return mdberrors.New(mdberrors.LookupUnavailable, "failed to connect to lookup server "+c.addr, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// dropLocked discards a connection whose stream position is no longer known.
func (c *Client) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.reader = nil
}

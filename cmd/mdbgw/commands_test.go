package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"mdbgw/internal/accesslog"
	mdberrors "mdbgw/internal/errors"
	"mdbgw/internal/lookup"
	"mdbgw/internal/mdb"
	"mdbgw/internal/seed"
	"mdbgw/internal/slogutil"
	"mdbgw/internal/testutil"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"8888", 8888, false},
		{"1", 1, false},
		{"65535", 65535, false},
		{"0", 0, true},
		{"65536", 0, true},
		{"-1", 0, true},
		{"http", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePort(tt.in)
			if tt.wantErr {
				if !mdberrors.Is(err, mdberrors.StartupFailed) {
					t.Errorf("parsePort(%q) error = %v, want STARTUP_FAILED", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("parsePort(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"http-server", "lookup-server", "mkdb", "dump", "query", "access-log"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("command %q not registered", name)
		}
	}
}

func outputOf(t *testing.T, run func(cmd *cobra.Command, args []string) error, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	if err := run(cmd, args); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	return out.String()
}

func TestMkdbThenDump(t *testing.T) {
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "records.yaml")
	content := `records:
  - name: alice
    message: likes cats
  - name: a-name-that-is-far-too-long
    message: hi
`
	if err := os.WriteFile(seedPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	for _, dbName := range []string{"records.db", "records.db.zst"} {
		t.Run(dbName, func(t *testing.T) {
			dbPath := filepath.Join(dir, dbName)

			out := outputOf(t, runMkdb, seedPath, dbPath)
			if !strings.HasPrefix(out, "Wrote 2 records to "+dbPath) {
				t.Errorf("mkdb output = %q", out)
			}

			store, err := mdb.Load(dbPath)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			var dump bytes.Buffer
			if err := writeDump(&dump, store, dumpFormatText); err != nil {
				t.Fatalf("writeDump() error = %v", err)
			}
			want := "   1: {alice} said {likes cats}\n" +
				"   2: {a-name-that-is-} said {hi}\n"
			if dump.String() != want {
				t.Errorf("dump = %q, want %q", dump.String(), want)
			}
		})
	}
}

func TestWriteDump_SeedFormatsRoundTrip(t *testing.T) {
	store := &mdb.Store{Records: []mdb.Record{
		mdb.NewRecord("alice", "likes cats"),
		mdb.NewRecord("bob", ""),
	}}

	for _, format := range []string{seed.FormatJSON, seed.FormatTOML, seed.FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeDump(&buf, store, format); err != nil {
				t.Fatalf("writeDump() error = %v", err)
			}
			got, err := seed.Decode(buf.Bytes(), format)
			if err != nil {
				t.Fatalf("Decode() error = %v\n%s", err, buf.String())
			}
			if len(got) != 2 || got[0] != store.Records[0] || got[1] != store.Records[1] {
				t.Errorf("round trip = %+v, want %+v", got, store.Records)
			}
		})
	}

	if err := writeDump(&bytes.Buffer{}, store, "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPrintQuery(t *testing.T) {
	db := testutil.WriteDatabase(t,
		mdb.NewRecord("alice", "likes cats"),
		mdb.NewRecord("bob", "dogs"),
	)
	srv, err := lookup.NewServer(lookup.ServerConfig{Database: db}, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ln := testutil.Listen(t)
	go func() { _ = srv.Serve(ctx, ln) }()

	client := lookup.NewClient(ln.Addr().String(), lookup.ModePerRequest)
	defer func() { _ = client.Close() }()

	var out bytes.Buffer
	if err := printQuery(ctx, &out, client, "cat"); err != nil {
		t.Fatalf("printQuery() error = %v", err)
	}
	if out.String() != "   1: {alice} said {likes cats}\n" {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := printQuery(ctx, &out, client, "zz"); err != nil {
		t.Fatalf("printQuery() error = %v", err)
	}
	if out.String() != "No records match \"zz\"\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestPrintQuery_Unreachable(t *testing.T) {
	ln := testutil.Listen(t)
	addr := ln.Addr().String()
	_ = ln.Close()

	client := lookup.NewClient(addr, lookup.ModePerRequest)
	err := printQuery(context.Background(), &bytes.Buffer{}, client, "x")
	if !mdberrors.Is(err, mdberrors.LookupUnavailable) {
		t.Errorf("printQuery() error = %v, want LOOKUP_UNAVAILABLE", err)
	}
}

func TestWriteAccessLog(t *testing.T) {
	var buf bytes.Buffer
	if err := writeAccessLog(&buf, nil); err != nil {
		t.Fatalf("writeAccessLog() error = %v", err)
	}
	if buf.String() != "No requests recorded.\n" {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	entries := []accesslog.Entry{{
		Time:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local),
		ClientIP:    "127.0.0.1",
		RequestLine: "GET / HTTP/1.0",
		Status:      "200 OK",
		Duration:    1500 * time.Microsecond,
	}}
	if err := writeAccessLog(&buf, entries); err != nil {
		t.Fatalf("writeAccessLog() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"TIME", "REQUEST", "2024-05-01 12:00:00", "127.0.0.1", "200 OK", "1.5ms", "GET / HTTP/1.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

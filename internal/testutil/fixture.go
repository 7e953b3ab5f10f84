// Package testutil provides fixtures shared by mdbgw package tests.
package testutil

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"mdbgw/internal/mdb"
)

// WriteDatabase writes records to a fresh database file and returns its path.
func WriteDatabase(t *testing.T, records ...mdb.Record) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	if err := mdb.WriteFile(path, records); err != nil {
		t.Fatalf("Failed to write database: %v", err)
	}
	return path
}

// WebRoot creates a document root holding files (relative path -> content).
// A path ending in "/" creates an empty directory.
func WebRoot(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return root
}

// Listen opens a loopback TCP listener on a free port, closed at test end.
func Listen(t *testing.T) net.Listener {
	t.Helper()

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	return ln
}

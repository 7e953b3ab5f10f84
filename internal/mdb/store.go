package mdb

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"

	mdberrors "mdbgw/internal/errors"
)

// Store is an ordered, read-only snapshot of a database file. Position i+1 in
// lookup results refers to Records[i].
type Store struct {
	Path    string
	Records []Record
	// Digest is the hex blake2b-256 of the uncompressed bytes the store was decoded from.
	Digest string
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.Records)
}

// Load reads the database file at path. Files ending in .zst or .gz are
// decompressed first. A missing or unreadable file yields a
// DATABASE_UNAVAILABLE error.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mdberrors.New(mdberrors.DatabaseUnavailable, "cannot open database", err)
	}
	defer func() { _ = f.Close() }()

	r, closeFn, err := decompressor(path, f)
	if err != nil {
		return nil, mdberrors.New(mdberrors.DatabaseUnavailable, "cannot decompress database", err)
	}
	defer closeFn()

	store, err := Decode(r)
	if err != nil {
		return nil, mdberrors.New(mdberrors.DatabaseUnavailable, "cannot read database", err)
	}
	store.Path = path
	return store, nil
}

// Decode reads fixed-width records from r until EOF. A short trailing slot
// ends the sequence without error.
func Decode(r io.Reader) (*Store, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(io.TeeReader(r, h))
	store := &Store{}
	slot := make([]byte, RecordSize)
	for {
		_, err := io.ReadFull(br, slot)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		store.Records = append(store.Records, decodeRecord(slot))
	}

	store.Digest = hex.EncodeToString(h.Sum(nil))
	return store, nil
}

// Encode writes records in the fixed-width format.
func Encode(w io.Writer, records []Record) error {
	buf := make([]byte, 0, RecordSize)
	for _, rec := range records {
		buf = encodeRecord(buf[:0], rec)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes records to path, compressing by extension like Load.
// The file is replaced atomically.
func WriteFile(path string, records []Record) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	w, closeFn, err := compressor(path, bw)
	if err != nil {
		return err
	}
	if err = Encode(w, records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err = closeFn(); err != nil {
		return fmt.Errorf("failed to finish compression: %w", err)
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func decompressor(path string, r io.Reader) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case ".gz":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gr, func() { _ = gr.Close() }, nil
	default:
		return r, func() {}, nil
	}
}

func compressor(path string, w io.Writer) (io.Writer, func() error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return zw, zw.Close, nil
	case ".gz":
		gw := gzip.NewWriter(w)
		return gw, gw.Close, nil
	default:
		return w, func() error { return nil }, nil
	}
}

// ErrEmptyPath is returned by callers that require a database path.
var ErrEmptyPath = errors.New("database path is empty")

// Package mdb implements the fixed-width record database: loading a file into
// an ordered Store, writing files in the same format, and the substring lookup
// the lookup server answers queries with.
package mdb

import "bytes"

// Slot widths of the on-disk format. A record is NameWidth bytes of name
// followed by MessageWidth bytes of message; there is no header or count.
const (
	NameWidth    = 16
	MessageWidth = 24
	RecordSize   = NameWidth + MessageWidth
)

// Record is one (name, message) pair. Name holds at most NameWidth-1 bytes and
// Message at most MessageWidth-1 bytes; the last byte of each slot is reserved
// for the terminating NUL.
type Record struct {
	Name    string `json:"name" toml:"name" yaml:"name"`
	Message string `json:"message" toml:"message" yaml:"message"`
}

// NewRecord truncates name and message to their slot capacity.
func NewRecord(name, message string) Record {
	return Record{
		Name:    truncate(name, NameWidth-1),
		Message: truncate(message, MessageWidth-1),
	}
}

// decodeRecord reads one full slot pair.
func decodeRecord(slot []byte) Record {
	return Record{
		Name:    decodeField(slot[:NameWidth]),
		Message: decodeField(slot[NameWidth:RecordSize]),
	}
}

// encodeRecord appends the fixed-width encoding of r to dst.
func encodeRecord(dst []byte, r Record) []byte {
	dst = appendField(dst, r.Name, NameWidth)
	return appendField(dst, r.Message, MessageWidth)
}

// decodeField returns the bytes before the first NUL, never more than
// len(slot)-1 of them.
func decodeField(slot []byte) string {
	field := slot[:len(slot)-1]
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}

func appendField(dst []byte, s string, width int) []byte {
	s = truncate(s, width-1)
	if i := bytes.IndexByte([]byte(s), 0); i >= 0 {
		s = s[:i]
	}
	dst = append(dst, s...)
	for n := len(s); n < width; n++ {
		dst = append(dst, 0)
	}
	return dst
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

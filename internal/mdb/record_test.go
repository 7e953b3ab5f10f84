package mdb

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRecord_Truncates(t *testing.T) {
	r := NewRecord(strings.Repeat("n", 40), strings.Repeat("m", 40))

	if len(r.Name) != NameWidth-1 {
		t.Errorf("len(Name) = %d, want %d", len(r.Name), NameWidth-1)
	}
	if len(r.Message) != MessageWidth-1 {
		t.Errorf("len(Message) = %d, want %d", len(r.Message), MessageWidth-1)
	}
}

func TestEncodeRecord_Layout(t *testing.T) {
	got := encodeRecord(nil, Record{Name: "alice", Message: "likes cats"})

	if len(got) != RecordSize {
		t.Fatalf("encoded size = %d, want %d", len(got), RecordSize)
	}
	if !bytes.HasPrefix(got, []byte("alice\x00")) {
		t.Errorf("name slot = %q", got[:NameWidth])
	}
	if !bytes.HasPrefix(got[NameWidth:], []byte("likes cats\x00")) {
		t.Errorf("message slot = %q", got[NameWidth:])
	}
	if got[NameWidth-1] != 0 || got[RecordSize-1] != 0 {
		t.Error("slots must end with NUL")
	}
}

func TestDecodeField(t *testing.T) {
	tests := []struct {
		name string
		slot []byte
		want string
	}{
		{"nul terminated", []byte("bob\x00garbage\x00\x00\x00\x00\x00"), "bob"},
		{"all nul", make([]byte, NameWidth), ""},
		{"no nul truncates to width-1", []byte("0123456789abcdef"), "0123456789abcde"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeField(tt.slot); got != tt.want {
				t.Errorf("decodeField(%q) = %q, want %q", tt.slot, got, tt.want)
			}
		})
	}
}

func TestAppendField_StopsAtEmbeddedNUL(t *testing.T) {
	got := appendField(nil, "ab\x00cd", NameWidth)
	if decodeField(got) != "ab" {
		t.Errorf("decoded = %q, want %q", decodeField(got), "ab")
	}
	if len(got) != NameWidth {
		t.Errorf("len = %d, want %d", len(got), NameWidth)
	}
}

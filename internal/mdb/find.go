package mdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Match is a record that contains the query key, with its 1-based position
// in the store.
type Match struct {
	Position int
	Record   Record
}

// Find scans the whole store in order and returns every record whose name or
// message contains key. Matching is byte-exact and case-sensitive; an empty
// key matches every record.
func Find(store *Store, key string) []Match {
	var matches []Match
	for i, rec := range store.Records {
		if strings.Contains(rec.Name, key) || strings.Contains(rec.Message, key) {
			matches = append(matches, Match{Position: i + 1, Record: rec})
		}
	}
	return matches
}

// Terminator is the line that ends one query's results on the wire.
const Terminator = "\n"

// FormatMatch renders m as one protocol line, newline included:
// "   1: {alice} said {likes cats}\n"
func FormatMatch(m Match) string {
	return fmt.Sprintf("%4d: {%s} said {%s}\n", m.Position, m.Record.Name, m.Record.Message)
}

// ParseMatch is the inverse of FormatMatch. The trailing newline is optional.
func ParseMatch(line string) (Match, error) {
	line = strings.TrimSuffix(line, "\n")

	colon := strings.Index(line, ": {")
	if colon < 0 {
		return Match{}, fmt.Errorf("malformed match line %q", line)
	}
	pos, err := strconv.Atoi(strings.TrimSpace(line[:colon]))
	if err != nil {
		return Match{}, fmt.Errorf("malformed position in %q: %w", line, err)
	}

	rest := line[colon+len(": {"):]
	if !strings.HasSuffix(rest, "}") {
		return Match{}, fmt.Errorf("malformed match line %q", line)
	}
	rest = rest[:len(rest)-1]

	// First separator wins; a name that itself contains it parses ambiguously.
	sep := strings.Index(rest, "} said {")
	if sep < 0 {
		return Match{}, fmt.Errorf("malformed match line %q", line)
	}
	return Match{
		Position: pos,
		Record: Record{
			Name:    rest[:sep],
			Message: rest[sep+len("} said {"):],
		},
	}, nil
}

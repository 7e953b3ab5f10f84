package gateway

import (
	"bufio"
	"strings"
)

// RequestLine is the parsed first line of an HTTP request. Missing tokens are
// left empty; validation turns them into the matching error status.
type RequestLine struct {
	Method  string
	Target  string
	Version string
	// Raw is the line as received, up to the first CR or LF.
	Raw string
}

// ParseRequestLine splits line on spaces, tabs, CR and LF. Tokens past the
// third are ignored.
func ParseRequestLine(line string) RequestLine {
	req := RequestLine{Raw: rawLine(line)}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	if len(fields) > 0 {
		req.Method = fields[0]
	}
	if len(fields) > 1 {
		req.Target = fields[1]
	}
	if len(fields) > 2 {
		req.Version = fields[2]
	}
	return req
}

func rawLine(line string) string {
	line = strings.TrimLeft(line, "\r\n")
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	return line
}

// readRequestLine reads through the first LF, or max bytes, whichever comes
// first. The bytes read so far are returned along with any read error.
func readRequestLine(r *bufio.Reader, max int) (string, error) {
	var b strings.Builder
	for b.Len() < max {
		c, err := r.ReadByte()
		if err != nil {
			return b.String(), err
		}
		b.WriteByte(c)
		if c == '\n' {
			break
		}
	}
	return b.String(), nil
}

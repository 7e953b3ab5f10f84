package gateway

import (
	"bufio"
	"io"
	"strings"
	"testing"
)

func TestParseRequestLine(t *testing.T) {
	tests := []struct {
		line string
		want RequestLine
	}{
		{
			line: "GET /index.html HTTP/1.0\r\n",
			want: RequestLine{Method: "GET", Target: "/index.html", Version: "HTTP/1.0", Raw: "GET /index.html HTTP/1.0"},
		},
		{
			line: "GET\t/a   HTTP/1.1\n",
			want: RequestLine{Method: "GET", Target: "/a", Version: "HTTP/1.1", Raw: "GET\t/a   HTTP/1.1"},
		},
		{
			line: "GET /a HTTP/1.1 trailing junk\r\n",
			want: RequestLine{Method: "GET", Target: "/a", Version: "HTTP/1.1", Raw: "GET /a HTTP/1.1 trailing junk"},
		},
		{
			line: "GET /only-two\r\n",
			want: RequestLine{Method: "GET", Target: "/only-two", Raw: "GET /only-two"},
		},
		{
			line: "\r\n",
			want: RequestLine{},
		},
		{
			line: "GET / HTTP/1.0",
			want: RequestLine{Method: "GET", Target: "/", Version: "HTTP/1.0", Raw: "GET / HTTP/1.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.want.Raw, func(t *testing.T) {
			if got := ParseRequestLine(tt.line); got != tt.want {
				t.Errorf("ParseRequestLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestReadRequestLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("GET / HTTP/1.0\r\nHost: x\r\n"))
	line, err := readRequestLine(r, 8192)
	if err != nil || line != "GET / HTTP/1.0\r\n" {
		t.Errorf("readRequestLine() = %q, %v", line, err)
	}

	r = bufio.NewReader(strings.NewReader(strings.Repeat("a", 100)))
	line, err = readRequestLine(r, 10)
	if err != nil || line != strings.Repeat("a", 10) {
		t.Errorf("bounded readRequestLine() = %q, %v", line, err)
	}

	r = bufio.NewReader(strings.NewReader("GET / HTTP/1.0"))
	line, err = readRequestLine(r, 8192)
	if err != io.EOF || line != "GET / HTTP/1.0" {
		t.Errorf("unterminated readRequestLine() = %q, %v", line, err)
	}

	r = bufio.NewReader(strings.NewReader(""))
	if line, err = readRequestLine(r, 8192); err != io.EOF || line != "" {
		t.Errorf("empty readRequestLine() = %q, %v", line, err)
	}
}

package gateway

import (
	"fmt"
	"io"
	"net/http"

	mdberrors "mdbgw/internal/errors"
)

// Status lines the gateway can answer with.
var (
	StatusOK             = statusText(http.StatusOK)
	StatusBadRequest     = statusText(http.StatusBadRequest)
	StatusForbidden      = statusText(http.StatusForbidden)
	StatusNotFound       = statusText(http.StatusNotFound)
	StatusNotImplemented = statusText(http.StatusNotImplemented)
)

func statusText(code int) string {
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}

// statusOf maps a validation or dispatch error to its status line.
func statusOf(err error) string {
	return statusText(mdberrors.StatusFor(mdberrors.CodeOf(err)))
}

const lookupForm = "<h1>mdb-lookup</h1>\n" +
	"<p>\n" +
	"<form method=GET action=/mdb-lookup>\n" +
	"lookup: <input type=text name=key>\n" +
	"<input type=submit>\n" +
	"</form>\n" +
	"<p>\n"

const (
	pageHead   = "<html><body>\n"
	tableOpen  = "<p><table border>\n"
	tableClose = "</table>\n</body></html>\n"
	formPage   = pageHead + lookupForm + "\n</body></html>\n"
)

// Row shading alternates by the number of rows sent in the response.
const (
	oddRowColor  = "#FEF9E7"
	evenRowColor = "#EBF5FB"
)

func writeHeader(w io.Writer, status string) error {
	_, err := io.WriteString(w, "HTTP/1.0 "+status+"\r\n\r\n")
	return err
}

func writeError(w io.Writer, status string) error {
	_, err := fmt.Fprintf(w, "HTTP/1.0 %s\r\n\r\n<html><body><h1>%s</h1></body></html>", status, status)
	return err
}

// tableRow renders the n-th (1-based) result row. line keeps its newline.
func tableRow(n int, line string) string {
	color := oddRowColor
	if n%2 == 0 {
		color = evenRowColor
	}
	return "<tr><td bgcolor=" + color + "> " + line + "\n"
}

package gateway

import (
	"os"
	"strings"

	mdberrors "mdbgw/internal/errors"
)

// Validate applies the request checks in order and returns the filesystem
// path the target resolves to under webRoot.
//
// The traversal check is textual only: it rejects "/../" anywhere and a
// trailing "/..", and nothing else. It does not canonicalize the path,
// collapse "//", or decode %2e sequences, and is not a sandbox.
func Validate(req RequestLine, webRoot string) (string, error) {
	if req.Method != "GET" || (req.Version != "HTTP/1.0" && req.Version != "HTTP/1.1") {
		return "", mdberrors.New(mdberrors.NotImplemented, "unsupported method or version", nil).
			WithDetails(req.Method + " " + req.Version)
	}

	target := req.Target
	if !strings.HasPrefix(target, "/") || strings.Contains(target, "/../") || strings.HasSuffix(target, "/..") {
		return "", mdberrors.New(mdberrors.BadRequest, "invalid request target", nil).WithDetails(target)
	}

	path := webRoot + target
	if strings.HasSuffix(target, "/") {
		path += "index.html"
	} else if info, err := os.Stat(webRoot + target); err == nil && info.IsDir() {
		return "", mdberrors.New(mdberrors.Forbidden, "directory requested without trailing slash", nil).WithDetails(target)
	}
	return path, nil
}

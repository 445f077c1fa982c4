package request

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

// IndexPage is served for bare-root requests
const IndexPage = "index.html"

type Request struct {
	Method  string
	Path    string // local name, leading separator stripped
	Version string
}

// Parse builds a Request from the raw bytes of one receive. Only the first
// line is looked at, headers and body are ignored. The Request owns its
// strings, raw may be reused once Parse returns.
func Parse(raw []byte) (*Request, error) {
	rl, err := Tokenize(raw)
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:  strings.Clone(rl.Method),
		Path:    strings.Clone(localPath(rl.Target)),
		Version: strings.Clone(rl.Version),
	}, nil
}

// Read performs exactly one read from r into buf and parses what arrived.
func Read(r io.Reader, buf []byte) (*Request, error) {
	n, err := r.Read(buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, ErrEmptyRequest
		}
		return nil, fmt.Errorf("read error: %w", err)
	}

	// bytes that did arrive are still worth answering
	return Parse(buf[:n])
}

// IsGet reports whether the request method is GET
func (r *Request) IsGet() bool {
	return strcomp.EqualFold(r.Method, "GET")
}

// localPath maps a request target to a name relative to the document root
func localPath(target string) string {
	if target == "" || target == "/" {
		return IndexPage
	}

	return strings.TrimPrefix(target, "/")
}

package response

import "errors"

var ErrUnknownStatus = errors.New("unknown status code")

// StatusCode represents HTTP status codes
type StatusCode int

// The server only ever answers with one of these two
const (
	StatusOK       StatusCode = 200
	StatusNotFound StatusCode = 404
)

// statusLines maps status codes to full HTTP/1.1 status lines
var statusLines = map[StatusCode]string{
	StatusOK:       "HTTP/1.1 200 OK",
	StatusNotFound: "HTTP/1.1 404 Not Found",
}

// StatusLine returns the status line without its CRLF
func (code StatusCode) StatusLine() (string, error) {
	line, ok := statusLines[code]
	if !ok {
		return "", ErrUnknownStatus
	}
	return line, nil
}

// IsSuccess returns true for 2xx status codes
func (code StatusCode) IsSuccess() bool {
	return code >= 200 && code < 300
}

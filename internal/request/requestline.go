package request

import (
	"bytes"
	"errors"

	"github.com/indigo-web/utils/uf"
)

var ErrEmptyRequest = errors.New("empty request")

// RequestLine holds the raw tokens of METHOD SP TARGET SP VERSION.
// Missing trailing tokens are left empty.
type RequestLine struct {
	Method  string
	Target  string
	Version string
}

// Tokenize splits the first line of data into request-line tokens.
// The line ends at LF (an optional CR before it is dropped) or at the end of
// data when no LF was received. Token strings share memory with data and are
// only valid while data is not reused.
func Tokenize(data []byte) (RequestLine, error) {
	line := data
	if idx := bytes.IndexByte(line, '\n'); idx != -1 {
		line = line[:idx]
	}
	line = bytes.TrimSuffix(line, []byte("\r"))

	var tokens [3]string
	n := 0
	for n < len(tokens) {
		var tok []byte
		tok, line = nextToken(line)
		if tok == nil {
			break
		}
		tokens[n] = uf.B2S(tok)
		n++
	}

	if n == 0 {
		return RequestLine{}, ErrEmptyRequest
	}

	return RequestLine{
		Method:  tokens[0],
		Target:  tokens[1],
		Version: tokens[2],
	}, nil
}

// nextToken skips leading whitespace and returns the token before the next
// whitespace along with the rest of the line. tok is nil when line has none.
func nextToken(line []byte) (tok, rest []byte) {
	start := 0
	for start < len(line) && isSpace(line[start]) {
		start++
	}
	if start == len(line) {
		return nil, nil
	}

	end := start
	for end < len(line) && !isSpace(line[end]) {
		end++
	}

	return line[start:end], line[end:]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

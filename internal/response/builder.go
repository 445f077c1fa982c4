package response

import (
	"errors"
	"strconv"
	"time"

	"github.com/Brownie44l1/webserver/internal/headers"
	"github.com/indigo-web/utils/buffer"
	"github.com/indigo-web/utils/uf"
)

const (
	// ContentType is the only media type served
	ContentType = "text/html"

	// DateLayout is the RFC 1123 layout with a literal GMT zone, as HTTP wants it
	DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

	// DefaultMaxHeadSize bounds the rendered status line and header block
	DefaultMaxHeadSize = 512
)

var ErrHeadTooLarge = errors.New("response head exceeds buffer")

var crlf = []byte("\r\n")

// FormatDate renders t as an HTTP Date value
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Builder renders response heads into a bounded buffer. A Builder is reused
// across responses and is not safe for concurrent use.
type Builder struct {
	buff    *buffer.Buffer[byte]
	headers *headers.Headers
}

// NewBuilder creates a builder whose heads never grow past maxHeadSize bytes
func NewBuilder(maxHeadSize int) *Builder {
	if maxHeadSize <= 0 {
		maxHeadSize = DefaultMaxHeadSize
	}

	return &Builder{
		buff:    buffer.NewBuffer[byte](maxHeadSize/2, maxHeadSize),
		headers: headers.NewHeaders(),
	}
}

// Build renders the status line, Content-Type, Date and Content-Length fields
// and the blank line that ends the head. The returned slice is only valid
// until the next call to Build.
func (b *Builder) Build(code StatusCode, contentLength int64, now time.Time) ([]byte, error) {
	statusLine, err := code.StatusLine()
	if err != nil {
		return nil, err
	}

	b.headers.Reset()
	b.headers.Set("Content-Type", ContentType)
	b.headers.Set("Date", FormatDate(now))
	b.headers.Set("Content-Length", strconv.FormatInt(contentLength, 10))

	b.buff.Clear()
	ok := b.buff.Append(uf.S2B(statusLine)...) && b.buff.Append(crlf...)
	for _, f := range b.headers.Fields() {
		ok = ok &&
			b.buff.Append(uf.S2B(f.Key)...) &&
			b.buff.Append(':', ' ') &&
			b.buff.Append(uf.S2B(f.Value)...) &&
			b.buff.Append(crlf...)
	}
	ok = ok && b.buff.Append(crlf...)

	if !ok {
		b.buff.Clear()
		return nil, ErrHeadTooLarge
	}

	return b.buff.Finish(), nil
}

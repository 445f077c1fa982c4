package response

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// DefaultChunkSize is the fixed transfer block used to stream bodies
const DefaultChunkSize = 4096

// NotFoundFallback is sent when the not-found page itself is missing
const NotFoundFallback = "<html><h1>404 Requesting page not found.</h1></html>"

var (
	ErrWriterState = errors.New("response written out of order")
	ErrShortBody   = errors.New("body ended before Content-Length bytes")
)

// writerState tracks what's been written so far
type writerState int

const (
	stateStart writerState = iota
	stateHeadWritten
	stateBodyWritten
)

// Writer writes a single HTTP response to an io.Writer: head first, then a
// body streamed in fixed-size blocks.
type Writer struct {
	w             io.Writer
	builder       *Builder
	chunk         []byte
	state         writerState
	statusCode    StatusCode
	contentLength int64
	written       int64
	hadError      bool
}

// NewWriter creates a response writer. chunk is the transfer buffer, its
// length is the block size used for bodies.
func NewWriter(w io.Writer, builder *Builder, chunk []byte) *Writer {
	if len(chunk) == 0 {
		chunk = make([]byte, DefaultChunkSize)
	}

	return &Writer{
		w:             w,
		builder:       builder,
		chunk:         chunk,
		state:         stateStart,
		contentLength: -1,
	}
}

// WriteHead renders and writes the response head. contentLength must be the
// exact number of bytes WriteBody will send.
func (w *Writer) WriteHead(code StatusCode, contentLength int64, now time.Time) error {
	if w.state != stateStart {
		return fmt.Errorf("%w: head already written", ErrWriterState)
	}

	head, err := w.builder.Build(code, contentLength, now)
	if err != nil {
		return err
	}

	if _, err = w.w.Write(head); err != nil {
		w.hadError = true
		return err
	}

	w.statusCode = code
	w.contentLength = contentLength
	w.state = stateHeadWritten
	return nil
}

// WriteBody copies exactly Content-Length bytes from r. Anything r holds past
// that is left unread. A reader that runs dry early yields ErrShortBody.
func (w *Writer) WriteBody(r io.Reader) error {
	if w.state != stateHeadWritten {
		return fmt.Errorf("%w: must write head before body", ErrWriterState)
	}
	w.state = stateBodyWritten

	remaining := w.contentLength
	for remaining > 0 {
		block := w.chunk
		if int64(len(block)) > remaining {
			block = block[:remaining]
		}

		n, err := r.Read(block)
		if n > 0 {
			if _, werr := w.w.Write(block[:n]); werr != nil {
				w.hadError = true
				return werr
			}
			w.written += int64(n)
			remaining -= int64(n)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if remaining > 0 {
				w.hadError = true
				return fmt.Errorf("%w: %d of %d bytes", ErrShortBody, w.written, w.contentLength)
			}
		default:
			w.hadError = true
			return err
		}
	}

	return nil
}

func (w *Writer) HadError() bool {
	return w.hadError
}

func (w *Writer) StatusCode() StatusCode {
	return w.statusCode
}

// Written returns the number of body bytes sent
func (w *Writer) Written() int64 {
	return w.written
}

package server

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Brownie44l1/webserver/internal/docroot"
	"github.com/Brownie44l1/webserver/internal/request"
	"github.com/Brownie44l1/webserver/internal/response"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// NotFoundPage is served in place of any missing file
	NotFoundPage = "404.html"

	// SentinelPage stops the server once it has been served
	SentinelPage = "exit.html"
)

// Outcome tells the accept loop whether to keep going after a connection
type Outcome int

const (
	Continue Outcome = iota
	Shutdown
)

// body is the payload picked for a response
type body struct {
	io.ReadCloser
	status response.StatusCode
	size   int64
	note   string
}

// serveConn handles the single request on conn and always closes it
func (s *Server) serveConn(conn net.Conn) (outcome Outcome) {
	start := s.now()
	ctx, span := s.tracer.Start(context.Background(), "webserver.connection")
	defer span.End()
	defer conn.Close()

	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("handler panic",
				Field{"error", r},
				Field{"stack", string(debug.Stack())},
			)
			span.SetStatus(codes.Error, "panic")
			outcome = Continue
		}
	}()

	recvBuf := s.buffers.get(s.cfg.ReceiveBufferSize)
	defer s.buffers.put(recvBuf)

	if s.cfg.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			s.Logger.Debug("set read deadline failed", Field{"error", err})
		}
	}

	req, err := request.Read(conn, recvBuf)
	if err != nil {
		s.abandon(ctx, conn, err)
		return Continue
	}

	if !req.IsGet() {
		s.Logger.Warn("non-GET request handled as GET", Field{"method", req.Method}, Field{"path", req.Path})
	}

	b := s.selectBody(req.Path)
	defer b.Close()

	shutdown := req.Path == SentinelPage && b.status == response.StatusOK
	if shutdown {
		b.note = "found and stopping the web server"
	}

	chunk := s.buffers.get(s.cfg.ChunkSize)
	defer s.buffers.put(chunk)

	if s.cfg.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			s.Logger.Debug("set write deadline failed", Field{"error", err})
		}
	}

	w := response.NewWriter(conn, s.builder, chunk)
	err = w.WriteHead(b.status, b.size, s.now())
	if err == nil {
		err = w.WriteBody(b)
	}

	duration := s.now().Sub(start)
	s.metrics.RecordRequest(ctx, b.status, w.Written(), duration)

	span.SetAttributes(
		attribute.String("webserver.path", req.Path),
		attribute.Int("http.status_code", int(b.status)),
		attribute.Int64("webserver.bytes_sent", w.Written()),
		attribute.Bool("webserver.shutdown", shutdown),
	)

	fields := []Field{
		{"path", req.Path},
		{"status", int(b.status)},
		{"outcome", b.note},
		{"bytes", w.Written()},
		{"shutting_down", shutdown},
		{"duration_ms", duration.Milliseconds()},
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "response not fully sent")
		s.Logger.Error("response failed", append(fields, Field{"error", err})...)
	} else {
		s.Logger.Info("requested page", fields...)
	}

	if shutdown {
		return Shutdown
	}
	return Continue
}

// selectBody picks the requested file, then the not-found page, then the
// built-in fallback. The size returned is what Content-Length will carry.
func (s *Server) selectBody(name string) body {
	if res := s.docs.Resolve(name); res.Found {
		if b, ok := s.openBody(res, response.StatusOK, "found and serviced"); ok {
			return b
		}
	}

	if res := s.docs.Resolve(NotFoundPage); res.Found {
		if b, ok := s.openBody(res, response.StatusNotFound, "not found and sent 404.html"); ok {
			return b
		}
	}

	return body{
		ReadCloser: io.NopCloser(strings.NewReader(response.NotFoundFallback)),
		status:     response.StatusNotFound,
		size:       int64(len(response.NotFoundFallback)),
		note:       "not found, 404.html also missing",
	}
}

func (s *Server) openBody(res docroot.Resolution, status response.StatusCode, note string) (body, bool) {
	f, err := s.docs.Open(res.Name)
	if err != nil {
		// gone between stat and open
		s.Logger.Warn("open failed after resolve", Field{"path", res.Name}, Field{"error", err})
		return body{}, false
	}

	size := res.Size
	// prefer the size of the handle we will actually read from
	if st, ok := f.(interface{ Stat() (fs.FileInfo, error) }); ok {
		if info, err := st.Stat(); err == nil {
			size = info.Size()
		}
	}

	return body{ReadCloser: f, status: status, size: size, note: note}, true
}

func (s *Server) abandon(ctx context.Context, conn net.Conn, err error) {
	s.metrics.RecordAbandoned(ctx)

	if errors.Is(err, request.ErrEmptyRequest) {
		s.Logger.Debug("empty request, connection dropped", Field{"remote", conn.RemoteAddr().String()})
		return
	}
	s.Logger.Warn("receive failed, connection dropped",
		Field{"remote", conn.RemoteAddr().String()},
		Field{"error", err},
	)
}

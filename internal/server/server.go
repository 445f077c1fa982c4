package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Brownie44l1/webserver/internal/docroot"
	"github.com/Brownie44l1/webserver/internal/response"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Brownie44l1/webserver/internal/server"

// ErrServerClosed is returned by Serve after Close
var ErrServerClosed = errors.New("server closed")

// maxAcceptDelay caps the pause between consecutive failed accepts
const maxAcceptDelay = time.Second

// Resolver is the document root as the server sees it
type Resolver interface {
	Resolve(name string) docroot.Resolution
	Open(name string) (io.ReadCloser, error)
}

type Config struct {
	Addr string

	// ReadTimeout bounds the single receive of a request
	ReadTimeout time.Duration

	// WriteTimeout bounds sending the whole response
	WriteTimeout time.Duration

	// ReceiveBufferSize is the most request bytes looked at per connection
	ReceiveBufferSize int

	// ChunkSize is the transfer block used to stream bodies
	ChunkSize int

	// MaxHeadSize bounds the rendered response head
	MaxHeadSize int
}

func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReceiveBufferSize: 4096,
		ChunkSize:         response.DefaultChunkSize,
		MaxHeadSize:       response.DefaultMaxHeadSize,
	}
}

// Server serves one connection at a time until the sentinel page is served
// or Close is called.
type Server struct {
	Logger Logger

	cfg      Config
	docs     Resolver
	listener net.Listener
	builder  *response.Builder
	buffers  *bufferPool
	metrics  *Metrics
	tracer   trace.Tracer
	now      func() time.Time

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func New(cfg Config, docs Resolver) *Server {
	def := DefaultConfig()
	if cfg.ReceiveBufferSize <= 0 {
		cfg.ReceiveBufferSize = def.ReceiveBufferSize
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.MaxHeadSize <= 0 {
		cfg.MaxHeadSize = def.MaxHeadSize
	}

	return &Server{
		Logger:  NewDefaultLogger(),
		cfg:     cfg,
		docs:    docs,
		builder: response.NewBuilder(cfg.MaxHeadSize),
		buffers: newBufferPool(),
		metrics: NewMetrics(),
		tracer:  otel.Tracer(instrumentationName),
		now:     time.Now,
	}
}

// Listen binds the IPv4 listening socket
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp4", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	s.listener = ln
	return nil
}

// Addr returns the bound address, nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Serve accepts and handles connections in order, one at a time. It returns
// nil once the sentinel page has been served, ErrServerClosed after Close.
// The listener is released on return either way.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server: Serve called before Listen")
	}
	defer s.closeListener()

	s.Logger.Info("web server started", Field{"addr", s.listener.Addr().String()})

	var delay time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}

			delay = nextAcceptDelay(delay)
			s.Logger.Error("accept failed", Field{"error", err}, Field{"retry_in", delay})
			time.Sleep(delay)
			continue
		}
		delay = 0

		if s.serveConn(conn) == Shutdown {
			s.Logger.Info("stopping the web server", Field{"addr", s.listener.Addr().String()})
			return nil
		}
	}
}

// Close stops Serve. Connections still waiting in the backlog are dropped.
func (s *Server) Close() error {
	s.closed.Store(true)
	return s.closeListener()
}

// Stats returns a snapshot of the server metrics
func (s *Server) Stats() MetricsSnapshot {
	return s.metrics.Snapshot()
}

func (s *Server) closeListener() error {
	s.closeOnce.Do(func() {
		if s.listener != nil {
			s.closeErr = s.listener.Close()
		}
	})
	return s.closeErr
}

func nextAcceptDelay(delay time.Duration) time.Duration {
	if delay == 0 {
		return 5 * time.Millisecond
	}

	delay *= 2
	if delay > maxAcceptDelay {
		delay = maxAcceptDelay
	}
	return delay
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brownie44l1/webserver/internal/config"
	"github.com/Brownie44l1/webserver/internal/docroot"
	"github.com/Brownie44l1/webserver/internal/server"
	"github.com/Brownie44l1/webserver/internal/telemetry"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const name = "github.com/Brownie44l1/webserver"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "webserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 0, "TCP port to listen on (falls back to $PORT, then a prompt)")
	flag.Parse()

	cfg, err := loadConfig(*port)
	if err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Setup(context.Background())
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
		}
	}()

	docs, err := docroot.Open(".")
	if err != nil {
		return err
	}
	defer docs.Close()

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.ServerAddress()

	srv := server.New(srvCfg, docs)
	if telemetry.Enabled() {
		srv.Logger = server.MultiLogger(srv.Logger, server.NewSlogLogger(otelslog.NewLogger(name)))
	}

	if err := srv.Listen(); err != nil {
		return err
	}

	if addr, ok := srv.Addr().(*net.TCPAddr); ok {
		fmt.Printf("Web server started, listening on port %d\n", addr.Port)
	}

	// Ctrl-C closes the listener, Serve then returns ErrServerClosed
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	stopped := closeOnSignal(sigChan, done, srv)

	err = srv.Serve()
	close(done)
	<-stopped
	if err != nil && !errors.Is(err, server.ErrServerClosed) {
		return err
	}

	stats := srv.Stats()
	fmt.Printf("Final stats:\n")
	fmt.Printf("   Requests: %d (found %d, not found %d)\n", stats.RequestsTotal, stats.Found, stats.NotFound)
	fmt.Printf("   Abandoned connections: %d\n", stats.Abandoned)
	fmt.Printf("   Bytes sent: %d\n", stats.BytesSent)
	fmt.Printf("   Average latency: %s\n", stats.AverageLatency)
	fmt.Println("Web server stopped")

	return nil
}

// closeOnSignal closes c on the first signal. It gives up once done is
// closed, the returned channel is closed when it has returned.
func closeOnSignal(sig <-chan os.Signal, done <-chan struct{}, c io.Closer) <-chan struct{} {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-sig:
			c.Close()
		case <-done:
		}
	}()
	return stopped
}

// loadConfig takes the port from the flag, then $PORT, then asks on stdin
func loadConfig(flagPort int) (*config.Config, error) {
	cfg := &config.Config{Port: flagPort}

	if cfg.Port == 0 {
		env, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = env
	}

	if cfg.Port == 0 {
		port, err := config.PromptPort(os.Stdin, os.Stdout)
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

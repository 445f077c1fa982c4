package main

import (
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/Brownie44l1/webserver/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigPrefersFlag(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg, err := loadConfig(9090)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")

	cfg, err := loadConfig(0)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "")

	_, err := loadConfig(70000)
	assert.ErrorIs(t, err, config.ErrInvalidPort)

	_, err = loadConfig(-1)
	assert.ErrorIs(t, err, config.ErrInvalidPort)
}

type countingCloser struct {
	closed atomic.Int32
}

func (c *countingCloser) Close() error {
	c.closed.Add(1)
	return nil
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("signal goroutine did not return")
	}
}

func TestCloseOnSignal(t *testing.T) {
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	c := &countingCloser{}

	stopped := closeOnSignal(sig, done, c)
	sig <- syscall.SIGINT
	waitClosed(t, stopped)
	assert.Equal(t, int32(1), c.closed.Load())
}

func TestCloseOnSignalReturnsWhenDone(t *testing.T) {
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	c := &countingCloser{}

	stopped := closeOnSignal(sig, done, c)
	close(done)
	waitClosed(t, stopped)
	assert.Zero(t, c.closed.Load())
}

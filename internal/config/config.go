// Package config resolves the process-level settings of the web server.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrInvalidPort = errors.New("invalid port")

// Config holds the settings taken from the command line or environment
type Config struct {
	// Port is the TCP port to listen on, 0 when not yet known
	Port int
}

// Load reads settings from the environment. A missing PORT leaves Port at 0
// so the caller can fall back to another source.
func Load() (*Config, error) {
	cfg := &Config{}

	if value := os.Getenv("PORT"); value != "" {
		port, err := ParsePort(value)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Validate checks the port range
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}

	return nil
}

// ServerAddress returns the listen address for all IPv4 interfaces
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParsePort converts s to a port number in 1..65535
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}

	cfg := Config{Port: port}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	return port, nil
}

// PromptPort asks for a port on w and reads one line from r
func PromptPort(r io.Reader, w io.Writer) (int, error) {
	if _, err := io.WriteString(w, "Port: "); err != nil {
		return 0, err
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return 0, fmt.Errorf("read port: %w", err)
	}

	return ParsePort(line)
}

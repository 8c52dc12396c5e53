package httpserver

import (
	"log/slog"
	"time"
)

// Option configures a Server.
type Option func(*settings)

// WithAddr sets the listen address. Use "127.0.0.1:0" for a random port and
// read it back with Server.Addr.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: empty address")
	}
	return func(s *settings) { s.addr = addr }
}

func WithReadTimeout(d time.Duration) Option {
	return func(s *settings) { s.readTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *settings) { s.writeTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(s *settings) { s.idleTimeout = d }
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests once
// its context is done.
func WithShutdownTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("httpserver: shutdown timeout must be positive")
	}
	return func(s *settings) { s.shutdownTimeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

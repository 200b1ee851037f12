package server

import (
	"net"
	"net/http"
	"time"

	"wardrobe/internal/config"
)

// New builds the HTTP server with the configured timeouts. Zero timeouts
// fall back to 15s read, 60s write and 60s idle.
func New(host, port string, handler http.Handler, cfg *config.ServerConfig) *http.Server {
	readTimeout, writeTimeout, idleTimeout := 15*time.Second, 60*time.Second, 60*time.Second
	if cfg != nil {
		if cfg.ReadTimeout > 0 {
			readTimeout = cfg.ReadTimeout
		}
		if cfg.WriteTimeout > 0 {
			writeTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			idleTimeout = cfg.IdleTimeout
		}
	}

	return &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

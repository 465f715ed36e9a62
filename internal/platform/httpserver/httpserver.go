// Package httpserver builds the process HTTP server.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"bloodlink/internal/platform/config"
)

// New returns a server for cfg.Addr. Server-level errors (TLS handshakes,
// malformed requests) go to logger at warn level.
func New(cfg config.Server, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Certificate rendering runs inside the lab-result request.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}
	return srv
}

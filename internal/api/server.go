// Package api serves stored flights and rendered plots over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/plotting"
	"github.com/banshee-data/trajectory.report/internal/store"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// ANSI escape codes for request logs.
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// FlightStore is the part of store.Store the server uses.
type FlightStore interface {
	ListFlights(ctx context.Context) ([]store.Flight, error)
	GetFlight(ctx context.Context, id string) (store.Flight, error)
	DeleteFlight(ctx context.Context, id string) error
	LoadTrajectories(ctx context.Context, ids []string) ([]trajectory.Trajectory, error)
	Ping(ctx context.Context) error
}

// Server handles the HTTP API.
type Server struct {
	store   FlightStore
	cfg     *config.PlotConfig
	plotter *plotting.Plotter
}

// NewServer returns a server reading from st and plotting with cfg. A nil
// cfg uses the defaults.
func NewServer(st FlightStore, cfg *config.PlotConfig) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultPlotConfig()
	}
	p, err := plotting.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{store: st, cfg: cfg, plotter: p}, nil
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux registers every route.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/flights", s.listFlights)
	mux.HandleFunc("GET /api/flights/{id}", s.showFlight)
	mux.HandleFunc("DELETE /api/flights/{id}", s.deleteFlight)
	mux.HandleFunc("GET /api/config", s.showConfig)
	mux.HandleFunc("GET /plots/{target}", s.plot)
	mux.HandleFunc("GET /healthz", s.healthz)
	return mux
}

// Handler is the mux wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.ServeMux())
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	monitoring.Logf("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

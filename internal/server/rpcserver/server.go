package rpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/yndnr/remotebean-go/internal/infra/buildinfo"
	"github.com/yndnr/remotebean-go/internal/server/container"
	"github.com/yndnr/remotebean-go/internal/telemetry/metric"
)

// Config configures the RPC server.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:7080".
	Addr string

	// RateLimit is the number of calls per second the server accepts.
	// Zero disables rate limiting.
	RateLimit float64
	RateBurst int

	Metrics *metric.Registry
	Logger  *slog.Logger
}

// Server serves a container over HTTP.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
	directory  *container.Directory
	started    time.Time
}

type healthStatus struct {
	Status      string   `json:"status"`
	Version     string   `json:"version"`
	Uptime      string   `json:"uptime"`
	Deployments []string `json:"deployments"`
}

// New creates a server for c.
func New(cfg Config, c *container.Container) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.Global()
	}

	s := &Server{
		logger:    cfg.Logger,
		directory: c.Directory(),
		started:   time.Now(),
	}

	if err := cfg.Metrics.Register(metric.NewCollector(c.Sessions().Stats)); err != nil {
		cfg.Logger.Warn("session gauges not registered", "error", err)
	}

	mux := http.NewServeMux()
	NewHandler(c, cfg.Logger).Register(mux,
		connect.WithInterceptors(DefaultInterceptors(cfg.Logger, cfg.RateLimit, cfg.RateBurst)...))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", cfg.Metrics.Handler())

	s.handler = mux
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("rpc server listening", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	st := healthStatus{
		Status:      "healthy",
		Version:     buildinfo.Version,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		Deployments: []string{},
	}
	for _, d := range s.directory.Deployments() {
		st.Deployments = append(st.Deployments, d.Application+"/"+d.Module+"/"+d.Distinct)
	}
	_ = json.NewEncoder(w).Encode(st)
}

// Package testserver starts an in-process remotebean server for tests.
package testserver

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/server/container"
	"github.com/yndnr/remotebean-go/internal/server/deployment"
	"github.com/yndnr/remotebean-go/internal/server/rpcserver"
	"github.com/yndnr/remotebean-go/internal/telemetry/metric"
)

// Options configures a test server.
type Options struct {
	Container  container.Config
	Deployment contract.Location
	// Extra deployments are deployed after the builtin one.
	Extra []*container.Deployment
	// ContainerOptions are passed to container.New.
	ContainerOptions []container.Option
}

// Server is a running test server.
type Server struct {
	URL        string
	Container  *container.Container
	Deployment contract.Location
	Metrics    *metric.Registry

	http *httptest.Server
}

// Start deploys the builtin module and serves it until the test ends.
func Start(tb testing.TB, opts Options) *Server {
	tb.Helper()

	if opts.Container == (container.Config{}) {
		opts.Container = container.DefaultConfig()
	}
	if opts.Deployment == (contract.Location{}) {
		opts.Deployment = contract.DefaultLocation()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := metric.NewRegistry()

	copts := append([]container.Option{
		container.WithLogger(logger),
		container.WithMetrics(metrics),
	}, opts.ContainerOptions...)
	c := container.New(opts.Container, copts...)

	if err := c.Deploy(deployment.Builtin(opts.Deployment)); err != nil {
		tb.Fatalf("deploy builtin module: %v", err)
	}
	for _, dep := range opts.Extra {
		if err := c.Deploy(dep); err != nil {
			tb.Fatalf("deploy %s: %v", dep.Module, err)
		}
	}

	srv := rpcserver.New(rpcserver.Config{Logger: logger, Metrics: metrics}, c)
	hs := httptest.NewServer(srv.Handler())
	tb.Cleanup(hs.Close)

	return &Server{
		URL:        hs.URL,
		Container:  c,
		Deployment: opts.Deployment,
		Metrics:    metrics,
		http:       hs,
	}
}

// Close stops the server before the test ends, to simulate an outage.
func (s *Server) Close() {
	s.http.Close()
}

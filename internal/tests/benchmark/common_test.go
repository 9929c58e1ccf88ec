package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/server/container"
	"github.com/yndnr/remotebean-go/internal/server/deployment"
	"github.com/yndnr/remotebean-go/internal/telemetry/metric"
)

// SessionCounts defines the preloaded session counts for benchmarking.
var SessionCounts = []int{1000, 10000, 50000}

var (
	calculatorKey = contract.DefaultLocation().Calculator().Key().String()
	counterKey    = contract.DefaultLocation().Counter().Key().String()
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newContainer returns a container with the builtin deployment and an idle
// timeout long enough that no session expires during a run.
func newContainer(b *testing.B, opts ...container.Option) *container.Container {
	b.Helper()
	cfg := container.DefaultConfig()
	cfg.Session.IdleTimeout = time.Hour
	cfg.Session.PassivateAfter = 0

	opts = append([]container.Option{
		container.WithLogger(discardLogger()),
		container.WithMetrics(metric.NewRegistry()),
	}, opts...)
	c := container.New(cfg, opts...)
	if err := c.Deploy(deployment.Builtin(contract.DefaultLocation())); err != nil {
		b.Fatalf("Deploy failed: %v", err)
	}
	return c
}

// prefillSessions opens count Counter sessions and returns their IDs.
func prefillSessions(ctx context.Context, b *testing.B, c *container.Container, count int) []string {
	b.Helper()
	ids := make([]string, count)
	for i := range ids {
		_, id, err := c.CreateSession(ctx, counterKey)
		if err != nil {
			b.Fatalf("CreateSession failed: %v", err)
		}
		ids[i] = id
	}
	return ids
}

// reportMemory reports heap usage after a forced GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithSessionCounts runs benchFn once per preload size.
func runWithSessionCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("sessions_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

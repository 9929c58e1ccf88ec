package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/yndnr/remotebean-go/internal/infra/buildinfo"
	"github.com/yndnr/remotebean-go/internal/infra/confloader"
	"github.com/yndnr/remotebean-go/internal/infra/shutdown"
	"github.com/yndnr/remotebean-go/internal/server/config"
	"github.com/yndnr/remotebean-go/internal/server/container"
	"github.com/yndnr/remotebean-go/internal/server/deployment"
	"github.com/yndnr/remotebean-go/internal/server/rpcserver"
	"github.com/yndnr/remotebean-go/internal/storage"
	"github.com/yndnr/remotebean-go/internal/telemetry/logger"
	"github.com/yndnr/remotebean-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		addr        = flag.String("addr", "", "Listen address (overrides server.addr)")
		logLevel    = flag.String("log-level", "", "Log level (overrides log.level)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("remotebean-server %s\n", buildinfo.String())
		return nil
	}

	overrides := make(map[string]any)
	if *addr != "" {
		overrides["server.addr"] = *addr
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}

	cfg, loader, err := config.Load(*configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lc := cfg.LoggerConfig()
	lc.Output = os.Stdout
	log, err := logger.New(lc)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting remotebean-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", loader.FilePath())

	sc := cfg.StorageConfig()
	sc.Logger = log
	pasv, err := storage.Open(sc)
	if err != nil {
		return fmt.Errorf("open passivation store: %w", err)
	}

	metrics := metric.Global()
	c := container.New(cfg.ContainerConfig(),
		container.WithLogger(log),
		container.WithMetrics(metrics),
		container.WithPassivation(pasv))
	if err := c.Deploy(deployment.Builtin(cfg.Deployment)); err != nil {
		pasv.Close()
		return fmt.Errorf("deploy: %w", err)
	}

	srv := rpcserver.New(rpcserver.Config{
		Addr:      cfg.Server.Addr,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Metrics:   metrics,
		Logger:    log,
	}, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		c.Run(ctx)
	}()

	// Hooks run in reverse: server, sweeper, watcher, store.
	h := shutdown.NewHandler(cfg.Server.ShutdownTimeout)
	h.SetLogger(log)
	h.OnShutdown("passivation store", func(context.Context) error {
		return pasv.Close()
	})

	if path := loader.FilePath(); path != "" {
		w, err := watchConfig(path, loader, c, log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			h.OnShutdown("config watcher", func(context.Context) error {
				return w.Stop()
			})
		}
	}

	h.OnShutdown("session sweeper", func(ctx context.Context) error {
		cancel()
		select {
		case <-sweepDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	h.OnShutdown("rpc server", srv.Shutdown)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Error("rpc server error", "error", err)
			h.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := h.Wait(context.Background()); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// watchConfig re-applies log.level and session timing when the config
// file changes. Other settings need a restart.
func watchConfig(path string, loader *confloader.Loader, c *container.Container, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := config.Reload(loader)
		if err != nil {
			log.Error("config reload rejected", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		c.SetSessionConfig(cfg.SessionConfig())
		log.Info("configuration reloaded",
			"log_level", cfg.Log.Level,
			"idle_timeout", cfg.Session.IdleTimeout,
			"passivate_after", cfg.Session.PassivateAfter)
	})
	w.StartAsync()
	return w, nil
}

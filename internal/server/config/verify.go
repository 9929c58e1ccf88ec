package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/yndnr/remotebean-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifySession(&cfg.Session); err != nil {
		return err
	}
	if err := verifyPassivation(&cfg.Passivation); err != nil {
		return err
	}
	if cfg.Pool.Size < 1 {
		return errors.New("pool.size must be at least 1")
	}
	if cfg.Deployment.Module == "" {
		return errors.New("deployment.module is required")
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unsupported format %q", cfg.Log.Format)
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.addr: %w", err)
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		return errors.New("server.rate_burst must be at least 1 when rate limiting")
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	return nil
}

func verifySession(cfg *SessionSection) error {
	if cfg.IdleTimeout <= 0 {
		return errors.New("session.idle_timeout must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return errors.New("session.sweep_interval must be positive")
	}
	if cfg.PassivateAfter < 0 {
		return errors.New("session.passivate_after must not be negative")
	}
	if cfg.PassivateAfter >= cfg.IdleTimeout {
		return errors.New("session.passivate_after must be shorter than session.idle_timeout")
	}
	return nil
}

func verifyPassivation(cfg *PassivationSection) error {
	if cfg.InMemory {
		return nil
	}
	if cfg.Dir == "" {
		return errors.New("passivation.dir is required unless passivation.in_memory is set")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return fmt.Errorf("cannot create passivation directory: %w", err)
	}
	return nil
}

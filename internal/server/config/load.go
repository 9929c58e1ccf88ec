package config

import (
	"fmt"

	"github.com/yndnr/remotebean-go/internal/infra/confloader"
	"github.com/yndnr/remotebean-go/internal/server/container"
	"github.com/yndnr/remotebean-go/internal/storage"
	"github.com/yndnr/remotebean-go/internal/telemetry/logger"
)

// Load builds a verified configuration from defaults, the optional file at
// path, REMOTEBEAN_ environment variables and overrides, in that order.
func Load(path string, overrides map[string]any) (*ServerConfig, *confloader.Loader, error) {
	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	cfg := Default()
	if err := l.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, l, nil
}

// Reload re-reads every source of l. The result is verified before it is
// returned so a broken edit never reaches running components.
func Reload(l *confloader.Loader) (*ServerConfig, error) {
	cfg := Default()
	if err := l.Reload(cfg); err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ContainerConfig returns the container settings.
func (c *ServerConfig) ContainerConfig() container.Config {
	return container.Config{
		PoolSize:      c.Pool.Size,
		SweepInterval: c.Session.SweepInterval,
		Session:       c.SessionConfig(),
	}
}

// SessionConfig returns the settings that may change at runtime.
func (c *ServerConfig) SessionConfig() container.SessionConfig {
	return container.SessionConfig{
		IdleTimeout:    c.Session.IdleTimeout,
		PassivateAfter: c.Session.PassivateAfter,
	}
}

// StorageConfig returns the passivation store settings.
func (c *ServerConfig) StorageConfig() storage.Config {
	sc := storage.DefaultConfig()
	sc.InMemory = c.Passivation.InMemory
	sc.Dir = c.Passivation.Dir
	return sc
}

// LoggerConfig returns the logger settings.
func (c *ServerConfig) LoggerConfig() logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	return lc
}

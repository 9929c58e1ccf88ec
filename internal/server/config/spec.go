package config

import (
	"time"

	"github.com/yndnr/remotebean-go/internal/core/contract"
)

// ServerConfig is the root configuration for remotebean-server.
type ServerConfig struct {
	Server      ServerSection      `koanf:"server"`
	Session     SessionSection     `koanf:"session"`
	Passivation PassivationSection `koanf:"passivation"`
	Pool        PoolSection        `koanf:"pool"`
	Deployment  contract.Location  `koanf:"deployment"`
	Log         LogSection         `koanf:"log"`
}

// ServerSection configures the RPC endpoint.
type ServerSection struct {
	Addr string `koanf:"addr"`

	// RateLimit is the accepted calls per second. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SessionSection configures stateful session lifecycle.
type SessionSection struct {
	IdleTimeout    time.Duration `koanf:"idle_timeout"`
	PassivateAfter time.Duration `koanf:"passivate_after"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`
}

// PassivationSection configures the store for idle session state.
type PassivationSection struct {
	Dir      string `koanf:"dir"`
	InMemory bool   `koanf:"in_memory"`
}

// PoolSection configures stateless instance pools.
type PoolSection struct {
	Size int `koanf:"size"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

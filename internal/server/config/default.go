package config

import (
	"time"

	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/server/container"
)

// Default configuration values.
const (
	DefaultAddr            = "127.0.0.1:7080"
	DefaultRateLimit       = 0
	DefaultRateBurst       = 100
	DefaultShutdownTimeout = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:            DefaultAddr,
			RateLimit:       DefaultRateLimit,
			RateBurst:       DefaultRateBurst,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Session: SessionSection{
			IdleTimeout:    container.DefaultIdleTimeout,
			PassivateAfter: container.DefaultPassivateAfter,
			SweepInterval:  container.DefaultSweepInterval,
		},
		Passivation: PassivationSection{
			InMemory: true,
		},
		Pool: PoolSection{
			Size: container.DefaultPoolSize,
		},
		Deployment: contract.DefaultLocation(),
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yndnr/remotebean-go/internal/cli/output"
	"github.com/yndnr/remotebean-go/internal/client/remoting"
	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/infra/confloader"
	"github.com/yndnr/remotebean-go/internal/scenario"
	"github.com/yndnr/remotebean-go/internal/telemetry/logger"
)

// ClientConfig is the configuration for remotebean-client.
type ClientConfig struct {
	Server     string            `koanf:"server"`
	Timeout    time.Duration     `koanf:"timeout"`
	Lookup     LookupSection     `koanf:"lookup"`
	Scenario   ScenarioSection   `koanf:"scenario"`
	Deployment contract.Location `koanf:"deployment"`
	Output     string            `koanf:"output"`
	Log        LogSection        `koanf:"log"`
}

// LookupSection configures lookup retries.
type LookupSection struct {
	Attempts       int           `koanf:"attempts"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff"`
}

// ScenarioSection configures the demo scenarios.
type ScenarioSection struct {
	Iterations int `koanf:"iterations"`
}

// LogSection configures diagnostic logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the default client configuration.
func Default() *ClientConfig {
	return &ClientConfig{
		Server:  remoting.DefaultServer,
		Timeout: remoting.DefaultTimeout,
		Lookup: LookupSection{
			Attempts:       remoting.DefaultLookupAttempts,
			InitialBackoff: remoting.DefaultInitialBackoff,
			MaxBackoff:     remoting.DefaultMaxBackoff,
		},
		Scenario: ScenarioSection{
			Iterations: scenario.DefaultIterations,
		},
		Deployment: contract.DefaultLocation(),
		Output:     string(output.FormatText),
		Log: LogSection{
			Level:  "warn",
			Format: "text",
		},
	}
}

// DefaultConfigPath returns the default client config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".remotebean", "client.yaml")
}

// Load merges defaults, the config file, the environment and overrides.
// An empty path reads DefaultConfigPath when that file exists; an explicit
// path must exist.
func Load(path string, overrides map[string]any) (*ClientConfig, error) {
	if path == "" {
		if p := DefaultConfigPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	cfg := Default()
	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Verify validates the configuration.
func Verify(cfg *ClientConfig) error {
	u, err := url.Parse(withScheme(cfg.Server))
	if err != nil || u.Host == "" {
		return fmt.Errorf("server: invalid address %q", cfg.Server)
	}
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if cfg.Lookup.Attempts < 1 {
		return errors.New("lookup.attempts must be at least 1")
	}
	if cfg.Lookup.InitialBackoff < 0 || cfg.Lookup.MaxBackoff < cfg.Lookup.InitialBackoff {
		return errors.New("lookup backoff must satisfy 0 <= initial_backoff <= max_backoff")
	}
	if cfg.Scenario.Iterations < 1 {
		return errors.New("scenario.iterations must be at least 1")
	}
	if cfg.Deployment.Module == "" {
		return errors.New("deployment.module is required")
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// RemotingConfig returns the client transport settings.
func (c *ClientConfig) RemotingConfig() remoting.Config {
	rc := remoting.DefaultConfig()
	rc.Server = c.Server
	rc.Timeout = c.Timeout
	rc.LookupAttempts = c.Lookup.Attempts
	rc.InitialBackoff = c.Lookup.InitialBackoff
	rc.MaxBackoff = c.Lookup.MaxBackoff
	return rc
}

// ScenarioConfig returns the scenario runner settings.
func (c *ClientConfig) ScenarioConfig() scenario.Config {
	return scenario.Config{
		Location:   c.Deployment,
		Iterations: c.Scenario.Iterations,
	}
}

func withScheme(s string) string {
	if strings.Contains(s, "://") {
		return s
	}
	return "http://" + s
}

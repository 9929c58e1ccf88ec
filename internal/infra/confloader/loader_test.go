package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		Addr      string `koanf:"addr"`
		RateLimit int    `koanf:"rate_limit"`
	} `koanf:"server"`
	Session struct {
		IdleTimeout time.Duration `koanf:"idle_timeout"`
	} `koanf:"session"`
	Debug bool `koanf:"debug"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(WithEnvPrefix("TEST_"), WithConfigFile("/path/to/config.yaml"))
	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.FilePath() != "/path/to/config.yaml" {
		t.Errorf("FilePath() = %q", l.FilePath())
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"REMOTEBEAN_SERVER_ADDR", "server.addr"},
		{"REMOTEBEAN_SESSION_IDLE_TIMEOUT", "session.idle_timeout"},
		{"REMOTEBEAN_LOOKUP_INITIAL_BACKOFF", "lookup.initial_backoff"},
		{"REMOTEBEAN_TIMEOUT", "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnvKey(DefaultEnvPrefix, tt.name); got != tt.want {
				t.Errorf("EnvKey(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "0.0.0.0:7080"
  rate_limit: 50
session:
  idle_timeout: 90s
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if addr := l.GetString("server.addr"); addr != "0.0.0.0:7080" {
		t.Errorf("server.addr = %q", addr)
	}
	if n := l.GetInt("server.rate_limit"); n != 50 {
		t.Errorf("server.rate_limit = %d", n)
	}
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("REMOTEBEAN_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("REMOTEBEAN_SESSION_IDLE_TIMEOUT", "2m")
	t.Setenv("OTHER_SERVER_ADDR", "ignored")

	var cfg testConfig
	if err := NewLoader().Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Session.IdleTimeout != 2*time.Minute {
		t.Errorf("Session.IdleTimeout = %v, want 2m", cfg.Session.IdleTimeout)
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER_ADDR", "localhost:1")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if addr := l.GetString("server.addr"); addr != "localhost:1" {
		t.Errorf("server.addr = %q", addr)
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"server.addr": "localhost:3000", "debug": true}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if addr := l.GetString("server.addr"); addr != "localhost:3000" {
		t.Errorf("server.addr = %q", addr)
	}
	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
	if len(l.Keys()) < 2 || len(l.All()) < 2 {
		t.Errorf("Keys() = %v", l.Keys())
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "from-file:1"
  rate_limit: 10
session:
  idle_timeout: 30s
`)
	t.Setenv("REMOTEBEAN_SERVER_ADDR", "from-env:2")

	l := NewLoader(
		WithConfigFile(path),
		WithOverrides(map[string]any{"server.rate_limit": 99}),
	)

	var cfg testConfig
	cfg.Debug = true
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "from-env:2" {
		t.Errorf("Addr = %q, env should override file", cfg.Server.Addr)
	}
	if cfg.Server.RateLimit != 99 {
		t.Errorf("RateLimit = %d, override should win", cfg.Server.RateLimit)
	}
	if cfg.Session.IdleTimeout != 30*time.Second {
		t.Errorf("IdleTimeout = %v", cfg.Session.IdleTimeout)
	}
	if !cfg.Debug {
		t.Error("preset default was cleared")
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_Reload(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: first:1\n")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("session:\n  idle_timeout: 1m\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var next testConfig
	if err := l.Reload(&next); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if next.Server.Addr != "" {
		t.Errorf("Addr = %q, stale value survived reload", next.Server.Addr)
	}
	if next.Session.IdleTimeout != time.Minute {
		t.Errorf("IdleTimeout = %v", next.Session.IdleTimeout)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/remotebean-go/internal/client/remoting"
	"github.com/yndnr/remotebean-go/internal/core/contract"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server != remoting.DefaultServer {
		t.Errorf("Server = %q, want %q", cfg.Server, remoting.DefaultServer)
	}
	if cfg.Output != "text" {
		t.Errorf("Output = %q, want text", cfg.Output)
	}
	if cfg.Scenario.Iterations != 20 {
		t.Errorf("Scenario.Iterations = %d, want 20", cfg.Scenario.Iterations)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := filepath.Join(home, ".remotebean", "client.yaml")
	if got := DefaultConfigPath(); got != want {
		t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr string
	}{
		{"bare host", func(c *ClientConfig) { c.Server = "localhost:7080" }, ""},
		{"empty server", func(c *ClientConfig) { c.Server = "" }, "server"},
		{"zero timeout", func(c *ClientConfig) { c.Timeout = 0 }, "timeout"},
		{"zero attempts", func(c *ClientConfig) { c.Lookup.Attempts = 0 }, "lookup.attempts"},
		{"backoff order", func(c *ClientConfig) { c.Lookup.MaxBackoff = time.Millisecond }, "backoff"},
		{"zero iterations", func(c *ClientConfig) { c.Scenario.Iterations = 0 }, "iterations"},
		{"no application", func(c *ClientConfig) { c.Deployment.Application = "" }, ""},
		{"no module", func(c *ClientConfig) { c.Deployment.Module = "" }, "deployment.module"},
		{"bad output", func(c *ClientConfig) { c.Output = "table" }, "output"},
		{"bad level", func(c *ClientConfig) { c.Log.Level = "chatty" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Verify() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "client.yaml")
	content := `
server: http://beans.example:7080
lookup:
  attempts: 5
scenario:
  iterations: 3
deployment:
  distinct: blue
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REMOTEBEAN_LOOKUP_MAX_BACKOFF", "5s")

	cfg, err := Load(path, map[string]any{"output": "json"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server != "http://beans.example:7080" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if cfg.Lookup.Attempts != 5 || cfg.Lookup.MaxBackoff != 5*time.Second {
		t.Errorf("Lookup = %+v", cfg.Lookup)
	}
	if cfg.Lookup.InitialBackoff != remoting.DefaultInitialBackoff {
		t.Errorf("InitialBackoff = %v, default lost", cfg.Lookup.InitialBackoff)
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q, flag override lost", cfg.Output)
	}

	rc := cfg.RemotingConfig()
	if rc.Server != cfg.Server || rc.LookupAttempts != 5 {
		t.Errorf("RemotingConfig() = %+v", rc)
	}
	sc := cfg.ScenarioConfig()
	want := contract.DefaultLocation()
	want.Distinct = "blue"
	if sc.Location != want || sc.Iterations != 3 {
		t.Errorf("ScenarioConfig() = %+v", sc)
	}
}

func TestLoad_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() without a file error = %v", err)
	}
	if cfg.Server != remoting.DefaultServer {
		t.Errorf("Server = %q", cfg.Server)
	}

	dir := filepath.Join(home, ".remotebean")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "client.yaml"), []byte("timeout: 3s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, default file not read", cfg.Timeout)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load("/nonexistent/client.yaml", nil); err == nil {
		t.Fatal("Load() should fail for a missing explicit file")
	}
}

func TestLoad_NoFileEmptyApplication(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Deployment != contract.DefaultLocation() {
		t.Errorf("Deployment = %+v, want %+v", cfg.Deployment, contract.DefaultLocation())
	}
	if cfg.Deployment.Application != "" {
		t.Errorf("Deployment.Application = %q, want empty", cfg.Deployment.Application)
	}
}

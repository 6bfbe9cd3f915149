package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  manager_id: "100"
  rate_per_second: 10
server:
  address: ":9000"
storage:
  backend: sqlite
  path: /tmp/projects.db
workflow:
  session_ttl: 5m
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Telegram.Token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.ManagerID != "100" {
		t.Errorf("Telegram.ManagerID = %q", cfg.Telegram.ManagerID)
	}
	if cfg.Server.Address != ":9000" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Path != "/tmp/projects.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Workflow.SessionTTL != 5*time.Minute {
		t.Errorf("Workflow.SessionTTL = %v, want 5m", cfg.Workflow.SessionTTL)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  manager_id: "100"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Address != ":8443" {
		t.Errorf("Server.Address = %q, want :8443 (default)", cfg.Server.Address)
	}
	if cfg.Storage.Backend != "json" {
		t.Errorf("Storage.Backend = %q, want json (default)", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "data/projects.json" {
		t.Errorf("Storage.Path = %q, want data/projects.json (default)", cfg.Storage.Path)
	}
	if cfg.Workflow.SessionTTL != 10*time.Minute {
		t.Errorf("Workflow.SessionTTL = %v, want 10m (default)", cfg.Workflow.SessionTTL)
	}
	if cfg.Telegram.RatePerSecond != 25 {
		t.Errorf("Telegram.RatePerSecond = %v, want 25 (default)", cfg.Telegram.RatePerSecond)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "456:env")
	t.Setenv("MANAGER_ID", "777")

	path := writeConfig(t, `
server:
  address: ":9000"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "456:env" {
		t.Errorf("Telegram.Token = %q, want the BOT_TOKEN value", cfg.Telegram.Token)
	}
	if cfg.Telegram.ManagerID != "777" {
		t.Errorf("Telegram.ManagerID = %q, want the MANAGER_ID value", cfg.Telegram.ManagerID)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing token",
			yaml: `
telegram:
  manager_id: "100"
`,
		},
		{
			name: "missing manager",
			yaml: `
telegram:
  token: "123:abc"
`,
		},
		{
			name: "bad backend",
			yaml: `
telegram:
  token: "123:abc"
  manager_id: "100"
storage:
  backend: redis
`,
		},
		{
			name: "plain-http webhook",
			yaml: `
telegram:
  token: "123:abc"
  manager_id: "100"
  webhook_url: "http://example.com"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOT_TOKEN", "")
			t.Setenv("MANAGER_ID", "")
			if _, err := LoadConfig(writeConfig(t, tt.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

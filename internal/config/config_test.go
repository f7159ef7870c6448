package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  dsn: storage/students.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverSQLite)
	}
	if cfg.Addr != "localhost:8000" {
		t.Errorf("Addr = %q, want localhost:8000", cfg.Addr)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 5s", cfg.ShutdownTimeout)
	}
	if cfg.CORS.AllowedOrigin != "http://localhost:5173" {
		t.Errorf("CORS.AllowedOrigin = %q", cfg.CORS.AllowedOrigin)
	}
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage:
  driver: postgres
  dsn: postgres://postgres@localhost:5432/student_management
  echo: true
http_server:
  address: 0.0.0.0:9000
  read_timeout: 3s
cors:
  allowed_origin: https://admin.example.com
`)
	t.Setenv("HTTP_SERVER_ADDR", "127.0.0.1:9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Env != "prod" || cfg.Storage.Driver != DriverPostgres || !cfg.Storage.Echo {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Addr != "127.0.0.1:9100" {
		t.Errorf("Addr = %q, env override not applied", cfg.Addr)
	}
	if cfg.ReadTimeout != 3*time.Second {
		t.Errorf("ReadTimeout = %s, want 3s", cfg.ReadTimeout)
	}
	if cfg.CORS.AllowedOrigin != "https://admin.example.com" {
		t.Errorf("CORS.AllowedOrigin = %q", cfg.CORS.AllowedOrigin)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: oracle
  dsn: whatever
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
	if !strings.Contains(err.Error(), "driver") {
		t.Errorf("error %q does not mention the driver field", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

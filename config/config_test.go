package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("expected default port 5000, got %q", cfg.Port)
	}
	if cfg.JWT.ExpiresIn != 7*24*time.Hour {
		t.Errorf("expected default token lifetime 168h, got %v", cfg.JWT.ExpiresIn)
	}
	if cfg.APIPrefix() != "/api/v1" {
		t.Errorf("unexpected api prefix %q", cfg.APIPrefix())
	}
	if cfg.RateLimit.MaxRequests != 100 || cfg.RateLimit.Window != 15*time.Minute {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development env by default")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	// registered so the variable is restored afterwards; the file must be the only source
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "port: \"8081\"\napi_version: v2\njwt:\n  secret: from-file\ndb:\n  driver: sqlite3\n  dsn: file:test.db\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8081" || cfg.APIPrefix() != "/api/v2" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.DB.Driver != "sqlite3" {
		t.Errorf("expected sqlite3 driver, got %q", cfg.DB.Driver)
	}
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	base := Config{
		JWT:                  JWTConfig{Secret: "s", ExpiresIn: time.Hour},
		DB:                   DBConfig{Driver: "pgx"},
		NotificationsBackend: "sql",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}

	bad := base
	bad.DB.Driver = "mysql"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unsupported driver")
	}

	bad = base
	bad.NotificationsBackend = "redis"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unsupported notifications backend")
	}
}

func TestCORSOrigins(t *testing.T) {
	cfg := Config{CORSOrigin: "http://localhost:5173, https://app.example.com,,"}
	got := cfg.CORSOrigins()
	if len(got) != 2 || got[0] != "http://localhost:5173" || got[1] != "https://app.example.com" {
		t.Errorf("unexpected origins %v", got)
	}
}

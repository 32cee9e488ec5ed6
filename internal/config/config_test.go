package config

import (
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
profile: alice
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("default driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "lifegit.db" {
		t.Errorf("default path = %q, want lifegit.db", cfg.Storage.Path)
	}
	if cfg.Storage.Database != "lifegit_alice" {
		t.Errorf("derived database = %q, want lifegit_alice", cfg.Storage.Database)
	}
	if cfg.AI.MaxRetries != 3 {
		t.Errorf("default max_retries = %d, want 3", cfg.AI.MaxRetries)
	}
	if cfg.AI.Backoff() != time.Second {
		t.Errorf("default backoff = %v, want 1s", cfg.AI.Backoff())
	}
	if cfg.AI.APIKeyEnv != "LIFEGIT_API_KEY" {
		t.Errorf("default api_key_env = %q", cfg.AI.APIKeyEnv)
	}
	if cfg.Serve.Port != 8080 {
		t.Errorf("default serve port = %d, want 8080", cfg.Serve.Port)
	}
}

func TestParse_MissingProfile(t *testing.T) {
	_, err := Parse([]byte(`storage: {driver: sqlite}`))
	if err == nil {
		t.Fatal("Parse() should fail without profile")
	}
	if !strings.Contains(err.Error(), "profile is required") {
		t.Errorf("error %q missing profile message", err)
	}
}

func TestParse_BadDriver(t *testing.T) {
	_, err := Parse([]byte("profile: bob\nstorage:\n  driver: postgres\n"))
	if err == nil {
		t.Fatal("Parse() should reject unknown driver")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("error %q missing driver message", err)
	}
}

func TestParse_MySQL(t *testing.T) {
	cfg, err := Parse([]byte("profile: bob\nstorage:\n  driver: mysql\n  host: db.local\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Storage.Host != "db.local" {
		t.Errorf("host = %q, want db.local", cfg.Storage.Host)
	}
	if cfg.Storage.Port != 3306 {
		t.Errorf("default port = %d, want 3306", cfg.Storage.Port)
	}
	if cfg.Storage.Database != "lifegit_bob" {
		t.Errorf("derived database = %q, want lifegit_bob", cfg.Storage.Database)
	}
}

func TestAPIKey_StoredKeyWinsOverEnv(t *testing.T) {
	t.Setenv("LIFEGIT_API_KEY", "from-env")

	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := cfg.AI.APIKey(); got != "from-env" {
		t.Errorf("APIKey() = %q, want env value", got)
	}

	cfg.AI.APIKeyValue = "from-file"
	if got := cfg.AI.APIKey(); got != "from-file" {
		t.Errorf("APIKey() = %q, stored key should win", got)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("profile: [unclosed")); err == nil {
		t.Fatal("Parse() should fail on malformed YAML")
	}
}

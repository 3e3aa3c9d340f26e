package config

import "testing"

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("EXCHANGE_TEST_STR", "")
	if got := envOrDefault("EXCHANGE_TEST_STR", "fallback"); got != "fallback" {
		t.Fatalf("empty env var should fall back, got %q", got)
	}

	t.Setenv("EXCHANGE_TEST_STR", "set-value")
	if got := envOrDefault("EXCHANGE_TEST_STR", "fallback"); got != "set-value" {
		t.Fatalf("got %q, want set-value", got)
	}
}

func TestEnvIntOrDefault(t *testing.T) {
	t.Setenv("EXCHANGE_TEST_INT", "")
	if got := envIntOrDefault("EXCHANGE_TEST_INT", 7); got != 7 {
		t.Fatalf("empty env var should fall back, got %d", got)
	}

	t.Setenv("EXCHANGE_TEST_INT", "12")
	if got := envIntOrDefault("EXCHANGE_TEST_INT", 7); got != 12 {
		t.Fatalf("got %d, want 12", got)
	}

	t.Setenv("EXCHANGE_TEST_INT", "not-a-number")
	if got := envIntOrDefault("EXCHANGE_TEST_INT", 7); got != 7 {
		t.Fatalf("malformed int should fall back, got %d", got)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	for _, key := range []string{"POSTGRES_DSN", "REDIS_ADDR", "JWT_SECRET", "ADMIN_TOKEN", "HTTP_ADDR", "WORKERS", "MIGRATION_DIR"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Workers != 4 {
		t.Fatalf("Workers = %d, want default 4", cfg.Workers)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.MigrationDir != "migrations" {
		t.Fatalf("MigrationDir = %q, want migrations", cfg.MigrationDir)
	}
}

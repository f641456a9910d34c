package config

import "testing"

func TestLoadIdentityDefaults(t *testing.T) {
	cfg, err := LoadIdentity()
	if err != nil {
		t.Fatalf("LoadIdentity() error = %v", err)
	}
	if cfg.Backend != IdentityBackendMemory {
		t.Fatalf("Backend = %q, want memory", cfg.Backend)
	}
	if cfg.Key != "default" {
		t.Fatalf("Key = %q, want default", cfg.Key)
	}
}

func TestLoadIdentityPostgresRequiresDSN(t *testing.T) {
	t.Setenv("IDENTITY_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	if _, err := LoadIdentity(); err == nil {
		t.Fatal("LoadIdentity() expected error, got nil")
	}
}

func TestLoadIdentityRejectsUnknownBackend(t *testing.T) {
	t.Setenv("IDENTITY_BACKEND", "cookie-jar")

	if _, err := LoadIdentity(); err == nil {
		t.Fatal("LoadIdentity() expected error, got nil")
	}
}

func TestLoadIdentityRedis(t *testing.T) {
	t.Setenv("IDENTITY_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://127.0.0.1:6380/2")
	t.Setenv("REDIS_KEY_PREFIX", "cc:")

	cfg, err := LoadIdentity()
	if err != nil {
		t.Fatalf("LoadIdentity() error = %v", err)
	}
	if cfg.RedisURL != "redis://127.0.0.1:6380/2" || cfg.RedisKeyPrefix != "cc:" {
		t.Fatalf("unexpected redis config: %+v", cfg)
	}
}

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	IdentityBackendMemory   = "memory"
	IdentityBackendRedis    = "redis"
	IdentityBackendPostgres = "postgres"
)

type IdentityConfig struct {
	Backend        string `env:"IDENTITY_BACKEND" envDefault:"memory"`
	Key            string `env:"IDENTITY_KEY" envDefault:"default"`
	RedisURL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX"`
	PostgresDSN    string `env:"POSTGRES_DSN"`
}

func LoadIdentity() (IdentityConfig, error) {
	var cfg IdentityConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	switch cfg.Backend {
	case IdentityBackendMemory, IdentityBackendRedis:
	case IdentityBackendPostgres:
		if cfg.PostgresDSN == "" {
			return cfg, fmt.Errorf("POSTGRES_DSN is required for identity backend %q", cfg.Backend)
		}
	default:
		return cfg, fmt.Errorf("unknown IDENTITY_BACKEND %q", cfg.Backend)
	}
	return cfg, nil
}

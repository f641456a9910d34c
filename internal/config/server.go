package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig configures the mock live-data server used for local runs.
type ServerConfig struct {
	HTTPAddr          string        `env:"MOCK_HTTP_ADDR" envDefault:":8000"`
	BroadcastInterval time.Duration `env:"MOCK_BROADCAST_INTERVAL" envDefault:"5s"`
	AdminAPIKey       string        `env:"MOCK_ADMIN_API_KEY"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

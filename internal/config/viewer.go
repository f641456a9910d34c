package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ViewerConfig struct {
	LiveServerURL string `env:"LIVE_SERVER_URL" envDefault:"ws://localhost:8000/ws"`
	ViewerID      string `env:"VIEWER_ID"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8090"`
	AdminAPIKey   string `env:"ADMIN_API_KEY"`

	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`
	ReconnectBase        time.Duration `env:"RECONNECT_BASE" envDefault:"1s"`
	ReconnectCap         time.Duration `env:"RECONNECT_CAP" envDefault:"30s"`
	ReconnectMaxAttempts uint          `env:"RECONNECT_MAX_ATTEMPTS" envDefault:"5"`
	RecentEventsCapacity int           `env:"RECENT_EVENTS_CAPACITY" envDefault:"10"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	AutoConnect          bool          `env:"AUTO_CONNECT" envDefault:"true"`
}

func LoadViewer() (ViewerConfig, error) {
	var cfg ViewerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

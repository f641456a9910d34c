package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// PushConfig controls relaying live updates to chat webhooks.
type PushConfig struct {
	Enabled               bool          `env:"LIVE_PUSH_ENABLED" envDefault:"false"`
	TargetsJSON           string        `env:"LIVE_PUSH_TARGETS_JSON"`
	ConfigPath            string        `env:"LIVE_PUSH_CONFIG_PATH"`
	Workers               int           `env:"LIVE_PUSH_WORKERS" envDefault:"2"`
	RetryMax              int           `env:"LIVE_PUSH_RETRY_MAX" envDefault:"3"`
	RetryBase             time.Duration `env:"LIVE_PUSH_RETRY_BASE" envDefault:"500ms"`
	ScoreboardMinInterval time.Duration `env:"LIVE_PUSH_SCOREBOARD_MIN_INTERVAL" envDefault:"5s"`
	RequestTimeout        time.Duration `env:"LIVE_PUSH_REQUEST_TIMEOUT" envDefault:"5s"`
}

func LoadPush() (PushConfig, error) {
	var cfg PushConfig
	err := env.Parse(&cfg)
	return cfg, err
}

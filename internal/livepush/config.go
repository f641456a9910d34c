package livepush

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"cc-live/internal/config"
)

func ConfigFromEnv(cfg config.PushConfig) (Config, error) {
	out := Config{
		Enabled:               cfg.Enabled,
		Workers:               cfg.Workers,
		RetryMax:              cfg.RetryMax,
		RetryBase:             cfg.RetryBase,
		ScoreboardMinInterval: cfg.ScoreboardMinInterval,
		FailureThreshold:      3,
		CircuitOpenDuration:   30 * time.Second,
		RequestTimeout:        cfg.RequestTimeout,
		DispatchBuffer:        256,
	}
	if !out.Enabled {
		return out, nil
	}

	if out.Workers <= 0 {
		out.Workers = 2
	}
	if out.RetryMax < 0 {
		out.RetryMax = 0
	}
	if out.RetryBase <= 0 {
		out.RetryBase = 500 * time.Millisecond
	}
	if out.ScoreboardMinInterval <= 0 {
		out.ScoreboardMinInterval = 5 * time.Second
	}

	raw, err := loadTargetsJSON(cfg)
	if err != nil {
		return Config{}, err
	}
	if raw == "" {
		return out, nil
	}
	targets, err := parseTargetsJSON(raw)
	if err != nil {
		return Config{}, err
	}
	out.Targets = targets
	return out, nil
}

func loadTargetsJSON(cfg config.PushConfig) (string, error) {
	path := strings.TrimSpace(cfg.ConfigPath)
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read live push config path %q: %w", path, err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return strings.TrimSpace(cfg.TargetsJSON), nil
}

// parseTargetsJSON keeps enabled targets with a known platform and an
// endpoint. Allowlist entries are lowercased.
func parseTargetsJSON(raw string) ([]PushTarget, error) {
	var targets []PushTarget
	if err := json.Unmarshal([]byte(raw), &targets); err != nil {
		return nil, fmt.Errorf("parse live push targets: %w", err)
	}
	filtered := make([]PushTarget, 0, len(targets))
	for _, target := range targets {
		target.Platform = strings.ToLower(strings.TrimSpace(target.Platform))
		if target.Platform != "discord" && target.Platform != "feishu" {
			continue
		}
		target.Endpoint = strings.TrimSpace(target.Endpoint)
		if target.Endpoint == "" || !target.Enabled {
			continue
		}
		for i := range target.EventAllowlist {
			target.EventAllowlist[i] = strings.ToLower(strings.TrimSpace(target.EventAllowlist[i]))
		}
		filtered = append(filtered, target)
	}
	return filtered, nil
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Config holds the knobs freedumpctl exposes for exercising
// pooledalloc.Allocator from the command line.
type Config struct {
	Buckets  int    `json:"buckets"`
	StatsOut string `json:"stats_out,omitempty"`
	Verbose  bool   `json:"verbose,omitempty"`
}

var errConfigInvalid = errors.New("freedumpctl: invalid config file")

// DefaultConfig returns the configuration freedumpctl starts from before
// any config file or flag is applied.
func DefaultConfig() Config {
	return Config{Buckets: 16}
}

// loadConfigFile reads a JSON-with-comments config file (same
// strip-comments-then-unmarshal idiom as calvinalkan-agent-task's
// config loader) and merges it onto cfg. A missing path is not an
// error: it simply leaves cfg untouched.
func loadConfigFile(cfg Config, path string) (Config, error) {
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("freedumpctl: read config %s: %w", path, err)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", errConfigInvalid, path, err)
	}

	if err := json.Unmarshal(standard, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", errConfigInvalid, path, err)
	}

	if cfg.Buckets < 1 || cfg.Buckets > 64 {
		return cfg, fmt.Errorf("%w: %s: buckets must be in [1, 64]", errConfigInvalid, path)
	}

	return cfg, nil
}

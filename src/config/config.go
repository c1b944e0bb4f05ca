// Package config persists the two durable credentials (forge API token,
// completion API key) and the UI theme preference. Everything else the
// application holds is in-memory by design.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/adrg/xdg"
)

const configRel = "forgepad/config.json"

type Config struct {
	ForgeToken string `json:"forge_token"`
	GeminiKey  string `json:"gemini_api_key"`
	Theme      string `json:"theme"`
}

// Load reads the config file (if any) and applies environment overrides.
// A missing file is not an error; the zero config triggers the token
// prompt in the UI.
func Load() (*Config, error) {
	cfg := &Config{Theme: "dark"}

	path, err := xdg.SearchConfigFile(configRel)
	if err == nil {
		raw, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("FORGEPAD_GITHUB_TOKEN"); v != "" {
		cfg.ForgeToken = v
	}
	if v := os.Getenv("FORGEPAD_GEMINI_API_KEY"); v != "" {
		cfg.GeminiKey = v
	}
	if v := os.Getenv("FORGEPAD_THEME"); v != "" {
		cfg.Theme = v
	}
	return cfg, nil
}

// Save writes the config under the XDG config home with owner-only
// permissions; the file holds credentials.
func Save(cfg *Config) error {
	path, err := xdg.ConfigFile(configRel)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

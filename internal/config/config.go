// Package config loads the server configuration from a JSON file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"beehive/backend/internal/game"
	"beehive/backend/internal/hive"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the root configuration of the hive server.
type Config struct {
	Listen       string      `json:"listen"`
	TickInterval string      `json:"tick_interval"` // duration string like "250ms"
	JournalPath  string      `json:"journal_path"`  // empty disables the journal
	Seed         int64       `json:"seed"`          // 0 picks a random seed
	AgentSpace   string      `json:"agent_space"`   // "continuous", "discrete" or "" to disable
	AutoStart    bool        `json:"auto_start"`
	Hive         hive.Config `json:"hive"`
	Game         game.Config `json:"game"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:       ":8080",
		TickInterval: "250ms",
		AgentSpace:   "continuous",
		AutoStart:    true,
		Hive:         hive.DefaultConfig(),
		Game:         game.DefaultConfig(),
	}
}

// Load reads a JSON config file on top of the defaults, so partial files are
// fine. The file must have a .json extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the server owns and delegates the game and hive
// checks.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if _, err := c.Tick(); err != nil {
		return err
	}
	switch c.AgentSpace {
	case "", "continuous", "discrete":
	default:
		return fmt.Errorf("unknown agent_space %q", c.AgentSpace)
	}
	if err := c.Game.Validate(); err != nil {
		return err
	}
	return c.Hive.Validate()
}

// Tick parses TickInterval.
func (c *Config) Tick() (time.Duration, error) {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid tick_interval %q: %w", c.TickInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tick_interval must be positive, got %s", d)
	}
	return d, nil
}

package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the contents of spvfuzz.toml.
type Config struct {
	Replay ReplayConfig `toml:"replay"`
	Log    LogConfig    `toml:"log"`
}

// ReplayConfig holds the defaults of the replay command.
type ReplayConfig struct {
	// OverflowIDStart is the first overflow id handed out. Zero disables
	// overflow ids.
	OverflowIDStart  uint32 `toml:"overflow_id_start"`
	ValidateEachStep bool   `toml:"validate_each_step"`
	Jobs             int    `toml:"jobs"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "warn"},
	}
}

// LoadConfig decodes a spvfuzz.toml file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Replay.Jobs < 0 {
		return cfg, fmt.Errorf("%s: replay.jobs must not be negative", path)
	}
	return cfg, nil
}

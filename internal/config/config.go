// Package config provides YAML-based configuration loading for the snake
// driver, the SSH server and the batch simulator.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full application configuration.
type Config struct {
	Driver  DriverConfig  `yaml:"driver"`
	Display DisplayConfig `yaml:"display"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Sim     SimConfig     `yaml:"sim"`
	Log     LogConfig     `yaml:"log"`
}

// DriverConfig controls the frame loop around the logic tick.
type DriverConfig struct {
	TargetFPS     int `yaml:"target_fps"`
	FramesPerTick int `yaml:"frames_per_tick"` // Logic advances once every N frames
}

// DisplayConfig controls how grid cells map to terminal characters.
type DisplayConfig struct {
	CellWidth  int `yaml:"cell_width"`
	CellHeight int `yaml:"cell_height"`
}

// StorageConfig locates the episode database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// ServerConfig configures the SSH server.
type ServerConfig struct {
	Address            string `yaml:"address"`
	HostKeyPath        string `yaml:"host_key_path"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// SimConfig holds defaults for headless batch runs.
type SimConfig struct {
	Episodes int    `yaml:"episodes"`
	Workers  int    `yaml:"workers"`
	MaxTicks int    `yaml:"max_ticks"` // 0 disables truncation
	Agent    string `yaml:"agent"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Validate reports the first field that cannot drive the game.
func (c Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"driver.target_fps", c.Driver.TargetFPS > 0},
		{"driver.frames_per_tick", c.Driver.FramesPerTick > 0},
		{"display.cell_width", c.Display.CellWidth > 0},
		{"display.cell_height", c.Display.CellHeight > 0},
		{"storage.db_path", c.Storage.DBPath != ""},
		{"server.address", c.Server.Address != ""},
		{"server.idle_timeout_minutes", c.Server.IdleTimeoutMinutes > 0},
		{"sim.episodes", c.Sim.Episodes > 0},
		{"sim.workers", c.Sim.Workers > 0},
		{"sim.max_ticks", c.Sim.MaxTicks >= 0},
		{"sim.agent", c.Sim.Agent != ""},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s", ErrInvalid, chk.name)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Driver: DriverConfig{
			TargetFPS:     60,
			FramesPerTick: 10,
		},
		Display: DisplayConfig{
			CellWidth:  2,
			CellHeight: 1,
		},
		Storage: StorageConfig{
			DBPath: "~/.snake/episodes.db",
		},
		Server: ServerConfig{
			Address:            ":23235",
			HostKeyPath:        "~/.snake/host_key",
			IdleTimeoutMinutes: 30,
		},
		Sim: SimConfig{
			Episodes: 100,
			Workers:  4,
			MaxTicks: 5000,
			Agent:    "greedy",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultYAML
}

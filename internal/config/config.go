// Package config handles atlastool configuration loading and management.
package config

import (
	"github.com/Faultbox/atlasforge/pkg/atlas"
)

// Config holds all tool settings.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Atlas   atlas.Config  `yaml:"atlas"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig holds where produced atlases and reports land.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // Directory for produced atlas PNGs
	Report bool   `yaml:"report"` // Also write a YAML run report
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:    "atlases",
			Report: true,
		},
		Atlas: atlas.DefaultConfig(),
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

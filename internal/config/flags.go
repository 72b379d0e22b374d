package config

import (
	"flag"

	"github.com/Faultbox/atlasforge/pkg/atlas"
)

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagOut      = flag.String("out", "", "Output directory for atlases and report")
	flagMode     = flag.String("mode", "", "Workflow mode (independent or driver-linked)")
	flagMaxAtlas = flag.Int("max-atlas-size", 0, "Maximum atlas dimension in pixels (power of two)")
	flagParallel = flag.Bool("parallel", false, "Pack atlas halves concurrently")
)

// ParseFlags parses the given command-line arguments. Call before Load.
func ParseFlags(args []string) {
	if !flag.Parsed() {
		flag.CommandLine.Parse(args)
	}
}

// ConfigPath returns the explicit config file path from flags, if any.
func ConfigPath() string {
	return *flagConfig
}

// Positional returns the first non-flag argument, if any.
func Positional() string {
	if flag.NArg() > 0 {
		return flag.Arg(0)
	}
	return ""
}

// applyFlags overlays the parsed flag values onto cfg.
func applyFlags(cfg *Config) {
	if !flag.Parsed() {
		return
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagMode != "" {
		cfg.Atlas.Mode = atlas.WorkflowMode(*flagMode)
	}
	if *flagMaxAtlas != 0 {
		cfg.Atlas.MaxAtlasSize = *flagMaxAtlas
	}
	if *flagParallel {
		cfg.Atlas.Parallel = true
	}
}

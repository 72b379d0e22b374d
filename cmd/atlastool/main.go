// atlastool bakes texture atlases for material batches described by a
// YAML manifest and reports the chosen compression settings.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/atlasforge/internal/config"
	"github.com/Faultbox/atlasforge/internal/logger"
	"github.com/Faultbox/atlasforge/pkg/atlas"
	"github.com/Faultbox/atlasforge/pkg/imaging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "run":
		cmdRun(args)
	case "inspect", "info":
		cmdInspect(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`atlastool - texture atlas baking utility

Usage:
  atlastool <command> [options]

Commands:
  run [options] <manifest.yaml>    Bake atlases for the manifest's materials
  inspect <manifest.yaml>          Show manifest contents without baking
  inspect [-role <role>] <image>   Analyze one image and print its tier

Options for run:
  -config <file>        Config file path
  -out <dir>            Output directory for atlases and report
  -mode <mode>          Workflow mode (independent or driver-linked)
  -max-atlas-size <px>  Maximum atlas dimension (power of two)
  -parallel             Pack atlas halves concurrently
  -debug                Enable debug logging

Examples:
  atlastool run characters.yaml
  atlastool run -mode driver-linked -out build/atlases characters.yaml
  atlastool inspect characters.yaml`)
}

func cmdRun(args []string) {
	config.ParseFlags(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	manifestPath := config.Positional()
	if manifestPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: atlastool run [options] <manifest.yaml>")
		os.Exit(1)
	}

	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		logger.Error("failed to load manifest", zap.Error(err))
		os.Exit(1)
	}

	report := NewReport(cfg.Atlas.Mode)
	log := logger.Named("atlas")
	exclusions := manifest.ExclusionSet()

	for _, shader := range manifest.Shaders {
		materials, err := manifest.MaterialsFor(shader.Name)
		if err != nil {
			logger.Error("failed to load materials", zap.String("shader", shader.Name), zap.Error(err))
			os.Exit(1)
		}
		if len(materials) == 0 {
			continue
		}
		surfaces := manifest.SurfacesFor(materials)

		outcome, err := atlas.Process(
			manifest.Descriptor(shader), materials, exclusions, surfaces,
			cfg.Atlas, atlas.WithLogger(log),
		)
		if err != nil {
			logger.Error("pipeline failed", zap.String("shader", shader.Name), zap.Error(err))
			os.Exit(1)
		}
		report.Add(shader.Name, outcome)
	}

	if err := report.Write(cfg.Output.Dir, cfg.Output.Report); err != nil {
		logger.Error("failed to write output", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("bake finished",
		zap.Int("atlases", report.AtlasCount()),
		zap.Int("materials", report.MaterialCount()),
		zap.String("output", cfg.Output.Dir))
}

func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	roleName := fs.String("role", "generic", "Property role for image analysis")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: atlastool inspect [-role <role>] <manifest.yaml|image>")
		os.Exit(1)
	}

	target := fs.Arg(0)
	switch strings.ToLower(filepath.Ext(target)) {
	case ".yaml", ".yml":
		inspectManifest(target)
	default:
		inspectImage(target, *roleName)
	}
}

func inspectManifest(path string) {
	manifest, err := LoadManifest(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Manifest: %s\n", path)
	fmt.Printf("Shaders:  %d\n", len(manifest.Shaders))
	fmt.Printf("Materials: %d\n", len(manifest.Materials))
	fmt.Printf("Surfaces: %d\n", len(manifest.Surfaces))
	fmt.Println()

	for _, shader := range manifest.Shaders {
		count := 0
		for _, m := range manifest.Materials {
			if m.Shader == shader.Name {
				count++
			}
		}
		fmt.Printf("%s (%d materials)\n", shader.Name, count)
		for _, p := range shader.Properties {
			role := p.Role
			if role == "" {
				role = "generic"
			}
			fmt.Printf("  %-24s %s\n", p.Name, role)
		}
	}

	if len(manifest.Exclusions.Materials)+len(manifest.Exclusions.Properties) > 0 {
		fmt.Println()
		fmt.Printf("Excluded materials:  %v\n", manifest.Exclusions.Materials)
		fmt.Printf("Excluded properties: %v\n", manifest.Exclusions.Properties)
	}
}

func inspectImage(path, roleName string) {
	role, err := parseRole(roleName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	src, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding %s: %v\n", path, err)
		os.Exit(1)
	}

	cfg := atlas.DefaultConfig()
	img := imaging.FromImage(path, src)
	analysis := atlas.AnalyzeComplexity(img, role, cfg.Weights, cfg.EdgeThreshold)
	tier, fellBack := atlas.SelectTier(cfg.Tiers, analysis.Score, path)

	fmt.Printf("Image:      %s (%s, %dx%d, role %s)\n", path, format, img.Width, img.Height, role)
	fmt.Printf("Diversity:  %.3f\n", analysis.Diversity)
	fmt.Printf("Variance:   %.3f\n", analysis.Variance)
	fmt.Printf("Edges:      %.3f\n", analysis.EdgeDensity)
	fmt.Printf("Complexity: %.3f (%s)\n", analysis.Score, analysis.Reason)
	fmt.Printf("Tier:       %s (max %dpx, quality %d, %s)\n", tier.Name, tier.MaxSize, tier.Quality, tier.Format)
	if fellBack {
		fmt.Println("(no tier range covers the score, middle tier used)")
	}
}

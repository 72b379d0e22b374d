package atlas

import (
	"fmt"
)

// WorkflowMode selects how property atlases relate to each other.
type WorkflowMode string

const (
	// ModeIndependent packs every property group on its own; each group
	// keeps its own scale/offset on the material copy.
	ModeIndependent WorkflowMode = "independent"
	// ModeDriverLinked replicates the driver group's layout into every
	// other group's atlas and bakes coordinates into surface geometry, so
	// one merged material can serve all properties.
	ModeDriverLinked WorkflowMode = "driver-linked"
)

// ComplexityWeights blends the three complexity metrics into one score.
// Expected, but not required, to sum to 1.
type ComplexityWeights struct {
	Diversity float64 `yaml:"diversity"`
	Variance  float64 `yaml:"variance"`
	Edge      float64 `yaml:"edge"`
}

// Config is the validated, immutable configuration for one optimization
// run. Construct via DefaultConfig and adjust, then Validate rejects
// invalid combinations before any work starts.
type Config struct {
	// MaxAtlasSize is the largest allowed atlas dimension. Power of two.
	MaxAtlasSize int `yaml:"max_atlas_size"`
	// Padding is the minimum pixel gap kept around each packed image. It
	// is raised to the mip-safe floor for the chosen atlas size.
	Padding int `yaml:"padding"`
	// MinMaterials is the smallest batch worth atlasing at all.
	MinMaterials int `yaml:"min_materials"`
	// MinImageSize excludes materials whose largest source image side is
	// below this many pixels.
	MinImageSize int `yaml:"min_image_size"`

	// Property and shader name filters. Wildcard '*' patterns.
	IncludeProperties []string `yaml:"include_properties"`
	ExcludeProperties []string `yaml:"exclude_properties"`
	IncludeShaders    []string `yaml:"include_shaders"`
	ExcludeShaders    []string `yaml:"exclude_shaders"`

	Mode WorkflowMode `yaml:"mode"`

	// TargetUtilization triggers a repack at a smaller size when the
	// packed-area fraction falls below it. Valid range [0.5, 0.95].
	TargetUtilization float64 `yaml:"target_utilization"`

	Weights ComplexityWeights `yaml:"complexity_weights"`
	// EdgeThreshold is the 0-255 luminance gradient above which a sampled
	// point counts as an edge.
	EdgeThreshold int `yaml:"edge_threshold"`

	// Tiers, ordered by MinComplexity, map scores to import parameters.
	Tiers []Tier `yaml:"tiers"`

	// Per-property overrides of the form "name:value,name:value".
	SizeOverrides    string `yaml:"size_overrides"`
	QualityOverrides string `yaml:"quality_overrides"`

	// Parallel runs the subset splitter's bisected halves concurrently.
	Parallel bool `yaml:"parallel"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxAtlasSize:      2048,
		Padding:           2,
		MinMaterials:      2,
		MinImageSize:      32,
		Mode:              ModeIndependent,
		TargetUtilization: 0.6,
		Weights:           ComplexityWeights{Diversity: 0.35, Variance: 0.30, Edge: 0.35},
		EdgeThreshold:     30,
		Tiers:             DefaultTiers(),
	}
}

// Validate rejects invalid configuration synchronously, before any packing
// work starts. This is the only failure that aborts a whole Process call.
func (c Config) Validate() error {
	if c.MaxAtlasSize < 4 || c.MaxAtlasSize&(c.MaxAtlasSize-1) != 0 {
		return fmt.Errorf("atlas: max_atlas_size %d must be a power of two >= 4", c.MaxAtlasSize)
	}
	if c.Padding < 0 {
		return fmt.Errorf("atlas: padding %d must not be negative", c.Padding)
	}
	if c.MinMaterials < 1 {
		return fmt.Errorf("atlas: min_materials %d must be at least 1", c.MinMaterials)
	}
	if c.MinImageSize < 0 {
		return fmt.Errorf("atlas: min_image_size %d must not be negative", c.MinImageSize)
	}
	if c.Mode != ModeIndependent && c.Mode != ModeDriverLinked {
		return fmt.Errorf("atlas: unknown workflow mode %q", c.Mode)
	}
	if c.TargetUtilization < 0.5 || c.TargetUtilization > 0.95 {
		return fmt.Errorf("atlas: target_utilization %v outside [0.5, 0.95]", c.TargetUtilization)
	}
	if c.Weights.Diversity < 0 || c.Weights.Variance < 0 || c.Weights.Edge < 0 {
		return fmt.Errorf("atlas: complexity weights must not be negative")
	}
	if c.EdgeThreshold < 0 || c.EdgeThreshold > 255 {
		return fmt.Errorf("atlas: edge_threshold %d outside [0, 255]", c.EdgeThreshold)
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("atlas: at least one compression tier is required")
	}
	enabled := 0
	for i, t := range c.Tiers {
		if err := t.validate(); err != nil {
			return fmt.Errorf("atlas: tier %d (%s): %w", i, t.Name, err)
		}
		if t.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("atlas: all compression tiers are disabled")
	}
	if _, err := ParseOverrides(c.SizeOverrides); err != nil {
		return fmt.Errorf("atlas: size_overrides: %w", err)
	}
	if _, err := ParseOverrides(c.QualityOverrides); err != nil {
		return fmt.Errorf("atlas: quality_overrides: %w", err)
	}
	return nil
}

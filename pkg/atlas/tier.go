package atlas

import (
	"fmt"
	"sort"
)

// FilterMode is the texture sampling filter requested from the importer.
type FilterMode string

const (
	FilterPoint     FilterMode = "point"
	FilterBilinear  FilterMode = "bilinear"
	FilterTrilinear FilterMode = "trilinear"
)

// Tier maps a complexity score range to a bundle of target import
// parameters. Tiers are user-configured and ordered by MinComplexity;
// ranges are expected, but not enforced, to partition [0,1].
type Tier struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`

	MinComplexity float64 `yaml:"min_complexity"`
	MaxComplexity float64 `yaml:"max_complexity"`

	MaxSize    int        `yaml:"max_size"`
	Quality    int        `yaml:"quality"`
	Format     string     `yaml:"format"` // optional forced encoder format
	Filter     FilterMode `yaml:"filter"`
	Anisotropy int        `yaml:"anisotropy"`
	Mipmaps    bool       `yaml:"mipmaps"`
	SRGB       bool       `yaml:"srgb"`

	// Optional property-name filters restricting tier applicability.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

func (t Tier) validate() error {
	if t.MinComplexity < 0 || t.MaxComplexity > 1 || t.MinComplexity > t.MaxComplexity {
		return fmt.Errorf("complexity range [%v, %v] invalid", t.MinComplexity, t.MaxComplexity)
	}
	if t.MaxSize < 4 || t.MaxSize&(t.MaxSize-1) != 0 {
		return fmt.Errorf("max_size %d must be a power of two >= 4", t.MaxSize)
	}
	if t.Quality < 0 || t.Quality > 100 {
		return fmt.Errorf("quality %d outside [0, 100]", t.Quality)
	}
	return nil
}

// matches reports whether the tier covers the score and is not filtered
// away for the property name.
func (t Tier) matches(score float64, property string) bool {
	if !t.Enabled {
		return false
	}
	if score < t.MinComplexity || score > t.MaxComplexity {
		return false
	}
	if len(t.Include) > 0 && !matchesAny(property, t.Include) {
		return false
	}
	if matchesAny(property, t.Exclude) {
		return false
	}
	return true
}

// DefaultTiers is a three-step ladder covering [0,1].
func DefaultTiers() []Tier {
	return []Tier{
		{
			Name: "low", Enabled: true,
			MinComplexity: 0, MaxComplexity: 0.33,
			MaxSize: 512, Quality: 50, Filter: FilterBilinear, Anisotropy: 1, Mipmaps: true,
		},
		{
			Name: "medium", Enabled: true,
			MinComplexity: 0.33, MaxComplexity: 0.66,
			MaxSize: 1024, Quality: 75, Filter: FilterTrilinear, Anisotropy: 2, Mipmaps: true,
		},
		{
			Name: "high", Enabled: true,
			MinComplexity: 0.66, MaxComplexity: 1,
			MaxSize: 2048, Quality: 100, Filter: FilterTrilinear, Anisotropy: 4, Mipmaps: true,
		},
	}
}

// SelectTier returns the first enabled tier (in MinComplexity order) whose
// range covers the score and whose name filters admit the property. When
// nothing matches, it falls back to the middle enabled tier so no property
// is ever left unconfigured; fellBack reports that case. With no enabled
// tiers at all (a configuration Config.Validate rejects) the zero Tier is
// returned instead.
func SelectTier(tiers []Tier, score float64, property string) (tier Tier, fellBack bool) {
	ordered := make([]Tier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].MinComplexity < ordered[b].MinComplexity
	})

	var enabled []Tier
	for _, t := range ordered {
		if t.Enabled {
			enabled = append(enabled, t)
		}
	}
	if len(enabled) == 0 {
		return Tier{}, true
	}
	for _, t := range enabled {
		if t.matches(score, property) {
			return t, false
		}
	}
	return enabled[len(enabled)/2], true
}

// ImportSettings is the parameter bundle handed to the downstream importer
// and encoder for one atlas/property pairing.
type ImportSettings struct {
	Tier       string
	MaxSize    int
	Quality    int
	Format     string
	Filter     FilterMode
	Anisotropy int
	Mipmaps    bool
	SRGB       bool
}

// settingsFor resolves the final import parameters: the tier's target size
// is never allowed to upscale beyond the atlas's native size (rounded down
// to a power of two), and per-property overrides win over tier values.
func (t Tier) settingsFor(property string, nativeSize int, sizeOverride, qualityOverride map[string]int) ImportSettings {
	s := ImportSettings{
		Tier:       t.Name,
		MaxSize:    t.MaxSize,
		Quality:    t.Quality,
		Format:     t.Format,
		Filter:     t.Filter,
		Anisotropy: t.Anisotropy,
		Mipmaps:    t.Mipmaps,
		SRGB:       t.SRGB,
	}
	if native := powerOfTwoFloor(nativeSize); native > 0 && s.MaxSize > native {
		s.MaxSize = native
	}
	if v, ok := sizeOverride[property]; ok {
		s.MaxSize = v
	}
	if v, ok := qualityOverride[property]; ok {
		s.Quality = v
	}
	return s
}

// powerOfTwoFloor returns the largest power of two <= n, or 0 for n < 1.
func powerOfTwoFloor(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

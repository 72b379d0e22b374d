package atlas

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/atlasforge/pkg/imaging"
	gmath "github.com/Faultbox/atlasforge/pkg/math"
)

// ExclusionSet names materials and properties the pipeline must leave
// alone, typically because an external scanner flagged them as animated.
// The engine never decides membership itself.
type ExclusionSet struct {
	Materials  map[string]bool
	Properties map[string]bool
}

// Outcome is the result of one Process call. Partial success is the
// expected steady state: some materials atlased, others skipped with a
// diagnostic event.
type Outcome struct {
	// Atlases are the produced atlas images with their chosen tiers.
	Atlases []*Atlas
	// MaterialCopies are rewritten clones, one per atlased material.
	MaterialCopies []MaterialCopy
	// Remaps are the per-surface instructions for the caller's swap
	// mechanism. Populated in driver-linked mode; in independent mode the
	// remap lives entirely in the material copies' scale/offset.
	Remaps []RemapInstruction
	// UniqueAtlases counts atlases produced after grouping, for stats.
	UniqueAtlases int
	// Events is the structured diagnostic stream for the run.
	Events []Event
}

type runOptions struct {
	log *zap.Logger
}

// Option adjusts how a Process run executes.
type Option func(*runOptions)

// WithLogger routes the run's diagnostics to the given logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *runOptions) { o.log = log }
}

// Process runs the full atlas pipeline for one shader group: property
// filtering and signature grouping, bin packing with recursive subset
// splitting, layout replication across property groups, post-processing,
// complexity analysis, tier selection, and surface remapping.
//
// Inputs are never mutated, with one exception: in driver-linked mode the
// UV buffers of the provided surfaces are rewritten in place, which the
// caller permits by passing only privately-owned copies.
//
// The only error returned is invalid configuration; everything else
// degrades gracefully and surfaces through Outcome.Events.
func Process(shader *ShaderDescriptor, materials []*Material, exclusions ExclusionSet, surfaces []*Surface, cfg Config, opts ...Option) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.log == nil {
		ro.log = zap.NewNop()
	}
	log := ro.log.With(
		zap.String("run", uuid.NewString()),
		zap.String("shader", shader.Name),
	)
	diag := newDiagnostics(log)
	outcome := &Outcome{}

	finish := func() *Outcome {
		outcome.Events = diag.Events()
		return outcome
	}

	if !allowed(shader.Name, cfg.IncludeShaders, cfg.ExcludeShaders) {
		diag.infof("filter", "shader %q excluded by shader name filters", shader.Name)
		return finish(), nil
	}

	candidates := candidateProperties(shader, exclusions, cfg, diag)
	if len(candidates) == 0 {
		diag.warnf("grouping", "shader %q has no allowed properties, nothing to atlas", shader.Name)
		return finish(), nil
	}

	eligible := eligibleMaterials(materials, candidates, exclusions, cfg, diag)
	if len(eligible) < cfg.MinMaterials {
		diag.infof("filter", "shader %q has %d eligible materials, below minimum %d",
			shader.Name, len(eligible), cfg.MinMaterials)
		return finish(), nil
	}

	groups := GroupProperties(candidates, eligible)
	diag.infof("grouping", "%d candidate properties collapsed into %d groups", len(candidates), len(groups))

	sizeOv, _ := ParseOverrides(cfg.SizeOverrides)
	qualOv, _ := ParseOverrides(cfg.QualityOverrides)

	b := &builder{
		cfg:      cfg,
		shader:   shader,
		groups:   groups,
		diag:     diag,
		images:   imaging.NewCache[*imaging.Image](),
		analyses: imaging.NewCache[Analysis](),
	}

	sets := b.packSubset(eligible)
	rectFor := make(map[string]gmath.Rect)

	for _, set := range sets {
		for _, a := range set.atlases {
			a.Analysis = b.analyze(a)
			tier, fellBack := SelectTier(cfg.Tiers, a.Analysis.Score, a.Group.Representative.Name)
			if fellBack {
				diag.warnf("tiers", "no tier covers score %.3f for %q, using middle tier %q",
					a.Analysis.Score, a.Group.Representative.Name, tier.Name)
			}
			a.Settings = tier.settingsFor(a.Group.Representative.Name, a.Image.MaxDim(), sizeOv, qualOv)
			diag.debugf("analyzer", "atlas %s: %s, tier %q", a.Image.ID, a.Analysis.Reason, a.Settings.Tier)
			outcome.Atlases = append(outcome.Atlases, a)
		}

		outcome.MaterialCopies = append(outcome.MaterialCopies, materialCopies(set, cfg.Mode)...)
		driver := set.atlases[0]
		for i, m := range set.materials {
			rectFor[m.Name] = driver.Rects[i]
		}
	}
	outcome.UniqueAtlases = len(outcome.Atlases)

	if cfg.Mode == ModeDriverLinked && len(rectFor) > 0 {
		outcome.Remaps = bakeSurfaces(surfaces, rectFor, diag)
	}

	diag.infof("process", "produced %d atlases for %d of %d materials",
		outcome.UniqueAtlases, len(outcome.MaterialCopies), len(materials))
	return finish(), nil
}

// candidateProperties filters the shader's image slots through the
// configured name patterns and the animated-property exclusion set.
func candidateProperties(shader *ShaderDescriptor, exclusions ExclusionSet, cfg Config, diag *Diagnostics) []PropertyDesc {
	var out []PropertyDesc
	for _, p := range shader.Properties {
		if exclusions.Properties[p.Name] {
			diag.debugf("filter", "property %q excluded: flagged animated", p.Name)
			continue
		}
		if !allowed(p.Name, cfg.IncludeProperties, cfg.ExcludeProperties) {
			diag.debugf("filter", "property %q excluded by name filters", p.Name)
			continue
		}
		out = append(out, p)
	}
	return out
}

// eligibleMaterials drops excluded materials and those whose largest
// candidate image falls below the minimum source size.
func eligibleMaterials(materials []*Material, candidates []PropertyDesc, exclusions ExclusionSet, cfg Config, diag *Diagnostics) []*Material {
	var out []*Material
	for _, m := range materials {
		if exclusions.Materials[m.Name] {
			diag.debugf("filter", "material %q excluded: flagged animated", m.Name)
			continue
		}
		maxDim := 0
		for _, prop := range candidates {
			if p, ok := m.Property(prop.Name); ok && p.Image != nil && p.Image.MaxDim() > maxDim {
				maxDim = p.Image.MaxDim()
			}
		}
		if maxDim < cfg.MinImageSize {
			diag.debugf("filter", "material %q excluded: largest image %dpx below minimum %dpx",
				m.Name, maxDim, cfg.MinImageSize)
			continue
		}
		out = append(out, m)
	}
	return out
}

// analyze memoizes complexity analysis by atlas content and role.
func (b *builder) analyze(a *Atlas) Analysis {
	key := resizeKey(imaging.ComputeFingerprint(a.Image), int(a.Role)+1, 0)
	return b.analyses.GetOrCompute(key, func() Analysis {
		return AnalyzeComplexity(a.Image, a.Role, b.cfg.Weights, b.cfg.EdgeThreshold)
	})
}

// materialCopies clones each packed material and points its grouped
// properties at the produced atlases. Independent mode chains the
// placement rectangle onto each property's existing scale/offset;
// driver-linked mode resets the transform because coordinates are baked
// into the surfaces instead.
func materialCopies(set packedSet, mode WorkflowMode) []MaterialCopy {
	copies := make([]MaterialCopy, len(set.materials))
	for i, m := range set.materials {
		clone := m.Clone()
		for _, a := range set.atlases {
			for _, member := range a.Group.Members {
				orig := clone.Properties[member.Name]
				p := Property{Image: a.Image}
				if mode == ModeIndependent {
					scale, offset := orig.Scale, orig.Offset
					if scale == (gmath.Vec2{}) {
						scale = gmath.One()
					}
					p.Scale, p.Offset = remapTransform(scale, offset, a.Rects[i])
				} else {
					p.Scale = gmath.One()
				}
				clone.Properties[member.Name] = p
			}
		}
		copies[i] = MaterialCopy{
			Source:   m,
			Material: clone,
			Rect:     set.atlases[0].Rects[i],
		}
	}
	return copies
}

package meshopt

import (
	gmath "github.com/Faultbox/atlasforge/pkg/math"
)

// Blendshape is one named morph target: a delta per vertex.
type Blendshape struct {
	Name   string
	Deltas []gmath.Vec3
}

// PruneBlendshapes keeps only the shapes whose names appear in used,
// preserving input order. The usage set comes from the caller's animation
// scan; shapes absent from it are assumed dead weight.
func PruneBlendshapes(shapes []Blendshape, used map[string]bool) []Blendshape {
	var out []Blendshape
	for _, s := range shapes {
		if used[s.Name] {
			out = append(out, s)
		}
	}
	return out
}

// RemapBlendshape rewrites a shape's deltas through a vertex remap table,
// accumulating deltas of merged vertices onto their surviving vertex.
// Merged duplicates carry the same delta in well-formed data; averaging
// keeps malformed data bounded.
func RemapBlendshape(shape Blendshape, remap []int, mergedCount int) Blendshape {
	deltas := make([]gmath.Vec3, mergedCount)
	counts := make([]int, mergedCount)
	for i, d := range shape.Deltas {
		if i >= len(remap) {
			break
		}
		ni := remap[i]
		deltas[ni] = deltas[ni].Add(d)
		counts[ni]++
	}
	for i := range deltas {
		if counts[i] > 1 {
			deltas[i] = deltas[i].Scale(1 / float32(counts[i]))
		}
	}
	return Blendshape{Name: shape.Name, Deltas: deltas}
}

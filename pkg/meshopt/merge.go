// Package meshopt provides mesh data reductions used alongside atlas
// baking: merging near-coincident vertices, pruning negligible bone
// weights, and dropping unused blendshapes. All functions are pure over
// caller-owned copies; which bones and blendshapes a character actually
// uses is always supplied by the caller, never discovered here.
package meshopt

import (
	"github.com/chewxy/math32"

	gmath "github.com/Faultbox/atlasforge/pkg/math"
)

// cellKey addresses one cell of the merge grid.
type cellKey struct {
	x, y, z int32
}

// MergeVerticesByDistance collapses vertices closer than maxDist onto the
// first-seen vertex of their cluster. It returns the surviving positions
// in first-seen order and a remap table from old index to new index, for
// rewriting index buffers and per-vertex attributes.
//
// maxDist <= 0 merges exact duplicates only.
func MergeVerticesByDistance(positions []gmath.Vec3, maxDist float32) ([]gmath.Vec3, []int) {
	remap := make([]int, len(positions))
	if len(positions) == 0 {
		return nil, remap
	}
	if maxDist < 0 {
		maxDist = 0
	}

	// Grid cells sized to maxDist: any pair within range shares a cell or
	// sits in adjacent ones.
	cell := maxDist
	if cell == 0 {
		cell = 1e-6
	}

	grid := make(map[cellKey][]int)
	merged := make([]gmath.Vec3, 0, len(positions))

	key := func(p gmath.Vec3) cellKey {
		return cellKey{
			x: int32(math32.Floor(p.X / cell)),
			y: int32(math32.Floor(p.Y / cell)),
			z: int32(math32.Floor(p.Z / cell)),
		}
	}

	for i, p := range positions {
		k := key(p)
		target := -1

	search:
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dz := int32(-1); dz <= 1; dz++ {
					neighbors := grid[cellKey{k.x + dx, k.y + dy, k.z + dz}]
					for _, mi := range neighbors {
						if merged[mi].Distance(p) <= maxDist {
							target = mi
							break search
						}
					}
				}
			}
		}

		if target < 0 {
			target = len(merged)
			merged = append(merged, p)
			grid[k] = append(grid[k], target)
		}
		remap[i] = target
	}

	return merged, remap
}

// RemapIndices rewrites an index buffer through the remap table returned
// by MergeVerticesByDistance and drops triangles that degenerated into
// lines or points.
func RemapIndices(indices []int, remap []int) []int {
	out := make([]int, 0, len(indices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := remap[indices[i]], remap[indices[i+1]], remap[indices[i+2]]
		if a == b || b == c || a == c {
			continue
		}
		out = append(out, a, b, c)
	}
	return out
}

package atlas

import (
	gmath "github.com/Faultbox/atlasforge/pkg/math"
)

// SurfaceSlot binds a contiguous vertex range of a surface to a material.
type SurfaceSlot struct {
	Material string
	Start    int
	Count    int
}

// Surface is one render surface whose coordinate data the pipeline may
// rewrite. The caller guarantees UV is a private copy owned by this
// surface; the engine mutates it in place only under that guarantee.
type Surface struct {
	Name  string
	UV    []gmath.Vec2
	Slots []SurfaceSlot
}

// RemapInstruction records how one surface slot was retargeted at the
// packed atlas, for the caller's non-destructive swap mechanism.
type RemapInstruction struct {
	Surface  string
	Slot     int
	Material string
	Rect     gmath.Rect
	Baked    bool // coordinates rewritten in place (driver-linked mode)
	Skipped  bool
	Reason   string
}

// remapTransform chains a placement rectangle onto an existing tiling
// transform: newScale = scale*rect.size, newOffset = offset*rect.size +
// rect.origin. Chaining, not replacing, preserves pre-existing tiling.
func remapTransform(scale, offset gmath.Vec2, rect gmath.Rect) (gmath.Vec2, gmath.Vec2) {
	size := rect.Size()
	return scale.Mul(size), offset.Mul(size).Add(rect.Origin())
}

// bakeSurfaces rewrites surface coordinates for driver-linked mode:
// new = rect.origin + old*rect.size, applied per slot. A surface whose
// slots map to more than one distinct rectangle is skipped whole and
// logged; one UV channel cannot serve two layouts, and a wrong bake would
// be silent corruption.
func bakeSurfaces(surfaces []*Surface, rectFor map[string]gmath.Rect, diag *Diagnostics) []RemapInstruction {
	var out []RemapInstruction
	for _, surf := range surfaces {
		var affected []int
		var distinct []gmath.Rect
		for si, slot := range surf.Slots {
			r, ok := rectFor[slot.Material]
			if !ok {
				continue
			}
			affected = append(affected, si)
			seen := false
			for _, d := range distinct {
				if d == r {
					seen = true
					break
				}
			}
			if !seen {
				distinct = append(distinct, r)
			}
		}
		if len(affected) == 0 {
			continue
		}
		if len(distinct) > 1 {
			diag.warnf("remap", "surface %q maps to %d distinct rectangles, remap skipped", surf.Name, len(distinct))
			for _, si := range affected {
				out = append(out, RemapInstruction{
					Surface:  surf.Name,
					Slot:     si,
					Material: surf.Slots[si].Material,
					Skipped:  true,
					Reason:   "ambiguous: multiple placement rectangles on one UV channel",
				})
			}
			continue
		}

		for _, si := range affected {
			slot := surf.Slots[si]
			rect := rectFor[slot.Material]
			end := slot.Start + slot.Count
			if end > len(surf.UV) {
				end = len(surf.UV)
			}
			for vi := slot.Start; vi < end; vi++ {
				surf.UV[vi] = rect.Transform(surf.UV[vi])
			}
			out = append(out, RemapInstruction{
				Surface:  surf.Name,
				Slot:     si,
				Material: slot.Material,
				Rect:     rect,
				Baked:    true,
			})
		}
	}
	return out
}

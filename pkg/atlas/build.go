package atlas

import (
	"fmt"
	"sync"

	"github.com/Faultbox/atlasforge/pkg/imaging"
	gmath "github.com/Faultbox/atlasforge/pkg/math"
	"github.com/Faultbox/atlasforge/pkg/packer"
)

// maxPackAttempts caps the padding-floor and fragmentation repack loop.
const maxPackAttempts = 3

// Atlas is one packed raster image for one property group, shared by
// reference across every member property of the group. Rects is parallel
// to Materials, in normalized [0,1] atlas coordinates. The pixel buffer is
// mutable only during construction and post-processing; it is read-only
// once analysis starts.
type Atlas struct {
	Group     PropertyGroup
	Role      PropertyRole
	Image     *imaging.Image
	Materials []*Material
	Rects     []gmath.Rect
	Analysis  Analysis
	Settings  ImportSettings
}

// packedSet is one subset of materials that packed successfully, with one
// atlas per property group.
type packedSet struct {
	materials []*Material
	atlases   []*Atlas
}

// builder carries per-run state: configuration, the property groups of the
// shader, the content-keyed caches, and the diagnostics stream.
type builder struct {
	cfg    Config
	shader *ShaderDescriptor
	groups []PropertyGroup
	diag   *Diagnostics

	images   *imaging.Cache[*imaging.Image]
	analyses *imaging.Cache[Analysis]
}

// packSubset packs the given materials, bisecting on failure so a single
// oversized or unreadable input degrades the batch into smaller atlases
// instead of aborting it. A subset of one that still fails is dropped from
// atlasing and logged.
func (b *builder) packSubset(materials []*Material) []packedSet {
	sets, err := b.buildAtlases(materials)
	if err == nil {
		return sets
	}
	if len(materials) == 1 {
		b.diag.warnf("packer", "material %q left un-atlased: %v", materials[0].Name, err)
		return nil
	}

	mid := (len(materials) + 1) / 2
	b.diag.infof("packer", "packing %d materials failed (%v), splitting %d/%d",
		len(materials), err, mid, len(materials)-mid)

	if b.cfg.Parallel {
		var left, right []packedSet
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			left = b.packSubset(materials[:mid])
		}()
		go func() {
			defer wg.Done()
			right = b.packSubset(materials[mid:])
		}()
		wg.Wait()
		return append(left, right...)
	}
	return append(b.packSubset(materials[:mid]), b.packSubset(materials[mid:])...)
}

// buildAtlases attempts a direct pack across all property groups for one
// material subset. The driver group is packed first; the remaining groups
// either replicate its exact layout (driver-linked) or pack independently.
func (b *builder) buildAtlases(materials []*Material) ([]packedSet, error) {
	sizes := b.materialSizes(materials)

	driverRes, pad, err := b.packWithRetries(sizes)
	if err != nil {
		return nil, err
	}

	set := packedSet{materials: materials}
	for gi, group := range b.groups {
		res := driverRes
		if gi > 0 && b.cfg.Mode == ModeIndependent {
			// Same per-material sizes for consistency, but the group keeps
			// its own placements and scale/offset.
			res, pad, err = b.packWithRetries(sizes)
			if err != nil {
				return nil, err
			}
		}

		img, err := b.compose(group, materials, res, pad)
		if err != nil {
			return nil, err
		}

		set.atlases = append(set.atlases, &Atlas{
			Group:     group,
			Role:      group.Representative.Role,
			Image:     img,
			Materials: materials,
			Rects:     normalizeRects(res),
		})
	}
	return []packedSet{set}, nil
}

// packWithRetries runs the bin packer with the padding floor and
// fragmentation control applied. Padding is raised to the mip-safe floor
// of the produced size; a low-utilization result triggers one repack at an
// estimated smaller size. Retries are capped; the last good result wins
// if a retry overflows.
func (b *builder) packWithRetries(sizes []packer.Size) (*packer.Result, int, error) {
	pad := b.cfg.Padding
	maxDim := b.cfg.MaxAtlasSize

	var chosen *packer.Result
	chosenPad := pad
	for attempt := 0; attempt < maxPackAttempts; attempt++ {
		res, err := packer.Pack(sizes, maxDim, pad)
		if err != nil {
			if chosen != nil {
				break
			}
			return nil, 0, err
		}
		chosen, chosenPad = res, pad

		dim := res.Width
		if res.Height > dim {
			dim = res.Height
		}
		if floor := effectivePadding(pad, dim); floor != pad {
			b.diag.debugf("packer", "padding %d below mip-safe floor %d for %dpx atlas, repacking", pad, floor, dim)
			pad = floor
			continue
		}
		if smaller, ok := shrinkEstimate(res, b.cfg.TargetUtilization, maxDim); ok {
			b.diag.debugf("packer", "utilization %.2f below target %.2f, retrying at %dpx",
				res.Utilization(), b.cfg.TargetUtilization, smaller)
			maxDim = smaller
			continue
		}
		break
	}
	return chosen, chosenPad, nil
}

// materialSizes returns the packing size for each material: the maximum
// native dimensions across all of its candidate properties, floored at the
// configured minimum image size.
func (b *builder) materialSizes(materials []*Material) []packer.Size {
	sizes := make([]packer.Size, len(materials))
	for i, m := range materials {
		w, h := 0, 0
		for _, group := range b.groups {
			for _, prop := range group.Members {
				p, ok := m.Property(prop.Name)
				if !ok || p.Image == nil {
					continue
				}
				if p.Image.Width > w {
					w = p.Image.Width
				}
				if p.Image.Height > h {
					h = p.Image.Height
				}
			}
		}
		if w < b.cfg.MinImageSize {
			w = b.cfg.MinImageSize
		}
		if h < b.cfg.MinImageSize {
			h = b.cfg.MinImageSize
		}
		sizes[i] = packer.Size{W: w, H: h}
	}
	return sizes
}

// compose blits every material's image for the group's representative
// property into a fresh atlas buffer at the packed placements, expands
// seams, and renormalizes normal-role content.
func (b *builder) compose(group PropertyGroup, materials []*Material, res *packer.Result, pad int) (*imaging.Image, error) {
	rep := group.Representative
	img := imaging.New(
		fmt.Sprintf("atlas/%s/%s", b.shader.Name, rep.Name),
		res.Width, res.Height,
	)

	for i, m := range materials {
		pl := res.Placements[i]
		src := b.sourceImage(m, rep, pl.W, pl.H)
		resized, err := b.resized(src, pl.W, pl.H)
		if err != nil {
			return nil, fmt.Errorf("material %q property %q: %w", m.Name, rep.Name, err)
		}
		img.Blit(resized, pl.X, pl.Y)
	}

	expandSeams(img, res.Placements, pad)
	if rep.Role == RoleNormal {
		renormalizeNormals(img)
	}
	return img, nil
}

// sourceImage returns the material's assigned image for the property, or a
// role-directed placeholder when the slot is empty.
func (b *builder) sourceImage(m *Material, prop PropertyDesc, w, h int) *imaging.Image {
	if p, ok := m.Property(prop.Name); ok && p.Image != nil {
		return p.Image
	}
	id := fmt.Sprintf("placeholder/%s/%s", prop.Role, prop.Name)
	return imaging.Placeholder(id, prop.Role == RoleNormal, w, h)
}

// resized memoizes resampling by content fingerprint and target size, so
// the same source image reused across properties is only resampled once.
func (b *builder) resized(src *imaging.Image, w, h int) (*imaging.Image, error) {
	key := resizeKey(imaging.ComputeFingerprint(src), w, h)
	if cached, ok := b.images.Get(key); ok {
		return cached, nil
	}
	out, err := imaging.Resize(src, w, h)
	if err != nil {
		return nil, err
	}
	b.images.Put(key, out)
	return out, nil
}

// resizeKey folds the target dimensions into a content fingerprint.
func resizeKey(fp imaging.Fingerprint, w, h int) imaging.Fingerprint {
	return fp ^ imaging.Fingerprint(uint64(w)*0x9e3779b97f4a7c15) ^ imaging.Fingerprint(uint64(h)*0xc2b2ae3d27d4eb4f)
}

// normalizeRects converts pixel placements into [0,1] atlas coordinates.
func normalizeRects(res *packer.Result) []gmath.Rect {
	rects := make([]gmath.Rect, len(res.Placements))
	w, h := float32(res.Width), float32(res.Height)
	for i, p := range res.Placements {
		rects[i] = gmath.Rect{
			X: float32(p.X) / w,
			Y: float32(p.Y) / h,
			W: float32(p.W) / w,
			H: float32(p.H) / h,
		}
	}
	return rects
}

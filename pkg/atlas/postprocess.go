package atlas

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/atlasforge/pkg/imaging"
	"github.com/Faultbox/atlasforge/pkg/packer"
)

// MipLevels returns the mip chain length for a square texture of the given
// size: the base level plus one per halving down to 1 pixel.
func MipLevels(size int) int {
	levels := 1
	for size > 1 {
		size /= 2
		levels++
	}
	return levels
}

// MinPadding computes the mip-safe padding floor for an atlas size:
// max(1, 2^(mipLevels-6)). Below this gap, adjacent images bleed into each
// other's mip chain.
func MinPadding(atlasSize int) int {
	shift := MipLevels(atlasSize) - 6
	if shift < 0 {
		shift = 0
	}
	p := 1 << shift
	if p < 1 {
		p = 1
	}
	return p
}

// effectivePadding raises the configured padding to the mip-safe floor for
// the given atlas size.
func effectivePadding(configured, atlasSize int) int {
	if floor := MinPadding(atlasSize); configured < floor {
		return floor
	}
	return configured
}

// shrinkEstimate suggests a smaller power-of-two atlas size when the
// packing's utilization falls below target. The suggestion keeps 5%
// headroom over the placed area and never goes below the largest single
// placed image. Returns false when no smaller size would help.
func shrinkEstimate(res *packer.Result, target float64, maxDim int) (int, bool) {
	if res.Utilization() >= target {
		return 0, false
	}
	used := 0
	largest := 0
	for _, p := range res.Placements {
		used += p.W * p.H
		if p.W > largest {
			largest = p.W
		}
		if p.H > largest {
			largest = p.H
		}
	}
	need := float64(used) * 1.05
	dim := powerOfTwoFloor(largest)
	if dim < largest {
		dim *= 2
	}
	for float64(dim)*float64(dim) < need {
		dim *= 2
	}
	current := res.Width
	if res.Height > current {
		current = res.Height
	}
	if dim >= current || dim > maxDim {
		return 0, false
	}
	return dim, true
}

// expandSeams replicates the outermost row/column of every placed
// rectangle outward by padding pixels on all four sides, clamped to the
// atlas bounds. Run after all images are blitted; it keeps bilinear
// sampling and mip generation from pulling in a neighbor's pixels.
func expandSeams(im *imaging.Image, placements []packer.Placement, padding int) {
	for _, p := range placements {
		x0, y0 := p.X, p.Y
		x1, y1 := p.X+p.W-1, p.Y+p.H-1

		for off := 1; off <= padding; off++ {
			// Left and right columns.
			for y := y0; y <= y1; y++ {
				if x0-off >= 0 {
					r, g, b, a := im.At(x0, y)
					im.Set(x0-off, y, r, g, b, a)
				}
				if x1+off < im.Width {
					r, g, b, a := im.At(x1, y)
					im.Set(x1+off, y, r, g, b, a)
				}
			}
			// Top and bottom rows, including corners.
			for x := x0 - off; x <= x1+off; x++ {
				if x < 0 || x >= im.Width {
					continue
				}
				sx := x
				if sx < x0 {
					sx = x0
				}
				if sx > x1 {
					sx = x1
				}
				if y0-off >= 0 {
					r, g, b, a := im.At(sx, y0)
					im.Set(x, y0-off, r, g, b, a)
				}
				if y1+off < im.Height {
					r, g, b, a := im.At(sx, y1)
					im.Set(x, y1+off, r, g, b, a)
				}
			}
		}
	}
}

// renormalizeNormals inspects a pixel sample of a normal-role atlas; when
// blue-channel values suggest the content is not a well-formed
// tangent-space map, it reconstructs every pixel's vector, renormalizes,
// flips a negative Z convention, and re-encodes.
func renormalizeNormals(im *imaging.Image) {
	if !im.Readable() {
		return
	}
	stride := im.MaxDim() / 64
	if stride < 1 {
		stride = 1
	}
	samples, tangent := 0, 0
	for y := 0; y < im.Height; y += stride {
		for x := 0; x < im.Width; x += stride {
			_, _, b, _ := im.At(x, y)
			samples++
			if b >= 128 {
				tangent++
			}
		}
	}
	// A tangent-space map encodes Z >= 0, so blue sits at or above 128
	// almost everywhere.
	if samples == 0 || float64(tangent)/float64(samples) >= 0.9 {
		return
	}

	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			r, g, b, a := im.At(x, y)
			nx := float32(r)/127.5 - 1
			ny := float32(g)/127.5 - 1
			nz := float32(b)/127.5 - 1
			if nz < 0 {
				nz = -nz
			}
			l := math32.Sqrt(nx*nx + ny*ny + nz*nz)
			if l == 0 {
				nx, ny, nz = 0, 0, 1
			} else {
				nx, ny, nz = nx/l, ny/l, nz/l
			}
			im.Set(x, y,
				uint8((nx+1)*127.5),
				uint8((ny+1)*127.5),
				uint8((nz+1)*127.5),
				a)
		}
	}
}

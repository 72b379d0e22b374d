// Package packer implements deterministic 2D rectangle bin packing for
// texture atlas construction. It uses a guillotine free-space strategy:
// each placement consumes a free rectangle and splits the remainder into at
// most two smaller free rectangles, choosing the candidate that grows the
// occupied area least.
package packer

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOverflow is returned when the input sizes cannot be packed within the
// maximum dimension, even after oversized inputs are shrunk to fit.
var ErrOverflow = errors.New("packer: sizes do not fit within maximum dimension")

// Size is the pixel extent of one rectangle to place.
type Size struct {
	W, H int
}

// Placement is where one input rectangle landed, in pixels. W and H may be
// smaller than the requested size if the input was oversized and had to be
// shrunk to fit the maximum dimension.
type Placement struct {
	X, Y, W, H int
}

// Result holds a finished packing: the atlas dimensions and one placement
// per input size, in input order.
type Result struct {
	Width      int
	Height     int
	Placements []Placement
}

// Utilization returns the fraction of the atlas area covered by placed
// rectangles, excluding padding.
func (r *Result) Utilization() float64 {
	if r.Width == 0 || r.Height == 0 {
		return 0
	}
	used := 0
	for _, p := range r.Placements {
		used += p.W * p.H
	}
	return float64(used) / float64(r.Width*r.Height)
}

// Pack places the given sizes into a single power-of-two atlas no larger
// than maxDim on either side, keeping at least padding pixels between any
// two rectangles and between a rectangle and the atlas edge.
//
// Placement is deterministic: identical input always yields an identical
// result. Returns ErrOverflow if no power-of-two size up to maxDim fits.
func Pack(sizes []Size, maxDim, padding int) (*Result, error) {
	if maxDim <= 0 {
		return nil, fmt.Errorf("packer: invalid maximum dimension %d", maxDim)
	}
	if padding < 0 {
		return nil, fmt.Errorf("packer: invalid padding %d", padding)
	}
	if len(sizes) == 0 {
		return nil, errors.New("packer: no sizes to pack")
	}

	// Shrink oversized inputs so each fits the maximum dimension on its own,
	// preserving aspect ratio. The caller resamples images into their final
	// rectangles, so a shrunk placement stays usable.
	padded := make([]Size, len(sizes))
	totalArea := 0
	largest := 0
	for i, s := range sizes {
		w, h := s.W, s.H
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("packer: invalid size %dx%d at index %d", w, h, i)
		}
		limit := maxDim - 2*padding
		if limit < 1 {
			limit = 1
		}
		if w > limit || h > limit {
			w, h = shrinkToFit(w, h, limit)
		}
		padded[i] = Size{w + 2*padding, h + 2*padding}
		totalArea += padded[i].W * padded[i].H
		if padded[i].W > largest {
			largest = padded[i].W
		}
		if padded[i].H > largest {
			largest = padded[i].H
		}
	}

	// Largest-first placement order, stable on input index for determinism.
	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := padded[order[a]], padded[order[b]]
		am, bm := maxInt(pa.W, pa.H), maxInt(pb.W, pb.H)
		if am != bm {
			return am > bm
		}
		return pa.W*pa.H > pb.W*pb.H
	})

	for dim := startDim(totalArea, largest); dim <= maxDim; dim *= 2 {
		placements, ok := tryPack(padded, order, dim)
		if !ok {
			continue
		}
		res := &Result{Width: dim, Height: dim, Placements: make([]Placement, len(sizes))}
		bottom := 0
		for i, p := range placements {
			// Report the inner rectangle, without its padding ring.
			res.Placements[i] = Placement{
				X: p.X + padding,
				Y: p.Y + padding,
				W: padded[i].W - 2*padding,
				H: padded[i].H - 2*padding,
			}
			if p.Y+padded[i].H > bottom {
				bottom = p.Y + padded[i].H
			}
		}
		// Square-ish, not strictly square: drop unused bottom rows to the
		// covering power of two.
		res.Height = powerOfTwoCeil(bottom)
		if res.Height > dim {
			res.Height = dim
		}
		return res, nil
	}
	return nil, ErrOverflow
}

// tryPack attempts to place every padded size into a dim×dim area, visiting
// sizes in the given order. Returns placements indexed like padded.
func tryPack(padded []Size, order []int, dim int) ([]Placement, bool) {
	type space struct {
		x, y, w, h int
	}
	spaces := []space{{0, 0, dim, dim}}
	placements := make([]Placement, len(padded))

	for _, idx := range order {
		s := padded[idx]
		best := -1
		bestArea := dim*dim + 1
		for i, sp := range spaces {
			if sp.w < s.W || sp.h < s.H {
				continue
			}
			if sp.w*sp.h < bestArea {
				best = i
				bestArea = sp.w * sp.h
			}
		}
		if best < 0 {
			return nil, false
		}
		sp := spaces[best]
		placements[idx] = Placement{X: sp.x, Y: sp.y, W: s.W, H: s.H}

		// Guillotine split: remainder below (full width) and to the right
		// (placed height).
		spaces[best] = spaces[len(spaces)-1]
		spaces = spaces[:len(spaces)-1]
		if rem := sp.h - s.H; rem > 0 {
			spaces = append(spaces, space{sp.x, sp.y + s.H, sp.w, rem})
		}
		if rem := sp.w - s.W; rem > 0 {
			spaces = append(spaces, space{sp.x + s.W, sp.y, rem, s.H})
		}
	}
	return placements, true
}

// shrinkToFit scales w×h down proportionally so the larger side equals limit.
func shrinkToFit(w, h, limit int) (int, int) {
	if w >= h {
		nh := h * limit / w
		if nh < 1 {
			nh = 1
		}
		return limit, nh
	}
	nw := w * limit / h
	if nw < 1 {
		nw = 1
	}
	return nw, limit
}

// startDim returns the smallest power of two that could plausibly hold the
// total padded area and the largest single side.
func startDim(totalArea, largest int) int {
	dim := powerOfTwoCeil(largest)
	for dim*dim < totalArea {
		dim *= 2
	}
	if dim < 1 {
		dim = 1
	}
	return dim
}

// powerOfTwoCeil returns the smallest power of two >= n.
func powerOfTwoCeil(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

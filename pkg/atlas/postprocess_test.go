package atlas

import (
	"testing"

	"github.com/Faultbox/atlasforge/pkg/imaging"
	"github.com/Faultbox/atlasforge/pkg/packer"
)

func TestMipLevels(t *testing.T) {
	tests := []struct {
		size, want int
	}{
		{1, 1},
		{2, 2},
		{256, 9},
		{2048, 12},
	}
	for _, tt := range tests {
		if got := MipLevels(tt.size); got != tt.want {
			t.Errorf("MipLevels(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestMinPadding(t *testing.T) {
	tests := []struct {
		size, want int
	}{
		{32, 1},  // 6 levels -> 2^0
		{64, 2},  // 7 levels -> 2^1
		{256, 8}, // 9 levels -> 2^3
		{2048, 64},
	}
	for _, tt := range tests {
		if got := MinPadding(tt.size); got != tt.want {
			t.Errorf("MinPadding(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestEffectivePadding(t *testing.T) {
	if got := effectivePadding(2, 256); got != 8 {
		t.Errorf("effectivePadding(2, 256) = %d, want raised to 8", got)
	}
	if got := effectivePadding(16, 256); got != 16 {
		t.Errorf("effectivePadding(16, 256) = %d, want configured 16", got)
	}
}

func TestExpandSeams(t *testing.T) {
	im := imaging.New("atlas", 16, 16)
	inner := imaging.New("src", 4, 4)
	inner.Fill(200, 10, 10, 255)
	im.Blit(inner, 4, 4)

	expandSeams(im, []packer.Placement{{X: 4, Y: 4, W: 4, H: 4}}, 2)

	// Pixels in the padding ring must replicate the nearest edge pixel.
	checks := [][2]int{{2, 4}, {9, 4}, {4, 2}, {4, 9}, {2, 2}, {9, 9}}
	for _, c := range checks {
		r, g, b, _ := im.At(c[0], c[1])
		if r != 200 || g != 10 || b != 10 {
			t.Errorf("pixel (%d,%d) = %d,%d,%d, want replicated 200,10,10", c[0], c[1], r, g, b)
		}
	}
	// Outside the ring stays untouched.
	if r, _, _, _ := im.At(0, 0); r != 0 {
		t.Errorf("pixel (0,0) modified outside padding ring")
	}
}

func TestShrinkEstimate(t *testing.T) {
	// A 64x64 placement in a 512x512 atlas: utilization far below target.
	res := &packer.Result{
		Width: 512, Height: 512,
		Placements: []packer.Placement{{X: 0, Y: 0, W: 64, H: 64}},
	}
	dim, ok := shrinkEstimate(res, 0.6, 512)
	if !ok {
		t.Fatal("expected a shrink suggestion")
	}
	if dim >= 512 {
		t.Errorf("suggested %d, want smaller than current 512", dim)
	}
	if dim < 64 {
		t.Errorf("suggested %d, below largest input 64", dim)
	}

	// Well-utilized atlas: no suggestion.
	full := &packer.Result{
		Width: 64, Height: 64,
		Placements: []packer.Placement{{X: 0, Y: 0, W: 60, H: 60}},
	}
	if _, ok := shrinkEstimate(full, 0.6, 512); ok {
		t.Error("unexpected shrink suggestion for well-utilized atlas")
	}
}

func TestRenormalizeNormalsFlipsConvention(t *testing.T) {
	// Encode normals with negative Z (blue < 128) everywhere.
	im := imaging.New("normals", 8, 8)
	im.Fill(128, 128, 0, 255)

	renormalizeNormals(im)

	_, _, b, _ := im.At(4, 4)
	if b < 128 {
		t.Errorf("blue channel %d still encodes negative Z", b)
	}
}

func TestRenormalizeNormalsLeavesTangentSpaceAlone(t *testing.T) {
	im := imaging.New("normals", 8, 8)
	im.Fill(128, 128, 255, 255)
	before := append([]byte(nil), im.Pix...)

	renormalizeNormals(im)

	for i := range before {
		if im.Pix[i] != before[i] {
			t.Fatal("well-formed tangent-space map was modified")
		}
	}
}

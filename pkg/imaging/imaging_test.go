package imaging

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// gradientImage creates a w×h stdlib image with per-pixel varying color.
func gradientImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 8), uint8(x + y), 255})
		}
	}
	return img
}

func TestEnsureReadableIdempotent(t *testing.T) {
	im := Deferred("tex/a", gradientImage(16, 16))
	if im.Readable() {
		t.Fatal("deferred image should not be readable")
	}

	first, err := EnsureReadable(im)
	if err != nil {
		t.Fatalf("EnsureReadable failed: %v", err)
	}
	if !first.Readable() {
		t.Fatal("image not readable after EnsureReadable")
	}

	second, err := EnsureReadable(first)
	if err != nil {
		t.Fatalf("second EnsureReadable failed: %v", err)
	}
	if second != first {
		t.Error("EnsureReadable on a readable image should return it unchanged")
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("pixel content changed across EnsureReadable calls")
	}
}

func TestEnsureReadableNoSource(t *testing.T) {
	im := &Image{ID: "tex/missing", Width: 4, Height: 4}
	if _, err := EnsureReadable(im); err == nil {
		t.Error("expected error for image with no pixels and no source")
	}
}

func TestResizeExactDimensions(t *testing.T) {
	im := FromImage("tex/a", gradientImage(32, 32))
	out, err := Resize(im, 8, 12)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if out.Width != 8 || out.Height != 12 {
		t.Errorf("expected 8x12, got %dx%d", out.Width, out.Height)
	}
	if out.ID != im.ID {
		t.Errorf("resize should preserve identity, got %q", out.ID)
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	im := FromImage("tex/a", gradientImage(16, 16))
	out, err := Resize(im, 0, 1)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if out.Width != MinImageDim || out.Height != MinImageDim {
		t.Errorf("expected %dx%d, got %dx%d", MinImageDim, MinImageDim, out.Width, out.Height)
	}
}

func TestResizeNoOpReturnsSame(t *testing.T) {
	im := FromImage("tex/a", gradientImage(16, 16))
	out, err := Resize(im, 16, 16)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if out != im {
		t.Error("same-size resize should return the input image")
	}
}

func TestPlaceholderFill(t *testing.T) {
	n := Placeholder("ph/normal", true, 4, 4)
	r, g, b, a := n.At(2, 2)
	if r != FlatNormal[0] || g != FlatNormal[1] || b != FlatNormal[2] || a != FlatNormal[3] {
		t.Errorf("normal placeholder pixel = %d,%d,%d,%d, want flat normal", r, g, b, a)
	}

	w := Placeholder("ph/white", false, 4, 4)
	r, g, b, a = w.At(0, 0)
	if r != 255 || g != 255 || b != 255 || a != 255 {
		t.Errorf("white placeholder pixel = %d,%d,%d,%d, want opaque white", r, g, b, a)
	}
}

func TestFingerprintStability(t *testing.T) {
	a := FromImage("tex/a", gradientImage(32, 32))
	b := FromImage("tex/b", gradientImage(32, 32))

	if ComputeFingerprint(a) != ComputeFingerprint(b) {
		t.Error("identical content should produce identical fingerprints")
	}

	c := a.Clone()
	c.Set(0, 0, 1, 2, 3, 4)
	if ComputeFingerprint(a) == ComputeFingerprint(c) {
		t.Error("sampled pixel change should alter the fingerprint")
	}
}

func TestFingerprintDimensions(t *testing.T) {
	a := New("flat", 8, 8)
	b := New("flat", 16, 16)
	a.Fill(200, 200, 200, 255)
	b.Fill(200, 200, 200, 255)
	if ComputeFingerprint(a) == ComputeFingerprint(b) {
		t.Error("same fill at different dimensions should differ")
	}
}

func TestCacheGetOrCompute(t *testing.T) {
	cache := NewCache[int]()
	calls := 0
	compute := func() int {
		calls++
		return 42
	}

	if got := cache.GetOrCompute(7, compute); got != 42 {
		t.Errorf("GetOrCompute = %d, want 42", got)
	}
	if got := cache.GetOrCompute(7, compute); got != 42 {
		t.Errorf("GetOrCompute = %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
	if cache.Len() != 1 {
		t.Errorf("cache has %d entries, want 1", cache.Len())
	}
}

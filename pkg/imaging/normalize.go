package imaging

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// ErrNotReadable is returned when an image has neither a pixel buffer nor a
// deferred source to rasterize from.
var ErrNotReadable = errors.New("imaging: image has no pixel data and no source")

// MinImageDim is the smallest dimension Resize will produce.
const MinImageDim = 2

// FlatNormal is the RGBA encoding of the unperturbed tangent-space normal
// (0, 0, 1), used to fill placeholder normal maps.
var FlatNormal = [4]uint8{128, 128, 255, 255}

// EnsureReadable returns an image whose pixel buffer is CPU-addressable.
// Already-readable images are returned unchanged; deferred images are
// rasterized into a new buffer. The input is never mutated.
func EnsureReadable(im *Image) (*Image, error) {
	if im.Readable() {
		return im, nil
	}
	if im.src == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotReadable, im.ID)
	}
	return FromImage(im.ID, im.src), nil
}

// Resize resamples the image to exactly w×h pixels, returning a new image
// with the same identity. Dimensions are clamped to MinImageDim. Uses
// Catmull-Rom resampling for stable, deterministic output in both the
// upscale and downscale direction.
func Resize(im *Image, w, h int) (*Image, error) {
	readable, err := EnsureReadable(im)
	if err != nil {
		return nil, err
	}
	if w < MinImageDim {
		w = MinImageDim
	}
	if h < MinImageDim {
		h = MinImageDim
	}
	if readable.Width == w && readable.Height == h {
		return readable, nil
	}
	out := New(im.ID, w, h)
	xdraw.CatmullRom.Scale(out.RGBA(), image.Rect(0, 0, w, h), readable.RGBA(), readable.RGBA().Bounds(), xdraw.Src, nil)
	return out, nil
}

// Placeholder creates a flat-fill stand-in for a missing image slot:
// the unperturbed normal value for normal-role slots, opaque white for
// everything else.
func Placeholder(id string, normalRole bool, w, h int) *Image {
	im := New(id, w, h)
	if normalRole {
		im.Fill(FlatNormal[0], FlatNormal[1], FlatNormal[2], FlatNormal[3])
	} else {
		im.Fill(255, 255, 255, 255)
	}
	return im
}

// Package imaging provides the pixel-buffer image type used by the atlas
// pipeline, plus normalization (readability, resizing, placeholders) and
// content-fingerprint caching.
package imaging

import (
	"image"
	"image/draw"
)

// Image is a 2D RGBA pixel buffer with a stable identity. The identity is
// what deduplication and grouping key on; two images with the same ID are
// treated as the same asset regardless of buffer address.
//
// Pix may be nil for images that are not CPU-addressable yet (e.g. decoded
// lazily by the caller). EnsureReadable produces an addressable copy.
type Image struct {
	ID     string
	Width  int
	Height int
	Pix    []byte // RGBA, 4 bytes per pixel, row-major; nil if unreadable

	src image.Image // deferred source, used by EnsureReadable
}

// New creates a readable image filled with transparent black.
func New(id string, w, h int) *Image {
	return &Image{
		ID:     id,
		Width:  w,
		Height: h,
		Pix:    make([]byte, w*h*4),
	}
}

// FromImage creates a readable image by rasterizing src immediately.
func FromImage(id string, src image.Image) *Image {
	b := src.Bounds()
	im := New(id, b.Dx(), b.Dy())
	draw.Draw(im.RGBA(), im.RGBA().Bounds(), src, b.Min, draw.Src)
	return im
}

// Deferred creates an unreadable image backed by src. Pixel access is not
// possible until EnsureReadable has been called on it.
func Deferred(id string, src image.Image) *Image {
	b := src.Bounds()
	return &Image{
		ID:     id,
		Width:  b.Dx(),
		Height: b.Dy(),
		src:    src,
	}
}

// Readable reports whether the pixel buffer is CPU-addressable.
func (im *Image) Readable() bool {
	return im.Pix != nil
}

// MaxDim returns the larger of width and height.
func (im *Image) MaxDim() int {
	if im.Width > im.Height {
		return im.Width
	}
	return im.Height
}

// At returns the RGBA value at (x, y). The image must be readable.
func (im *Image) At(x, y int) (r, g, b, a uint8) {
	i := (y*im.Width + x) * 4
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2], im.Pix[i+3]
}

// Set writes the RGBA value at (x, y). The image must be readable.
func (im *Image) Set(x, y int, r, g, b, a uint8) {
	i := (y*im.Width + x) * 4
	im.Pix[i] = r
	im.Pix[i+1] = g
	im.Pix[i+2] = b
	im.Pix[i+3] = a
}

// Fill sets every pixel to the given RGBA value.
func (im *Image) Fill(r, g, b, a uint8) {
	for i := 0; i < len(im.Pix); i += 4 {
		im.Pix[i] = r
		im.Pix[i+1] = g
		im.Pix[i+2] = b
		im.Pix[i+3] = a
	}
}

// Clone returns a readable deep copy with the same identity.
func (im *Image) Clone() *Image {
	out := &Image{ID: im.ID, Width: im.Width, Height: im.Height, src: im.src}
	if im.Pix != nil {
		out.Pix = make([]byte, len(im.Pix))
		copy(out.Pix, im.Pix)
	}
	return out
}

// RGBA wraps the pixel buffer as an *image.RGBA sharing the same memory.
// Mutations through the returned value are visible in the Image.
func (im *Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    im.Pix,
		Stride: im.Width * 4,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}
}

// Blit copies src into the image with its top-left corner at (dx, dy),
// clipped to the destination bounds.
func (im *Image) Blit(src *Image, dx, dy int) {
	for y := 0; y < src.Height; y++ {
		ty := dy + y
		if ty < 0 || ty >= im.Height {
			continue
		}
		for x := 0; x < src.Width; x++ {
			tx := dx + x
			if tx < 0 || tx >= im.Width {
				continue
			}
			si := (y*src.Width + x) * 4
			di := (ty*im.Width + tx) * 4
			copy(im.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
}

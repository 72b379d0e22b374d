package imaging

import (
	"encoding/binary"
	"hash/fnv"
)

// Fingerprint is a best-effort content hash of an image, stable across runs.
// It is computed from dimensions and a coarse pixel sample grid rather than
// every pixel, so it is cheap on large textures while still separating
// visually distinct content.
type Fingerprint uint64

// fingerprintGrid is the sample grid edge length (grid² samples total).
const fingerprintGrid = 8

// ComputeFingerprint hashes the image's dimensions and an 8×8 pixel sample
// grid with FNV-1a. Unreadable images fall back to hashing the identity
// string so they can still participate in caching.
func ComputeFingerprint(im *Image) Fingerprint {
	h := fnv.New64a()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(im.Width))
	binary.LittleEndian.PutUint32(dims[4:], uint32(im.Height))
	h.Write(dims[:])

	if !im.Readable() {
		h.Write([]byte(im.ID))
		return Fingerprint(h.Sum64())
	}

	var px [4]byte
	for gy := 0; gy < fingerprintGrid; gy++ {
		y := gy * im.Height / fingerprintGrid
		for gx := 0; gx < fingerprintGrid; gx++ {
			x := gx * im.Width / fingerprintGrid
			r, g, b, a := im.At(x, y)
			px[0], px[1], px[2], px[3] = r, g, b, a
			h.Write(px[:])
		}
	}
	return Fingerprint(h.Sum64())
}

package geom

import (
	"image"
	"math"
)

// Turn rotates src by angleDeg degrees about its centre. Exact
// multiples of 90 degrees use exact integer sampling; arbitrary angles
// sample by inverse rotation with nearest-neighbour lookup. In every case
// the output canvas keeps src's dimensions; for non-multiples-of-180
// rotations this means corners can sample outside src and come back
// transparent.
func Turn(src *image.NRGBA, angleDeg float32) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	norm := math.Mod(float64(angleDeg), 360)
	if norm < 0 {
		norm += 360
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	switch norm {
	case 0:
		copy(dst.Pix, src.Pix)
		return dst
	case 180:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.SetNRGBA(x, y, src.NRGBAAt(b.Min.X+w-1-x, b.Min.Y+h-1-y))
			}
		}
		return dst
	}

	rad := norm * math.Pi / 180
	cos, sin := math.Cos(-rad), math.Sin(-rad)
	// Snap near-exact trig results for 90/270 to avoid nearest-neighbour
	// jitter from floating point error.
	switch norm {
	case 90:
		cos, sin = 0, -1
	case 270:
		cos, sin = 0, 1
	}

	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		dy := float64(y) - cy + 0.5
		for x := 0; x < w; x++ {
			dx := float64(x) - cx + 0.5
			sx := cx + dx*cos - dy*sin - 0.5
			sy := cy + dx*sin + dy*cos - 0.5
			ix, iy := int(math.Round(sx)), int(math.Round(sy))
			if ix < 0 || ix >= w || iy < 0 || iy >= h {
				continue // leave transparent
			}
			dst.SetNRGBA(x, y, src.NRGBAAt(b.Min.X+ix, b.Min.Y+iy))
		}
	}
	return dst
}

// Package geom implements the geometry primitive: Crop (with
// canvas expansion), Scale (area-average down / nearest-neighbour up),
// Turn (arbitrary-angle rotation), Flip (per cardinal/diagonal direction),
// and Shift (with optional wraparound).
package geom

import (
	"image"
)

func newTransparent(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// paste copies src into dst at the given top-left offset, clipping to
// dst's bounds. Used by Crop's canvas-expansion path.
func paste(dst *image.NRGBA, src *image.NRGBA, off image.Point) {
	sb := src.Bounds()
	db := dst.Bounds()
	for y := sb.Min.Y; y < sb.Max.Y; y++ {
		dy := y - sb.Min.Y + off.Y
		if dy < db.Min.Y || dy >= db.Max.Y {
			continue
		}
		for x := sb.Min.X; x < sb.Max.X; x++ {
			dx := x - sb.Min.X + off.X
			if dx < db.Min.X || dx >= db.Max.X {
				continue
			}
			dst.SetNRGBA(dx, dy, src.NRGBAAt(x, y))
		}
	}
}

package geom

import (
	"fmt"
	"image"
)

// Crop extracts the 1-indexed, inclusive, bottom-left-origin window
// (x1,y1)-(x2,y2) from src. Coordinates are translated to
// top-left origin via (x1',y1',x2',y2') = (x1-1, H-y2, x2, H-(y1-1)). If
// the requested window extends beyond src on any side, the result is a
// canvas sized to the union of src and the window, filled transparent,
// with src pasted at the appropriate offset, before the window is
// extracted; otherwise the window is extracted directly.
func Crop(src *image.NRGBA, x1, y1, x2, y2 int32) (*image.NRGBA, error) {
	if x2 < x1 || y2 < y1 {
		return nil, fmt.Errorf("geom: crop: inverted bounds (%d,%d)-(%d,%d)", x1, y1, x2, y2)
	}
	srcB := src.Bounds()
	w, h := srcB.Dx(), srcB.Dy()

	left := int(x1) - 1
	top := h - int(y2)
	right := int(x2)
	bottom := h - (int(y1) - 1)
	req := image.Rect(left, top, right, bottom)
	srcRect := image.Rect(0, 0, w, h)

	union := srcRect.Union(req)
	canvas := newTransparent(union.Dx(), union.Dy())
	pasteOff := image.Pt(-union.Min.X, -union.Min.Y)
	paste(canvas, src, pasteOff)

	window := req.Sub(union.Min)
	out := newTransparent(window.Dx(), window.Dy())
	paste(out, subImage(canvas, window), image.Point{})
	return out, nil
}

// subImage returns the portion of img within r as a new top-left-anchored
// NRGBA (r may extend outside img's bounds; out-of-bounds pixels are
// skipped by the caller's paste, leaving them transparent).
func subImage(img *image.NRGBA, r image.Rectangle) *image.NRGBA {
	clipped := r.Intersect(img.Bounds())
	if clipped.Empty() {
		return newTransparent(0, 0)
	}
	out := newTransparent(clipped.Dx(), clipped.Dy())
	off := image.Pt(clipped.Min.X-r.Min.X, clipped.Min.Y-r.Min.Y)
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			out.SetNRGBA(x-clipped.Min.X+off.X, y-clipped.Min.Y+off.Y, img.NRGBAAt(x, y))
		}
	}
	return out
}

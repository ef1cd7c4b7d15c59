package geom

import (
	"image"
	"image/color"

	"github.com/tilebound/iconforge/internal/iconref"
)

// unitVector returns the (dx,dy) displacement, in top-left image
// coordinates, of one step in direction dir: North/South move the
// content up/down, East/West move it right/left, and composite
// (intercardinal) directions sum their components.
func unitVector(dir iconref.Dir) (int, int) {
	var dx, dy int
	if dir&iconref.DirNorth != 0 {
		dy--
	}
	if dir&iconref.DirSouth != 0 {
		dy++
	}
	if dir&iconref.DirEast != 0 {
		dx++
	}
	if dir&iconref.DirWest != 0 {
		dx--
	}
	return dx, dy
}

func emod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Shift translates src by offset steps in direction dir. If
// wrap, out-of-bounds source coordinates wrap via Euclidean modulo;
// otherwise they become transparent. offset==0 is a no-op.
func Shift(src *image.NRGBA, dir iconref.Dir, offset int32, wrap bool) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if offset == 0 {
		copy(dst.Pix, src.Pix)
		return dst
	}

	ux, uy := unitVector(dir)
	disp := image.Pt(ux*int(offset), uy*int(offset))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := x-disp.X, y-disp.Y
			var c color.NRGBA
			if wrap {
				c = src.NRGBAAt(b.Min.X+emod(sx, w), b.Min.Y+emod(sy, h))
			} else if sx >= 0 && sx < w && sy >= 0 && sy < h {
				c = src.NRGBAAt(b.Min.X+sx, b.Min.Y+sy)
			}
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}

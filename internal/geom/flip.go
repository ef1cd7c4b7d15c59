package geom

import (
	"fmt"
	"image"

	"github.com/tilebound/iconforge/internal/iconref"
)

// Flip mirrors src according to dir. N/S flip vertically, E/W
// flip horizontally. NE/SW and NW/SE compose a 90-degree rotation with a
// horizontal or vertical flip respectively, and require a square image.
func Flip(src *image.NRGBA, dir iconref.Dir) (*image.NRGBA, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch dir {
	case iconref.DirNorth, iconref.DirSouth:
		return flipVertical(src), nil
	case iconref.DirEast, iconref.DirWest:
		return flipHorizontal(src), nil
	case iconref.DirNortheast, iconref.DirSouthwest, iconref.DirNorthwest, iconref.DirSoutheast:
		if w != h {
			return nil, fmt.Errorf("geom: flip: diagonal direction requires a square image, got %dx%d", w, h)
		}
		return flipDiagonal(src, dir), nil
	default:
		return nil, fmt.Errorf("geom: flip: unsupported direction %d", dir)
	}
}

func flipVertical(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetNRGBA(x, y, src.NRGBAAt(b.Min.X+x, b.Min.Y+h-1-y))
		}
	}
	return dst
}

func flipHorizontal(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetNRGBA(x, y, src.NRGBAAt(b.Min.X+w-1-x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate90CW(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	n := b.Dx() // square, so Dx()==Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dst.SetNRGBA(x, y, src.NRGBAAt(b.Min.X+y, b.Min.Y+n-1-x))
		}
	}
	return dst
}

func rotate90CCW(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	n := b.Dx()
	dst := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dst.SetNRGBA(x, y, src.NRGBAAt(b.Min.X+n-1-y, b.Min.Y+x))
		}
	}
	return dst
}

// flipDiagonal composes a 90-degree rotation with a cardinal flip: NE and
// SW rotate (clockwise and counter-clockwise respectively) then flip
// horizontally; NW and SE rotate then flip vertically.
func flipDiagonal(src *image.NRGBA, dir iconref.Dir) *image.NRGBA {
	switch dir {
	case iconref.DirNortheast:
		return flipHorizontal(rotate90CW(src))
	case iconref.DirSouthwest:
		return flipHorizontal(rotate90CCW(src))
	case iconref.DirNorthwest:
		return flipVertical(rotate90CW(src))
	default: // DirSoutheast
		return flipVertical(rotate90CCW(src))
	}
}

// Package colormatrix implements the MapColors primitive: a
// 5x4 affine remap over normalised RGBA.
package colormatrix

import (
	"image"
	"image/color"

	"github.com/tilebound/iconforge/internal/iconref"
)

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Apply treats each pixel as a normalised (r,g,b,a) in [0,1]^4, applies
// the affine transform m, clamps each output channel to [0,1], and stores
// the result back as 8-bit.
func Apply(src *image.NRGBA, m iconref.MapColorsParams) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := src.NRGBAAt(x, y)
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, applyPixel(p, m))
		}
	}
	return dst
}

func applyPixel(p color.NRGBA, m iconref.MapColorsParams) color.NRGBA {
	r := float32(p.R) / 255
	g := float32(p.G) / 255
	bl := float32(p.B) / 255
	a := float32(p.A) / 255

	outR := clamp01(r*m.R[0] + g*m.G[0] + bl*m.B[0] + a*m.A[0] + m.Constant[0])
	outG := clamp01(r*m.R[1] + g*m.G[1] + bl*m.B[1] + a*m.A[1] + m.Constant[1])
	outB := clamp01(r*m.R[2] + g*m.G[2] + bl*m.B[2] + a*m.A[2] + m.Constant[2])
	outA := clamp01(r*m.R[3] + g*m.G[3] + bl*m.B[3] + a*m.A[3] + m.Constant[3])

	return color.NRGBA{
		R: uint8(outR*255 + 0.5),
		G: uint8(outG*255 + 0.5),
		B: uint8(outB*255 + 0.5),
		A: uint8(outA*255 + 0.5),
	}
}

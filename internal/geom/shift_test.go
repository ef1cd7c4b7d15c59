package geom

import (
	"image"
	"image/color"
	"testing"

	"github.com/tilebound/iconforge/internal/iconref"
)

func TestShiftZeroOffsetIsIdentity(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(2, 2, color.NRGBA{R: 5, A: 255})
	out := Shift(src, iconref.DirEast, 0, false)
	if out.NRGBAAt(2, 2) != src.NRGBAAt(2, 2) {
		t.Errorf("Shift with offset 0 should be identity")
	}
}

func TestShiftWrapPreservesAllPixels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	for x := 0; x < 4; x++ {
		src.SetNRGBA(x, 0, color.NRGBA{R: uint8(x * 50), A: 255})
	}
	out := Shift(src, iconref.DirEast, 1, true)
	// Wrapping a 1-row image by 1 step east is a rotation: every original
	// pixel value must still be present somewhere in the output.
	seen := make(map[uint8]bool)
	for x := 0; x < 4; x++ {
		seen[out.NRGBAAt(x, 0).R] = true
	}
	for x := 0; x < 4; x++ {
		if !seen[uint8(x*50)] {
			t.Errorf("wrap-shift lost pixel value %d", x*50)
		}
	}
}

func TestShiftNoWrapClearsVacatedEdge(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	for x := 0; x < 4; x++ {
		src.SetNRGBA(x, 0, color.NRGBA{R: 255, A: 255})
	}
	out := Shift(src, iconref.DirEast, 1, false)
	if out.NRGBAAt(0, 0).A != 0 {
		t.Errorf("non-wrapping east shift should leave the left edge transparent")
	}
}

package geom

import (
	"image"
	"image/color"
	"testing"

	"github.com/tilebound/iconforge/internal/iconref"
)

// TestFlipPairInvolution is worked example S4: two Flip(dir) applications
// with the same cardinal dir must restore the original image.
func TestFlipPairInvolution(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	src.SetNRGBA(0, 0, color.NRGBA{R: 9, A: 255})

	once, err := Flip(src, iconref.DirNorth)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Flip(once, iconref.DirNorth)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if twice.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				t.Fatalf("double flip not identity at (%d,%d)", x, y)
			}
		}
	}
}

func TestFlipDiagonalNonSquareErrors(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	if _, err := Flip(src, iconref.DirNortheast); err == nil {
		t.Errorf("expected error flipping NE on a non-square image")
	}
}

func TestFlipDiagonalSquareOK(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	if _, err := Flip(src, iconref.DirNortheast); err != nil {
		t.Errorf("unexpected error flipping NE on a square image: %v", err)
	}
}

func TestFlipUnsupportedDirection(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	if _, err := Flip(src, iconref.Dir(0)); err == nil {
		t.Errorf("expected error for an unsupported direction")
	}
}

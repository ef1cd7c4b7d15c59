package geom

import (
	"image"
	"image/color"
	"testing"
)

func TestTurnIdentityAngles(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 2, color.NRGBA{R: 77, A: 255})

	for _, angle := range []float32{0, 360, -360} {
		out := Turn(src, angle)
		if out.NRGBAAt(1, 2) != src.NRGBAAt(1, 2) {
			t.Errorf("Turn(%v) should be identity", angle)
		}
	}
}

func TestTurn180Involution(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(0, 0, color.NRGBA{R: 9, A: 255})

	once := Turn(src, 180)
	twice := Turn(once, 180)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if twice.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				t.Fatalf("two Turn(180) calls should be identity at (%d,%d)", x, y)
			}
		}
	}
}

func TestTurnKeepsCanvasSize(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	out := Turn(src, 37)
	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 4 {
		t.Errorf("Turn must not swap canvas dimensions, got %v", out.Bounds())
	}
}

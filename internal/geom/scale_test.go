package geom

import (
	"image"
	"image/color"
	"testing"
)

func TestScaleIdentity(t *testing.T) {
	src := makeSolid(16, 16, color.NRGBA{G: 200, A: 255})
	out, err := Scale(src, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if out.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				t.Fatalf("Scale to the same size changed pixel (%d,%d)", x, y)
			}
		}
	}
}

func TestScaleZeroErrors(t *testing.T) {
	src := makeSolid(4, 4, color.NRGBA{A: 255})
	if _, err := Scale(src, 0, 4); err == nil {
		t.Errorf("expected error scaling to zero width")
	}
	if _, err := Scale(src, 4, 0); err == nil {
		t.Errorf("expected error scaling to zero height")
	}
}

func TestScaleUpNearestNeighborPreservesColor(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	src.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	src.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, A: 255})

	out, err := Scale(src, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Dx() != 4 || out.Bounds().Dy() != 4 {
		t.Fatalf("unexpected output size %v", out.Bounds())
	}
	if out.NRGBAAt(0, 0).R != 255 {
		t.Errorf("expected top-left quadrant to stay red")
	}
}

// TestAxisRangeOverlapsAdjacentBlocks covers srcDim=10, tgtDim=3, where
// the ceiling-division end boundary makes adjacent target blocks overlap:
// [0,4), [3,7), [6,10).
func TestAxisRangeOverlapsAdjacentBlocks(t *testing.T) {
	cases := []struct {
		t, start, end int
	}{
		{0, 0, 4},
		{1, 3, 7},
		{2, 6, 10},
	}
	for _, c := range cases {
		start, end := axisRange(c.t, 10, 3)
		if start != c.start || end != c.end {
			t.Errorf("axisRange(%d, 10, 3) = [%d,%d), want [%d,%d)", c.t, start, end, c.start, c.end)
		}
	}
}

func TestScaleDownAveragesNonTransparent(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 100, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{})

	out, err := Scale(src, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := out.NRGBAAt(0, 0)
	if got.R != 100 {
		t.Errorf("RGB average should ignore the fully transparent contributor, got R=%d", got.R)
	}
	if got.A != 127 && got.A != 128 {
		t.Errorf("alpha average of 255 and 0 should be ~127/128, got %d", got.A)
	}
}

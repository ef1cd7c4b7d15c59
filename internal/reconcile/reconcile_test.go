package reconcile

import (
	"image"
	"image/color"
	"testing"

	"github.com/tilebound/iconforge/internal/blend"
	"github.com/tilebound/iconforge/internal/icondata"
	"github.com/tilebound/iconforge/internal/iconref"
)

func solidImage(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// TestDirBroadcast is worked example S5: A has dirs=4 frames=1; B has
// dirs=1 frames=1. The output must have dirs=4 frames=1, each image
// equal to overlay(A[d], B[0]).
func TestDirBroadcast(t *testing.T) {
	a := &icondata.IconData{
		Dirs: 4, Frames: 1, Delay: []float32{1},
		Images: []*image.NRGBA{
			solidImage(color.NRGBA{R: 10, A: 255}),
			solidImage(color.NRGBA{G: 10, A: 255}),
			solidImage(color.NRGBA{B: 10, A: 255}),
			solidImage(color.NRGBA{R: 10, G: 10, A: 255}),
		},
	}
	b := &icondata.IconData{
		Dirs: 1, Frames: 1, Delay: []float32{1},
		Images: []*image.NRGBA{solidImage(color.NRGBA{B: 255, A: 255})},
	}

	out, err := Blend(a, b, iconref.BlendOverlay)
	if err != nil {
		t.Fatal(err)
	}
	if out.Dirs != 4 || out.Frames != 1 {
		t.Fatalf("got dirs=%d frames=%d, want dirs=4 frames=1", out.Dirs, out.Frames)
	}
	if len(out.Images) != 4 {
		t.Fatalf("expected 4 output images, got %d", len(out.Images))
	}
	for d := 0; d < 4; d++ {
		want := blend.Pixel(iconref.BlendOverlay, a.Images[d].NRGBAAt(0, 0), b.Images[0].NRGBAAt(0, 0))
		if got := out.Images[d].NRGBAAt(0, 0); got != want {
			t.Errorf("dir %d: got %+v, want %+v", d, got, want)
		}
	}
}

func TestZipRequiresEqualShape(t *testing.T) {
	a := &icondata.IconData{Dirs: 4, Frames: 2, Images: make([]*image.NRGBA, 8)}
	b := &icondata.IconData{Dirs: 8, Frames: 1, Images: make([]*image.NRGBA, 8)}
	for i := range a.Images {
		a.Images[i] = solidImage(color.NRGBA{A: 255})
	}
	for i := range b.Images {
		b.Images[i] = solidImage(color.NRGBA{A: 255})
	}
	if _, err := Blend(a, b, iconref.BlendAdd); err == nil {
		t.Errorf("expected error blending dirs=4 with dirs=8 (no 4->8 expansion)")
	}
}

func TestFrameBroadcast(t *testing.T) {
	a := &icondata.IconData{
		Dirs: 1, Frames: 1, Delay: []float32{1},
		Images: []*image.NRGBA{solidImage(color.NRGBA{R: 1, A: 255})},
	}
	b := &icondata.IconData{
		Dirs: 1, Frames: 3, Delay: []float32{1, 1, 1},
		Images: []*image.NRGBA{
			solidImage(color.NRGBA{G: 1, A: 255}),
			solidImage(color.NRGBA{G: 2, A: 255}),
			solidImage(color.NRGBA{G: 3, A: 255}),
		},
	}
	out, err := Blend(a, b, iconref.BlendAdd)
	if err != nil {
		t.Fatal(err)
	}
	if out.Frames != 3 {
		t.Errorf("expected frames=3, got %d", out.Frames)
	}
}

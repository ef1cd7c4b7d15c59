package blend

import (
	"image"
	"image/color"
	"testing"

	"github.com/tilebound/iconforge/internal/iconref"
)

func makeNRGBA(w, h int, fill color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
	return img
}

// TestColorMultiply is worked example S2: a solid-red 32x32 source
// blended with #808080 under Multiply reads (128, 0, 0, 255): the
// 6-digit color parses with alpha 255, and 255*255/255 = 255.
func TestColorMultiply(t *testing.T) {
	src := makeNRGBA(32, 32, color.NRGBA{R: 0xFF, A: 0xFF})
	c, err := ParseColor("#808080")
	if err != nil {
		t.Fatal(err)
	}
	out := Color(src, c, iconref.BlendMultiply)
	got := out.NRGBAAt(0, 0)
	want := color.NRGBA{R: 128, G: 0, B: 0, A: 255}
	if got != want {
		t.Errorf("Color(..., Multiply) = %+v, want %+v", got, want)
	}
}

// TestMultiplyRoundsRatherThanTruncates covers a channel pair whose
// product is not an exact multiple of 255: 200*200/255 = 156.862...,
// which must round to 157, not truncate to 156.
func TestMultiplyRoundsRatherThanTruncates(t *testing.T) {
	p := color.NRGBA{R: 200, A: 255}
	q := color.NRGBA{R: 200, A: 255}
	got := Pixel(iconref.BlendMultiply, p, q)
	if got.R != 157 {
		t.Errorf("Multiply(200,200) = %d, want 157 (rounded, not truncated)", got.R)
	}
}

func TestParseColorDefaultsAlpha(t *testing.T) {
	c, err := ParseColor("#112233")
	if err != nil {
		t.Fatal(err)
	}
	if c.A != 255 {
		t.Errorf("6-char hex should default to opaque alpha, got %d", c.A)
	}
}

func TestParseColorWithAlpha(t *testing.T) {
	c, err := ParseColor("#11223344")
	if err != nil {
		t.Fatal(err)
	}
	if c.A != 0x44 {
		t.Errorf("8-char hex alpha = %x, want 44", c.A)
	}
}

func TestParseColorInvalid(t *testing.T) {
	if _, err := ParseColor("#zzzzzz"); err == nil {
		t.Errorf("expected error for invalid hex")
	}
}

func TestImagesAddClamps(t *testing.T) {
	a := makeNRGBA(2, 2, color.NRGBA{R: 200, A: 255})
	b := makeNRGBA(2, 2, color.NRGBA{R: 200, A: 255})
	out := Images(a, b, iconref.BlendAdd)
	got := out.NRGBAAt(0, 0)
	if got.R != 255 {
		t.Errorf("Add should clamp R to 255, got %d", got.R)
	}
}

func TestOverlayTransparentBase(t *testing.T) {
	p := color.NRGBA{}
	q := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	got := overlay(p, q)
	if got != q {
		t.Errorf("overlay with a fully transparent base should return q unchanged, got %+v", got)
	}
}

func TestPositionOverlayIdentity(t *testing.T) {
	q := makeNRGBA(4, 4, color.NRGBA{R: 1, A: 255})
	out := PositionOverlay(4, 4, q, 1, 1)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if out.NRGBAAt(x, y) != q.NRGBAAt(x, y) {
				t.Fatalf("PositionOverlay(1,1) should be identity at (%d,%d)", x, y)
			}
		}
	}
}

func TestPositionOverlayClipsOutOfBounds(t *testing.T) {
	q := makeNRGBA(4, 4, color.NRGBA{R: 1, A: 255})
	out := PositionOverlay(2, 2, q, 1, 1)
	if out.Bounds().Dx() != 2 || out.Bounds().Dy() != 2 {
		t.Fatalf("canvas should stay 2x2, got %v", out.Bounds())
	}
}

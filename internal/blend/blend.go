// Package blend implements the per-pixel color compositing primitive:
// Add, Subtract, Multiply, Overlay, and Underlay over 8-bit RGBA.
// Row-parallel dispatch follows the reference codec's pixel-kernel
// pattern (internal/lossy/encode_analysis.go's per-row-range
// goroutines).
package blend

import (
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"

	"github.com/tilebound/iconforge/internal/iconref"
)

func clamp8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// clamp8f rounds v once (matching Rgba::into_array's single `.round()`
// per channel) and saturates to the uint8 range, so a channel product
// like 200*200/255 = 156.862... lands on 157, not the 156 a truncating
// integer division would produce.
func clamp8f(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// mulRound computes a*b/255 in float64 and rounds once, matching the
// ground-truth Rgba blend's `c1 * c2 / 255.0` accumulated in f32.
func mulRound(a, b uint8) uint8 {
	return clamp8f(float64(a) * float64(b) / 255)
}

func min8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

func max8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

// Pixel blends q over p using the given mode. p is the first
// (base) operand, q the second.
func Pixel(mode iconref.BlendMode, p, q color.NRGBA) color.NRGBA {
	switch mode {
	case iconref.BlendAdd:
		return color.NRGBA{
			R: clamp8(int32(p.R) + int32(q.R)),
			G: clamp8(int32(p.G) + int32(q.G)),
			B: clamp8(int32(p.B) + int32(q.B)),
			A: min8(p.A, q.A),
		}
	case iconref.BlendSubtract:
		return color.NRGBA{
			R: clamp8(int32(p.R) - int32(q.R)),
			G: clamp8(int32(p.G) - int32(q.G)),
			B: clamp8(int32(p.B) - int32(q.B)),
			A: min8(p.A, q.A),
		}
	case iconref.BlendMultiply:
		return color.NRGBA{
			R: mulRound(p.R, q.R),
			G: mulRound(p.G, q.G),
			B: mulRound(p.B, q.B),
			A: mulRound(p.A, q.A),
		}
	case iconref.BlendOverlay:
		return overlay(p, q)
	case iconref.BlendUnderlay:
		return overlay(q, p)
	default:
		return p
	}
}

// overlay implements Overlay: for each RGB channel, if p.a==0 output q;
// else out = p + (q-p)*q.a/255. Alpha: max(p.a,q.a) + max·min/255.
func overlay(p, q color.NRGBA) color.NRGBA {
	if p.A == 0 {
		return q
	}
	mix := func(pc, qc uint8) uint8 {
		return clamp8f(float64(pc) + (float64(qc)-float64(pc))*float64(q.A)/255)
	}
	mx, mn := max8(p.A, q.A), min8(p.A, q.A)
	a := clamp8f(float64(mx) + float64(mx)*float64(mn)/255)
	return color.NRGBA{R: mix(p.R, q.R), G: mix(p.G, q.G), B: mix(p.B, q.B), A: a}
}

// Color blends the constant color c (as returned by ParseColor) over
// every pixel of src using mode, producing an image the same size as
// src (BlendColor).
func Color(src *image.NRGBA, c color.NRGBA, mode iconref.BlendMode) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	rows(b.Dy(), func(y int) {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := src.NRGBAAt(x, y)
			dst.SetNRGBA(x, y, Pixel(mode, p, c))
		}
	})
	return dst
}

// Images blends q over p using mode. Both images must share the same
// bounds (callers reconcile dir/frame shape and geometry offset before
// calling Images).
func Images(p, q *image.NRGBA, mode iconref.BlendMode) *image.NRGBA {
	b := p.Bounds()
	dst := image.NewNRGBA(b)
	rows(b.Dy(), func(y int) {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetNRGBA(x, y, Pixel(mode, p.NRGBAAt(x, y), q.NRGBAAt(x, y)))
		}
	})
	return dst
}

// rows runs fn(y) for each of n rows, in parallel across runtime.NumCPU
// workers, mirroring the reference codec's per-row-range goroutine split.
func rows(n int, fn func(y int)) {
	if n == 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for y := 0; y < n; y++ {
			fn(y)
		}
		return
	}
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for y := start; y < end; y++ {
				fn(y)
			}
		}(start, end)
	}
	wg.Wait()
}

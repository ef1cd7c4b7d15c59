package geom

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// axisRange returns the half-open [start,end) range of source indices that
// contribute to target index t, for an axis scaled from srcDim to tgtDim.
// When tgtDim >= srcDim (upscale or identity), this is the single
// nearest-neighbour source index. When downscaling, start is
// floor(t*srcDim/tgtDim) and end is ceil((t+1)*srcDim/tgtDim) clamped to
// srcDim, so adjacent target pixels' contributing blocks overlap rather
// than tiling srcDim into disjoint runs.
func axisRange(t, srcDim, tgtDim int) (int, int) {
	if tgtDim >= srcDim {
		s := t * srcDim / tgtDim
		return s, s + 1
	}
	start := int(math.Floor(float64(t) * float64(srcDim) / float64(tgtDim)))
	end := int(math.Ceil(float64(t+1) * float64(srcDim) / float64(tgtDim)))
	if end > srcDim {
		end = srcDim
	}
	if end <= start {
		end = start + 1
	}
	return start, end
}

// Scale resizes src to w×h. Upscaling an axis uses
// nearest-neighbour sampling. Downscaling an axis area-averages the
// contributing source pixels that have nonzero alpha: the output alpha is
// the mean of ALL contributing pixels' alpha (so fully-transparent
// contributors pull it toward zero), while output RGB is the mean of only
// the nonzero-alpha contributors' RGB. A target pixel with no nonzero-alpha
// contributors is fully transparent.
func Scale(src *image.NRGBA, w, h uint32) (*image.NRGBA, error) {
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("geom: scale: target dimensions must be nonzero, got %dx%d", w, h)
	}
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if int(w) == srcW && int(h) == srcH {
		out := image.NewNRGBA(image.Rect(0, 0, srcW, srcH))
		copy(out.Pix, src.Pix)
		out.Stride = src.Stride
		return out, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	for ty := 0; ty < int(h); ty++ {
		sy0, sy1 := axisRange(ty, srcH, int(h))
		for tx := 0; tx < int(w); tx++ {
			sx0, sx1 := axisRange(tx, srcW, int(w))
			dst.SetNRGBA(tx, ty, averageBlock(src, b.Min.X+sx0, b.Min.X+sx1, b.Min.Y+sy0, b.Min.Y+sy1))
		}
	}
	return dst, nil
}

func averageBlock(src *image.NRGBA, x0, x1, y0, y1 int) color.NRGBA {
	var aSum, rSum, gSum, bSum int
	var nonZero, total int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p := src.NRGBAAt(x, y)
			total++
			aSum += int(p.A)
			if p.A > 0 {
				nonZero++
				rSum += int(p.R)
				gSum += int(p.G)
				bSum += int(p.B)
			}
		}
	}
	if total == 0 || nonZero == 0 {
		return color.NRGBA{}
	}
	return color.NRGBA{
		R: uint8(rSum / nonZero),
		G: uint8(gSum / nonZero),
		B: uint8(bSum / nonZero),
		A: uint8(aSum / total),
	}
}

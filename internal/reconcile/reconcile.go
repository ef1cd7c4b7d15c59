// Package reconcile implements the dir/frame reconciler: the
// rules for compositing two IconData values of possibly-different shape
// via BlendIcon.
package reconcile

import (
	"fmt"

	"github.com/tilebound/iconforge/internal/blend"
	"github.com/tilebound/iconforge/internal/icondata"
	"github.com/tilebound/iconforge/internal/iconref"
)

// Blend composites b over a using mode, applying the dir/frame
// broadcasting rules:
//
//   - equal dirs and frames: zip-wise blend in lock step.
//   - b.Dirs==1, a.Dirs>1: broadcast b's single direction across every
//     direction of a, for every frame.
//   - a.Frames==1, b.Frames>1: duplicate a's single frame across b's
//     frames.
//   - anything else is an error.
//
// Output Dirs, LoopFlag, Rewind are inherited from a.
func Blend(a, b *icondata.IconData, mode iconref.BlendMode) (*icondata.IconData, error) {
	switch {
	case a.Dirs == b.Dirs && a.Frames == b.Frames:
		return zip(a, b, mode)
	case b.Dirs == 1 && a.Dirs > 1:
		return blendDirBroadcast(a, b, mode)
	case a.Frames == 1 && b.Frames > 1:
		return blendFrameBroadcast(a, b, mode)
	default:
		return nil, fmt.Errorf("reconcile: incompatible shapes: a(dirs=%d,frames=%d) vs b(dirs=%d,frames=%d)",
			a.Dirs, a.Frames, b.Dirs, b.Frames)
	}
}

func zip(a, b *icondata.IconData, mode iconref.BlendMode) (*icondata.IconData, error) {
	out := &icondata.IconData{
		Frames:   a.Frames,
		Dirs:     a.Dirs,
		Delay:    a.Delay,
		LoopFlag: a.LoopFlag,
		Rewind:   a.Rewind,
	}
	for i := range a.Images {
		out.Images = append(out.Images, blend.Images(a.Images[i], b.Images[i], mode))
	}
	return out, nil
}

// blendDirBroadcast handles b.Dirs==1, a.Dirs>1: broadcast b's single
// direction across each of a's directions, for every frame. This requires
// a.Frames and b.Frames to agree in the base case, but may also combine
// with frame broadcasting if a.Frames==1.
func blendDirBroadcast(a, b *icondata.IconData, mode iconref.BlendMode) (*icondata.IconData, error) {
	frames := a.Frames
	if a.Frames == 1 && b.Frames > 1 {
		frames = b.Frames
	} else if a.Frames != b.Frames {
		return nil, fmt.Errorf("reconcile: dir broadcast requires matching frame counts (or a.Frames==1): a.Frames=%d b.Frames=%d", a.Frames, b.Frames)
	}

	out := &icondata.IconData{
		Frames:   frames,
		Dirs:     a.Dirs,
		LoopFlag: a.LoopFlag,
		Rewind:   a.Rewind,
		Delay:    broadcastDelay(a, frames),
	}
	for f := 0; f < frames; f++ {
		af := f
		if a.Frames == 1 {
			af = 0
		}
		bImg := b.ImageAt(f%b.Frames, 0)
		for d := 0; d < a.Dirs; d++ {
			out.Images = append(out.Images, blend.Images(a.ImageAt(af, d), bImg, mode))
		}
	}
	return out, nil
}

// blendFrameBroadcast handles a.Frames==1, b.Frames>1: duplicate a's
// single frame across all of b's frames and dirs.
func blendFrameBroadcast(a, b *icondata.IconData, mode iconref.BlendMode) (*icondata.IconData, error) {
	if a.Dirs != b.Dirs {
		return nil, fmt.Errorf("reconcile: frame broadcast requires matching dir counts: a.Dirs=%d b.Dirs=%d", a.Dirs, b.Dirs)
	}
	out := &icondata.IconData{
		Frames:   b.Frames,
		Dirs:     a.Dirs,
		LoopFlag: a.LoopFlag,
		Rewind:   a.Rewind,
		Delay:    broadcastDelay(a, b.Frames),
	}
	for f := 0; f < b.Frames; f++ {
		for d := 0; d < a.Dirs; d++ {
			out.Images = append(out.Images, blend.Images(a.ImageAt(0, d), b.ImageAt(f, d), mode))
		}
	}
	return out, nil
}

// broadcastDelay extends a's delay to n entries by repeating a's first
// delay (default 1.0), truncating if a had more delays than frames.
func broadcastDelay(a *icondata.IconData, n int) []float32 {
	first := float32(1.0)
	if len(a.Delay) > 0 {
		first = a.Delay[0]
	}
	out := make([]float32, n)
	for i := range out {
		if i < len(a.Delay) {
			out[i] = a.Delay[i]
		} else {
			out[i] = first
		}
	}
	return out
}

// Package icondata defines IconData, the in-memory materialised view of a
// (possibly multi-dir, multi-frame) animation selection. It is the value
// type both the icon-data cache and the transform-tree optimiser operate
// on.
package icondata

import (
	"fmt"
	"image"

	"github.com/tilebound/iconforge/internal/dmi"
	"github.com/tilebound/iconforge/internal/iconref"
)

// IconData is an in-memory materialised animation: images, all the same
// size, indexed as frame*Dirs+dir, plus timing/loop metadata. Invariant:
// len(Images) == Dirs*Frames.
type IconData struct {
	Images   []*image.NRGBA
	Frames   int
	Dirs     int
	Delay    []float32
	LoopFlag int32
	Rewind   bool
}

// ImageAt returns the image for 0-based (frame, dirIndex).
func (d *IconData) ImageAt(frame, dirIndex int) *image.NRGBA {
	return d.Images[frame*d.Dirs+dirIndex]
}

// Clone returns a deep copy of d (images included), the unit of work the
// transform-tree optimiser clones before applying a distinguishing
// transform to a partition.
func (d *IconData) Clone() *IconData {
	out := &IconData{
		Frames:   d.Frames,
		Dirs:     d.Dirs,
		LoopFlag: d.LoopFlag,
		Rewind:   d.Rewind,
		Images:   make([]*image.NRGBA, len(d.Images)),
	}
	out.Delay = append([]float32(nil), d.Delay...)
	for i, img := range d.Images {
		cp := image.NewNRGBA(img.Bounds())
		copy(cp.Pix, img.Pix)
		out.Images[i] = cp
	}
	return out
}

// FromState selects dir/frame from a decoded IconState (dir=0 or frame=0
// means "all"), producing the corresponding IconData.
func FromState(st *dmi.IconState, dir iconref.Dir, frame uint32) (*IconData, error) {
	if dir == iconref.DirNone && frame == 0 {
		return &IconData{
			Images:   append([]*image.NRGBA(nil), st.Images...),
			Frames:   st.Frames,
			Dirs:     st.Dirs,
			Delay:    append([]float32(nil), st.Delay...),
			LoopFlag: st.LoopFlag,
			Rewind:   st.Rewind,
		}, nil
	}

	frames := st.Frames
	frameIdxs := []int{}
	if frame == 0 {
		for f := 0; f < frames; f++ {
			frameIdxs = append(frameIdxs, f)
		}
	} else {
		if int(frame) > frames {
			return nil, fmt.Errorf("icondata: frame %d out of range (state has %d frames)", frame, frames)
		}
		frameIdxs = append(frameIdxs, int(frame)-1)
	}

	dirIdxs := []int{}
	if dir == iconref.DirNone {
		for d := 0; d < st.Dirs; d++ {
			dirIdxs = append(dirIdxs, d)
		}
	} else {
		idx, ok := iconref.Index(dir, st.Dirs)
		if !ok {
			return nil, fmt.Errorf("icondata: direction %d not valid for a %d-dir state", dir, st.Dirs)
		}
		dirIdxs = append(dirIdxs, idx)
	}

	out := &IconData{
		Frames:   len(frameIdxs),
		Dirs:     len(dirIdxs),
		LoopFlag: st.LoopFlag,
		Rewind:   st.Rewind,
	}
	for _, f := range frameIdxs {
		for _, d := range dirIdxs {
			out.Images = append(out.Images, st.ImageAt(f, d))
		}
		if f < len(st.Delay) {
			out.Delay = append(out.Delay, st.Delay[f])
		} else {
			out.Delay = append(out.Delay, 1.0)
		}
	}
	return out, nil
}

// Flatten collapses d to a single image, picking dir=S (or the given
// dir/frame scope) as GLOSSARY "Flatten" specifies.
func (d *IconData) Flatten() *IconData {
	img := d.ImageAt(0, 0)
	return &IconData{
		Images:   []*image.NRGBA{img},
		Frames:   1,
		Dirs:     1,
		Delay:    []float32{1.0},
		LoopFlag: d.LoopFlag,
		Rewind:   d.Rewind,
	}
}

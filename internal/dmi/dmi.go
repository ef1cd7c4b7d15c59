package dmi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"runtime"
	"sync"
)

// IconState is one named entry in an icon set: dirs ∈ {1,4,8}, frames ≥ 1,
// an optional per-frame delay in centiseconds,
// loop/rewind flags, and an image list of length dirs×frames indexed as
// frame_index*dirs + dir_index.
type IconState struct {
	Name     string
	Dirs     int
	Frames   int
	Delay    []float32 // len == Frames, or nil (caller treats missing entries as 1.0)
	LoopFlag int32
	Rewind   bool
	Images   []*image.NRGBA // len == Dirs*Frames, all identical bounds
}

// ImageAt returns the image for the given 0-based frame and dir index.
func (s *IconState) ImageAt(frame, dirIdx int) *image.NRGBA {
	return s.Images[frame*s.Dirs+dirIdx]
}

// IconSet is the ordered list of IconStates decoded from one animation
// file.
type IconSet struct {
	States []*IconState
}

// ByName returns the state with the given name, or nil.
func (s *IconSet) ByName(name string) *IconState {
	for _, st := range s.States {
		if st.Name == name {
			return st
		}
	}
	return nil
}

// Decode parses the full contents of an icon-set container into an
// IconSet. Frame images across all states are decoded in parallel,
// following the reference codec's row/unit-parallel decode pattern (e.g.
// internal/lossless/decode.go's per-row-range goroutines): here the unit
// of parallelism is the state, since states are decoded independently.
func Decode(data []byte) (*IconSet, error) {
	if len(data) < 4 || binary.LittleEndian.Uint32(data[0:4]) != fccMagic {
		return nil, errBadMagic
	}
	data = data[4:]

	var chunks []chunk
	for len(data) > 0 {
		c, n, err := readChunk(data)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
		data = data[n:]
	}

	states := make([]*IconState, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())
	for i, c := range chunks {
		if err := requireChunk(c, fccState); err != nil {
			return nil, err
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, payload []byte) {
			defer wg.Done()
			defer func() { <-sem }()
			st, err := decodeState(payload)
			states[i] = st
			errs[i] = err
		}(i, c.payload)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &IconSet{States: states}, nil
}

func decodeState(payload []byte) (*IconState, error) {
	r := bytes.NewReader(payload)
	st := &IconState{}

	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, err
	}
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, err
	}
	st.Name = string(nameBuf)

	var dirs uint8
	var frames uint32
	var loopFlag int32
	var rewind uint8
	var w, h uint32
	if err := binary.Read(r, binary.LittleEndian, &dirs); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &frames); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &loopFlag); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &rewind); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	st.Dirs = int(dirs)
	st.Frames = int(frames)
	st.LoopFlag = loopFlag
	st.Rewind = rewind != 0

	st.Delay = make([]float32, frames)
	for i := range st.Delay {
		if err := binary.Read(r, binary.LittleEndian, &st.Delay[i]); err != nil {
			return nil, err
		}
	}

	n := int(dirs) * int(frames)
	st.Images = make([]*image.NRGBA, n)
	frameBytes := int(w) * int(h) * 4
	for i := 0; i < n; i++ {
		buf := make([]byte, frameBytes)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("dmi: state %q frame %d: %w", st.Name, i, err)
		}
		st.Images[i] = &image.NRGBA{
			Pix:    buf,
			Stride: int(w) * 4,
			Rect:   image.Rect(0, 0, int(w), int(h)),
		}
	}
	return st, nil
}

// Encode serializes an IconSet back into container bytes. Every state in
// the set must have square-consistent, non-empty image lists; Encode does
// not validate cross-state canvas-size agreement (callers needing that,
// e.g. DMI-mode spritesheet output, check it themselves).
func Encode(set *IconSet) ([]byte, error) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, fccMagic)

	for _, st := range set.States {
		payload, err := encodeState(st)
		if err != nil {
			return nil, err
		}
		buf = appendChunk(buf, fccState, payload)
	}
	return buf, nil
}

func encodeState(st *IconState) ([]byte, error) {
	if len(st.Images) != st.Dirs*st.Frames {
		return nil, fmt.Errorf("dmi: state %q: images len %d != dirs*frames %d", st.Name, len(st.Images), st.Dirs*st.Frames)
	}
	var w, h int
	if len(st.Images) > 0 {
		b := st.Images[0].Bounds()
		w, h = b.Dx(), b.Dy()
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(len(st.Name)))
	buf.WriteString(st.Name)
	binary.Write(&buf, binary.LittleEndian, uint8(st.Dirs))
	binary.Write(&buf, binary.LittleEndian, uint32(st.Frames))
	binary.Write(&buf, binary.LittleEndian, st.LoopFlag)
	rewind := uint8(0)
	if st.Rewind {
		rewind = 1
	}
	binary.Write(&buf, binary.LittleEndian, rewind)
	binary.Write(&buf, binary.LittleEndian, uint32(w))
	binary.Write(&buf, binary.LittleEndian, uint32(h))

	delay := st.Delay
	if len(delay) < st.Frames {
		padded := make([]float32, st.Frames)
		copy(padded, delay)
		for i := len(delay); i < st.Frames; i++ {
			padded[i] = 1.0
		}
		delay = padded
	}
	for _, d := range delay[:st.Frames] {
		binary.Write(&buf, binary.LittleEndian, d)
	}

	for _, img := range st.Images {
		nrgba := toNRGBASameSize(img, w, h)
		buf.Write(nrgba.Pix)
	}
	return buf.Bytes(), nil
}

// toNRGBASameSize returns img re-packed as a tightly-strided NRGBA of
// exactly w×h, reusing Pix directly when it is already in that shape.
func toNRGBASameSize(img *image.NRGBA, w, h int) *image.NRGBA {
	if img.Stride == w*4 && img.Rect.Dx() == w && img.Rect.Dy() == h && img.Rect.Min == (image.Point{}) {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetNRGBA(x, y, img.NRGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y))
		}
	}
	return dst
}

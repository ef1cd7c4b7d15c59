// Package pack implements the spritesheet packer: grouping per-sprite
// output images by "{w}x{h}" size-id and emitting either a flat PNG
// spritesheet per group or one animation file per group.
package pack

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sort"
	"sync"

	"github.com/tilebound/iconforge/internal/dmi"
	"github.com/tilebound/iconforge/internal/icondata"
)

// Sprite is one named, fully-resolved sprite ready for packing.
type Sprite struct {
	Name string
	Data *icondata.IconData
}

// Position locates a packed sprite within its size-group.
type Position struct {
	SizeID   string
	Position int
}

// group accumulates sprites of one size-id, preserving the insertion
// order of first completion per size-group.
type group struct {
	mu      sync.Mutex
	names   []string
	sprites []Sprite
}

func (g *group) add(s Sprite) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	pos := len(g.sprites)
	g.names = append(g.names, s.Name)
	g.sprites = append(g.sprites, s)
	return pos
}

// Sheet is the result of packing in PNG mode: per-size-id concatenated
// images, plus every sprite's group and offset within it.
type Sheet struct {
	Images    map[string]image.Image
	Positions map[string]Position
}

// PackPNG implements flat PNG spritesheet mode: every sprite must be
// flattened (a single frame, single dir) before packing. Sprites are
// grouped by
// "{w}x{h}"; within a group, images are concatenated left to right in
// the order groups were filled, and sprite i sits at x-offset i*w.
func PackPNG(sprites []Sprite) (*Sheet, error) {
	groups := make(map[string]*group)
	var order []string
	var orderMu sync.Mutex

	for _, s := range sprites {
		if len(s.Data.Images) != 1 {
			return nil, fmt.Errorf("pack: sprite %q is not flattened (has %d images)", s.Name, len(s.Data.Images))
		}
		b := s.Data.Images[0].Bounds()
		sizeID := fmt.Sprintf("%dx%d", b.Dx(), b.Dy())

		orderMu.Lock()
		g, ok := groups[sizeID]
		if !ok {
			g = &group{}
			groups[sizeID] = g
			order = append(order, sizeID)
		}
		orderMu.Unlock()
		g.add(s)
	}

	sheet := &Sheet{
		Images:    make(map[string]image.Image),
		Positions: make(map[string]Position),
	}
	for _, sizeID := range order {
		g := groups[sizeID]
		if len(g.sprites) == 0 {
			continue
		}
		w := g.sprites[0].Data.Images[0].Bounds().Dx()
		h := g.sprites[0].Data.Images[0].Bounds().Dy()
		canvas := image.NewNRGBA(image.Rect(0, 0, w*len(g.sprites), h))
		for i, s := range g.sprites {
			draw(canvas, s.Data.Images[0], i*w)
			sheet.Positions[s.Name] = Position{SizeID: sizeID, Position: i}
		}
		sheet.Images[sizeID] = canvas
	}
	return sheet, nil
}

func draw(dst *image.NRGBA, src *image.NRGBA, xOff int) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetNRGBA(xOff+x, y, src.NRGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("pack: encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// PackAnimation implements animation-file mode: one output file per
// size-id, containing one IconState per sprite in that group,
// each preserving its own dirs/frames/delay, sorted by sprite name for
// deterministic output bytes.
func PackAnimation(sprites []Sprite) (map[string]*dmi.IconSet, error) {
	groups := make(map[string][]Sprite)
	for _, s := range sprites {
		if len(s.Data.Images) == 0 {
			return nil, fmt.Errorf("pack: sprite %q has no images", s.Name)
		}
		b := s.Data.Images[0].Bounds()
		sizeID := fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
		groups[sizeID] = append(groups[sizeID], s)
	}

	out := make(map[string]*dmi.IconSet, len(groups))
	for sizeID, members := range groups {
		sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
		set := &dmi.IconSet{}
		for _, s := range members {
			set.States = append(set.States, &dmi.IconState{
				Name:     s.Name,
				Dirs:     s.Data.Dirs,
				Frames:   s.Data.Frames,
				Delay:    append([]float32(nil), s.Data.Delay...),
				LoopFlag: s.Data.LoopFlag,
				Rewind:   s.Data.Rewind,
				Images:   append([]*image.NRGBA(nil), s.Data.Images...),
			})
		}
		out[sizeID] = set
	}
	return out, nil
}

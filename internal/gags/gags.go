// Package gags implements the GAGS recursive recoloring evaluator: a
// config-driven, DAG-shaped layer tree that produces recolored variants
// of a template animation by threading a runtime color palette through
// nested IconState/Reference/ColorMatrix layers.
package gags

import (
	"encoding/json"
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"

	"github.com/tilebound/iconforge/internal/blend"
	"github.com/tilebound/iconforge/internal/colormatrix"
	"github.com/tilebound/iconforge/internal/dmi"
	"github.com/tilebound/iconforge/internal/icondata"
	"github.com/tilebound/iconforge/internal/iconref"
	"github.com/tilebound/iconforge/internal/reconcile"
)

// LayerKind discriminates the three leaf layer types.
type LayerKind string

const (
	LayerIconState   LayerKind = "icon_state"
	LayerReference   LayerKind = "reference"
	LayerColorMatrix LayerKind = "color_matrix"
)

// Layer is one leaf entry of a LayerGroupOption.
type Layer struct {
	Type LayerKind

	// IconState / Reference
	State     string             `json:"state,omitempty"`
	Mode      iconref.BlendMode  `json:"blend_mode,omitempty"`
	ColorIDs  []string           `json:"color_ids,omitempty"`
	MapColors *iconref.MapColorsParams `json:"map_colors,omitempty"`
}

// Group is a nested list of options that itself behaves like a layer: its
// own first option supplies the blend mode used when this group is
// composited into its parent's accumulator.
type Group struct {
	Options []LayerGroupOption
}

// LayerGroupOption is a single item of a layer-group list: exactly one of
// Layer or Group is set.
type LayerGroupOption struct {
	Layer *Layer
	Group *Group
}

// Config maps output state-name to its layer-group option list.
type Config struct {
	Template *dmi.IconSet
	States   map[string][]LayerGroupOption
}

// matchedState carries the two pieces of IconState metadata the
// evaluator threads through recursion: the first-ever-matched state
// (source of loop_flag/rewind, and dirs/frames/delay before any
// broadcast) and the last-matched state (the template for any following
// ColorMatrix layer).
type matchedState struct {
	first *dmi.IconState
	last  *dmi.IconState
}

// Palette is the runtime color list supplied at evaluation time, indexed
// 1-based per the color_ids convention.
type Palette []string

// ResolveColorID returns the hex color string ("#RRGGBB"[AA]) a color_ids
// entry refers to: a literal hex string is returned as-is; a decimal
// string is treated as a 1-based index into pal.
func ResolveColorID(id string, pal Palette) (string, error) {
	if strings.HasPrefix(id, "#") {
		return id, nil
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return "", fmt.Errorf("gags: color id %q is neither hex nor integer", id)
	}
	if n < 1 || n > len(pal) {
		return "", fmt.Errorf("gags: color index %d out of range for a %d-color palette", n, len(pal))
	}
	return pal[n-1], nil
}

// ParseColorsArg splits the `#`-prefixed concatenation of hex colors
// supplied as the GAGS `colors` argument (each non-empty group between
// the '#' separators becomes one '#'-prefixed palette entry) into a
// Palette.
func ParseColorsArg(s string) Palette {
	parts := strings.Split(s, "#")
	var out Palette
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, "#"+p)
	}
	return out
}

// images is the intermediate accumulator: a per-frame×dir image list
// plus the dirs/frames/delay shape it was built from, and the
// matchedState metadata threaded alongside it. data's Dirs/Frames/Delay
// are authoritative over the layer's actual pixel count: they get
// broadcast-mutated by blendInto whenever a 1-dir or 1-frame layer is
// combined with a wider one, the same way the ground truth's
// blend_images_other mutates its base icon state in place.
type images struct {
	data  *icondata.IconData
	state matchedState
}

// blendInto combines layerImgs into acc in place, applying the same
// dir/frame broadcast rules as the top-level reconciler (internal/
// reconcile.Blend) rather than requiring the two operands to already
// share a shape. A 1-dir layer broadcasts across every dir of a
// multi-dir accumulator; a 1-frame accumulator broadcasts across every
// frame of the layer, extending its own delay list to match. Any other shape
// mismatch is an error. acc.data is nil before the first layer, which
// is then taken as the accumulator unchanged.
func blendInto(acc *images, layerImgs *images, mode iconref.BlendMode) error {
	if acc.data == nil {
		acc.data = layerImgs.data
		return nil
	}
	blended, err := reconcile.Blend(acc.data, layerImgs.data, mode)
	if err != nil {
		return err
	}
	acc.data = blended
	return nil
}

// Evaluate evaluates stateName against cfg with the given palette,
// returning the final image list and the metadata to write into the
// output animation file. Dirs/Frames/Delay come from the accumulated
// data (authoritative after any broadcast); LoopFlag/Rewind come from
// the first-ever-matched template state, since broadcasting never
// changes those.
func Evaluate(cfg *Config, stateName string, pal Palette) (*dmi.IconState, error) {
	acc, err := evalState(cfg, stateName, pal, matchedState{})
	if err != nil {
		return nil, err
	}
	if acc.state.first == nil || acc.data == nil {
		return nil, fmt.Errorf("gags: state %q: no layer ever matched", stateName)
	}
	first := acc.state.first
	return &dmi.IconState{
		Name:     stateName,
		Dirs:     acc.data.Dirs,
		Frames:   acc.data.Frames,
		Delay:    append([]float32(nil), acc.data.Delay...),
		LoopFlag: first.LoopFlag,
		Rewind:   first.Rewind,
		Images:   acc.data.Images,
	}, nil
}

func evalState(cfg *Config, stateName string, pal Palette, inherited matchedState) (*images, error) {
	options, ok := cfg.States[stateName]
	if !ok {
		return nil, fmt.Errorf("gags: unknown state %q", stateName)
	}

	acc := &images{state: inherited}
	for i, opt := range options {
		var layerImgs *images
		var mode iconref.BlendMode
		var err error

		switch {
		case opt.Layer != nil:
			layerImgs, err = evalLayer(cfg, opt.Layer, pal, acc.state)
			if err == nil {
				mode = opt.Layer.Mode
			}
		case opt.Group != nil:
			if len(opt.Group.Options) > 0 && opt.Group.Options[0].Group != nil {
				return nil, fmt.Errorf("gags: state %q option %d: group cannot begin with another group", stateName, i)
			}
			var sub *images
			sub, err = evalGroup(cfg, opt.Group, pal, acc.state)
			if err == nil {
				layerImgs = sub
				if len(opt.Group.Options) > 0 && opt.Group.Options[0].Layer != nil {
					mode = opt.Group.Options[0].Layer.Mode
				}
			}
		default:
			return nil, fmt.Errorf("gags: state %q option %d: neither layer nor group set", stateName, i)
		}
		if err != nil {
			return nil, err
		}
		if layerImgs == nil {
			continue
		}

		if err := blendInto(acc, layerImgs, mode); err != nil {
			return nil, fmt.Errorf("gags: state %q option %d: %w", stateName, i, err)
		}
		acc.state = layerImgs.state
	}
	return acc, nil
}

func evalGroup(cfg *Config, g *Group, pal Palette, inherited matchedState) (*images, error) {
	acc := &images{state: inherited}
	for i, opt := range g.Options {
		var layerImgs *images
		var mode iconref.BlendMode
		var err error
		switch {
		case opt.Layer != nil:
			layerImgs, err = evalLayer(cfg, opt.Layer, pal, acc.state)
			mode = opt.Layer.Mode
		case opt.Group != nil:
			layerImgs, err = evalGroup(cfg, opt.Group, pal, acc.state)
			if len(opt.Group.Options) > 0 && opt.Group.Options[0].Layer != nil {
				mode = opt.Group.Options[0].Layer.Mode
			}
		default:
			return nil, fmt.Errorf("gags: group option %d: neither layer nor group set", i)
		}
		if err != nil {
			return nil, err
		}
		if err := blendInto(acc, layerImgs, mode); err != nil {
			return nil, fmt.Errorf("gags: group option %d: %w", i, err)
		}
		acc.state = layerImgs.state
	}
	return acc, nil
}

func evalLayer(cfg *Config, l *Layer, pal Palette, inherited matchedState) (*images, error) {
	switch l.Type {
	case LayerIconState:
		st := cfg.Template.ByName(l.State)
		if st == nil {
			return nil, fmt.Errorf("gags: unknown template state %q", l.State)
		}
		pics := append([]*image.NRGBA(nil), st.Images...)
		if len(l.ColorIDs) > 0 {
			hexColor, err := ResolveColorID(l.ColorIDs[0], pal)
			if err != nil {
				return nil, err
			}
			c, err := blend.ParseColor(hexColor)
			if err != nil {
				return nil, err
			}
			for i, img := range pics {
				pics[i] = blend.Color(img, c, iconref.BlendMultiply)
			}
		}
		ms := matchedState{first: st, last: st}
		if inherited.first != nil {
			ms.first = inherited.first
		}
		data := &icondata.IconData{
			Images:   pics,
			Frames:   st.Frames,
			Dirs:     st.Dirs,
			Delay:    append([]float32(nil), st.Delay...),
			LoopFlag: st.LoopFlag,
			Rewind:   st.Rewind,
		}
		return &images{data: data, state: ms}, nil

	case LayerReference:
		subPal := pal
		if len(l.ColorIDs) > 0 {
			resolved := make(Palette, len(l.ColorIDs))
			for i, id := range l.ColorIDs {
				hexColor, err := ResolveColorID(id, pal)
				if err != nil {
					return nil, err
				}
				resolved[i] = hexColor
			}
			subPal = resolved
		}
		return evalState2(cfg, l.State, subPal, inherited)

	case LayerColorMatrix:
		if inherited.last == nil {
			return nil, fmt.Errorf("gags: color_matrix layer with no preceding matched state")
		}
		m := iconref.DefaultMapColors()
		if l.MapColors != nil {
			m = *l.MapColors
		}
		pics := make([]*image.NRGBA, len(inherited.last.Images))
		for i, img := range inherited.last.Images {
			pics[i] = colormatrix.Apply(img, m)
		}
		data := &icondata.IconData{
			Images:   pics,
			Frames:   inherited.last.Frames,
			Dirs:     inherited.last.Dirs,
			Delay:    append([]float32(nil), inherited.last.Delay...),
			LoopFlag: inherited.last.LoopFlag,
			Rewind:   inherited.last.Rewind,
		}
		return &images{data: data, state: inherited}, nil

	default:
		return nil, fmt.Errorf("gags: unknown layer type %q", l.Type)
	}
}

// evalState2 wraps evalState to surface it through the *images type used
// by evalLayer's Reference case.
func evalState2(cfg *Config, stateName string, pal Palette, inherited matchedState) (*images, error) {
	return evalState(cfg, stateName, pal, inherited)
}

// SortedStateNames returns cfg's state names sorted, so output animation
// files are written deterministically.
func SortedStateNames(cfg *Config) []string {
	out := make([]string, 0, len(cfg.States))
	for name := range cfg.States {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// --- JSON decoding ---

type jsonLayerGroupOption struct {
	Type      *string                `json:"type"`
	State     string                 `json:"state,omitempty"`
	Mode      *int                   `json:"blend_mode,omitempty"`
	ColorIDs  []string               `json:"color_ids,omitempty"`
	MapColors *jsonMapColors         `json:"map_colors,omitempty"`
	Options   []jsonLayerGroupOption `json:"options,omitempty"`
}

type jsonMapColors struct {
	R        [4]float32 `json:"r"`
	G        [4]float32 `json:"g"`
	B        [4]float32 `json:"b"`
	A        [4]float32 `json:"a"`
	Constant [4]float32 `json:"constant"`
}

func (o *LayerGroupOption) UnmarshalJSON(data []byte) error {
	var j jsonLayerGroupOption
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("gags: layer group option: %w", err)
	}
	opt, err := j.toOption()
	if err != nil {
		return err
	}
	*o = opt
	return nil
}

// toOption recursively converts the raw JSON shape into the tagged-union
// LayerGroupOption, since a nested "options" array decodes as plain
// jsonLayerGroupOption values rather than invoking this UnmarshalJSON
// method again.
func (j jsonLayerGroupOption) toOption() (LayerGroupOption, error) {
	if j.Type == nil {
		g := &Group{}
		for _, sub := range j.Options {
			subOpt, err := sub.toOption()
			if err != nil {
				return LayerGroupOption{}, err
			}
			g.Options = append(g.Options, subOpt)
		}
		return LayerGroupOption{Group: g}, nil
	}

	l := &Layer{Type: LayerKind(*j.Type), State: j.State, ColorIDs: j.ColorIDs}
	if j.Mode != nil {
		l.Mode = iconref.BlendMode(*j.Mode)
	} else {
		l.Mode = iconref.BlendAdd
	}
	if j.MapColors != nil {
		l.MapColors = &iconref.MapColorsParams{
			R: j.MapColors.R, G: j.MapColors.G, B: j.MapColors.B, A: j.MapColors.A,
			Constant: j.MapColors.Constant,
		}
	}
	return LayerGroupOption{Layer: l}, nil
}

// UnmarshalConfigJSON decodes a GAGS config mapping state-name → option
// list against template, the config's source animation file.
func UnmarshalConfigJSON(data []byte, template *dmi.IconSet) (*Config, error) {
	var raw map[string][]LayerGroupOption
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("gags: config: %w", err)
	}
	return &Config{Template: template, States: raw}, nil
}

package iconref

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// TransformKind discriminates the tagged sum of pixel transforms.
type TransformKind string

const (
	KindBlendColor TransformKind = "BlendColor"
	KindBlendIcon  TransformKind = "BlendIcon"
	KindScale      TransformKind = "Scale"
	KindCrop       TransformKind = "Crop"
	KindFlip       TransformKind = "Flip"
	KindTurn       TransformKind = "Turn"
	KindShift      TransformKind = "Shift"
	KindMapColors  TransformKind = "MapColors"
)

// Transform is a single step of an IconRef's pipeline. Exactly one of the
// typed parameter fields is populated, matching Kind.
type Transform struct {
	Kind TransformKind

	BlendColor *BlendColorParams
	BlendIcon  *BlendIconParams
	Scale      *ScaleParams
	Crop       *CropParams
	Flip       *FlipParams
	Turn       *TurnParams
	Shift      *ShiftParams
	MapColors  *MapColorsParams
}

type BlendColorParams struct {
	Color string
	Mode  BlendMode
}

type BlendIconParams struct {
	Icon IconRef
	Mode BlendMode
	X    int32 // 1-based offset, default 1
	Y    int32 // 1-based offset, default 1
}

type ScaleParams struct {
	W, H uint32
}

type CropParams struct {
	X1, Y1, X2, Y2 int32
}

type FlipParams struct {
	Dir Dir
}

type TurnParams struct {
	AngleDeg float32
}

type ShiftParams struct {
	Dir    Dir
	Offset int32
	Wrap   bool
}

// MapColorsParams is the 5x4 affine remap over normalised RGBA.
// Row is [4]float32{toR, toG, toB, toA} contribution coefficients; Constant
// is the additive 4-vector. The alpha row (A) and the alpha terms of
// Constant default per the: ra=ga=ba=0, ar=ag=ab=0, aa=1, a0=0.
type MapColorsParams struct {
	R, G, B, A [4]float32
	Constant   [4]float32
}

// DefaultMapColors returns the identity-on-alpha default matrix:
// R row (1,0,0,0), G row (0,1,0,0), B row (0,0,1,0), A row (0,0,0,1), zero
// constant.
func DefaultMapColors() MapColorsParams {
	return MapColorsParams{
		R: [4]float32{1, 0, 0, 0},
		G: [4]float32{0, 1, 0, 0},
		B: [4]float32{0, 0, 1, 0},
		A: [4]float32{0, 0, 0, 1},
	}
}

// jsonTransform is the flattened wire shape for Transform, covering every
// variant's fields. Unused fields for a given "type" are simply absent.
type jsonTransform struct {
	Type string `json:"type"`

	// BlendColor
	Color string `json:"color,omitempty"`
	Mode  *int   `json:"mode,omitempty"`

	// BlendIcon
	Icon *IconRef `json:"icon,omitempty"`
	X    *int32   `json:"x,omitempty"`
	Y    *int32   `json:"y,omitempty"`

	// Scale
	W *uint32 `json:"w,omitempty"`
	H *uint32 `json:"h,omitempty"`

	// Crop
	X1 *int32 `json:"x1,omitempty"`
	Y1 *int32 `json:"y1,omitempty"`
	X2 *int32 `json:"x2,omitempty"`
	Y2 *int32 `json:"y2,omitempty"`

	// Flip / Shift
	Dir *int `json:"dir,omitempty"`

	// Turn
	Angle *float32 `json:"angle,omitempty"`

	// Shift
	Offset *int32 `json:"offset,omitempty"`
	Wrap   *bool  `json:"wrap,omitempty"`

	// MapColors
	R        *[4]float32 `json:"r,omitempty"`
	G        *[4]float32 `json:"g,omitempty"`
	B        *[4]float32 `json:"b,omitempty"`
	A        *[4]float32 `json:"a,omitempty"`
	Constant *[4]float32 `json:"constant,omitempty"`
}

func (t *Transform) UnmarshalJSON(data []byte) error {
	var j jsonTransform
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("iconref: transform: %w", err)
	}

	mode := func() BlendMode {
		if j.Mode == nil {
			return BlendAdd
		}
		return BlendMode(*j.Mode)
	}

	switch TransformKind(j.Type) {
	case KindBlendColor:
		t.Kind = KindBlendColor
		t.BlendColor = &BlendColorParams{Color: j.Color, Mode: mode()}
	case KindBlendIcon:
		if j.Icon == nil {
			return fmt.Errorf("iconref: BlendIcon transform missing icon")
		}
		x, y := int32(1), int32(1)
		if j.X != nil {
			x = *j.X
		}
		if j.Y != nil {
			y = *j.Y
		}
		t.Kind = KindBlendIcon
		t.BlendIcon = &BlendIconParams{Icon: *j.Icon, Mode: mode(), X: x, Y: y}
	case KindScale:
		var w, h uint32
		if j.W != nil {
			w = *j.W
		}
		if j.H != nil {
			h = *j.H
		}
		t.Kind = KindScale
		t.Scale = &ScaleParams{W: w, H: h}
	case KindCrop:
		var p CropParams
		if j.X1 != nil {
			p.X1 = *j.X1
		}
		if j.Y1 != nil {
			p.Y1 = *j.Y1
		}
		if j.X2 != nil {
			p.X2 = *j.X2
		}
		if j.Y2 != nil {
			p.Y2 = *j.Y2
		}
		t.Kind = KindCrop
		t.Crop = &p
	case KindFlip:
		var d Dir
		if j.Dir != nil {
			d = Dir(*j.Dir)
		}
		t.Kind = KindFlip
		t.Flip = &FlipParams{Dir: d}
	case KindTurn:
		var a float32
		if j.Angle != nil {
			a = *j.Angle
		}
		t.Kind = KindTurn
		t.Turn = &TurnParams{AngleDeg: a}
	case KindShift:
		var d Dir
		if j.Dir != nil {
			d = Dir(*j.Dir)
		}
		var off int32
		if j.Offset != nil {
			off = *j.Offset
		}
		var wrap bool
		if j.Wrap != nil {
			wrap = *j.Wrap
		}
		t.Kind = KindShift
		t.Shift = &ShiftParams{Dir: d, Offset: off, Wrap: wrap}
	case KindMapColors:
		p := DefaultMapColors()
		if j.R != nil {
			p.R = *j.R
		}
		if j.G != nil {
			p.G = *j.G
		}
		if j.B != nil {
			p.B = *j.B
		}
		if j.A != nil {
			p.A = *j.A
		}
		if j.Constant != nil {
			p.Constant = *j.Constant
		}
		t.Kind = KindMapColors
		t.MapColors = &p
	default:
		return fmt.Errorf("iconref: unknown transform type %q", j.Type)
	}
	return nil
}

func (t Transform) MarshalJSON() ([]byte, error) {
	j := jsonTransform{Type: string(t.Kind)}
	switch t.Kind {
	case KindBlendColor:
		m := int(t.BlendColor.Mode)
		j.Color = t.BlendColor.Color
		j.Mode = &m
	case KindBlendIcon:
		m := int(t.BlendIcon.Mode)
		j.Icon = &t.BlendIcon.Icon
		j.Mode = &m
		j.X = &t.BlendIcon.X
		j.Y = &t.BlendIcon.Y
	case KindScale:
		j.W = &t.Scale.W
		j.H = &t.Scale.H
	case KindCrop:
		j.X1, j.Y1, j.X2, j.Y2 = &t.Crop.X1, &t.Crop.Y1, &t.Crop.X2, &t.Crop.Y2
	case KindFlip:
		d := int(t.Flip.Dir)
		j.Dir = &d
	case KindTurn:
		j.Angle = &t.Turn.AngleDeg
	case KindShift:
		d := int(t.Shift.Dir)
		j.Dir = &d
		j.Offset = &t.Shift.Offset
		j.Wrap = &t.Shift.Wrap
	case KindMapColors:
		j.R, j.G, j.B, j.A = &t.MapColors.R, &t.MapColors.G, &t.MapColors.B, &t.MapColors.A
		j.Constant = &t.MapColors.Constant
	}
	return json.Marshal(j)
}

// Key returns a canonical, content-addressed string for t. Floats are
// encoded via their bit pattern (not their decimal value) so that the key
// participates correctly in map-based deduplication: two transforms are
// Key-equal iff every field, including floats, is bitwise identical. This
// is the "total-ordering float wrapper" the transform-tree optimiser needs
// to partition sprites by identical transform at a given depth.
func (t Transform) Key() string {
	var sb strings.Builder
	sb.WriteString(string(t.Kind))
	sb.WriteByte('|')
	switch t.Kind {
	case KindBlendColor:
		fmt.Fprintf(&sb, "%s,%d", t.BlendColor.Color, t.BlendColor.Mode)
	case KindBlendIcon:
		fmt.Fprintf(&sb, "%s,%d,%d,%d", t.BlendIcon.Icon.Key(), t.BlendIcon.Mode, t.BlendIcon.X, t.BlendIcon.Y)
	case KindScale:
		fmt.Fprintf(&sb, "%d,%d", t.Scale.W, t.Scale.H)
	case KindCrop:
		fmt.Fprintf(&sb, "%d,%d,%d,%d", t.Crop.X1, t.Crop.Y1, t.Crop.X2, t.Crop.Y2)
	case KindFlip:
		fmt.Fprintf(&sb, "%d", t.Flip.Dir)
	case KindTurn:
		fmt.Fprintf(&sb, "%d", math.Float32bits(t.Turn.AngleDeg))
	case KindShift:
		fmt.Fprintf(&sb, "%d,%d,%t", t.Shift.Dir, t.Shift.Offset, t.Shift.Wrap)
	case KindMapColors:
		for _, row := range [][4]float32{t.MapColors.R, t.MapColors.G, t.MapColors.B, t.MapColors.A, t.MapColors.Constant} {
			for _, f := range row {
				fmt.Fprintf(&sb, "%d,", math.Float32bits(f))
			}
		}
	}
	return sb.String()
}

// Package transform dispatches a single Transform against an
// IconData, calling the blend/geom/colormatrix primitives and the
// dir/frame reconciler as needed. It is the pixel-kernel layer the
// transform-tree optimiser drives one transform-prefix at a time.
package transform

import (
	"fmt"
	"image"

	"github.com/tilebound/iconforge/internal/blend"
	"github.com/tilebound/iconforge/internal/colormatrix"
	"github.com/tilebound/iconforge/internal/geom"
	"github.com/tilebound/iconforge/internal/icondata"
	"github.com/tilebound/iconforge/internal/iconref"
	"github.com/tilebound/iconforge/internal/reconcile"
)

// Resolver resolves a nested IconRef (as used by BlendIcon) to its fully
// transformed IconData. The transform-tree optimiser supplies this,
// routing back through the icon-set/icon-data caches so nested references
// benefit from the same dedup and memoisation as top-level sprites.
type Resolver func(iconref.IconRef) (*icondata.IconData, error)

// Apply runs t against base, returning the resulting IconData. base is
// never mutated.
func Apply(base *icondata.IconData, t iconref.Transform, resolve Resolver) (*icondata.IconData, error) {
	switch t.Kind {
	case iconref.KindBlendColor:
		return applyBlendColor(base, t.BlendColor)
	case iconref.KindBlendIcon:
		return applyBlendIcon(base, t.BlendIcon, resolve)
	case iconref.KindScale:
		return applyPerImage(base, func(img *image.NRGBA) (*image.NRGBA, error) {
			return geom.Scale(img, t.Scale.W, t.Scale.H)
		})
	case iconref.KindCrop:
		return applyPerImage(base, func(img *image.NRGBA) (*image.NRGBA, error) {
			return geom.Crop(img, t.Crop.X1, t.Crop.Y1, t.Crop.X2, t.Crop.Y2)
		})
	case iconref.KindFlip:
		return applyPerImage(base, func(img *image.NRGBA) (*image.NRGBA, error) {
			return geom.Flip(img, t.Flip.Dir)
		})
	case iconref.KindTurn:
		return applyPerImage(base, func(img *image.NRGBA) (*image.NRGBA, error) {
			return geom.Turn(img, t.Turn.AngleDeg), nil
		})
	case iconref.KindShift:
		return applyPerImage(base, func(img *image.NRGBA) (*image.NRGBA, error) {
			return geom.Shift(img, t.Shift.Dir, t.Shift.Offset, t.Shift.Wrap), nil
		})
	case iconref.KindMapColors:
		return applyPerImage(base, func(img *image.NRGBA) (*image.NRGBA, error) {
			return colormatrix.Apply(img, *t.MapColors), nil
		})
	default:
		return nil, fmt.Errorf("transform: unknown transform kind %q", t.Kind)
	}
}

func applyPerImage(base *icondata.IconData, fn func(*image.NRGBA) (*image.NRGBA, error)) (*icondata.IconData, error) {
	out := &icondata.IconData{
		Frames:   base.Frames,
		Dirs:     base.Dirs,
		Delay:    base.Delay,
		LoopFlag: base.LoopFlag,
		Rewind:   base.Rewind,
		Images:   make([]*image.NRGBA, len(base.Images)),
	}
	for i, img := range base.Images {
		r, err := fn(img)
		if err != nil {
			return nil, err
		}
		out.Images[i] = r
	}
	return out, nil
}

func applyBlendColor(base *icondata.IconData, p *iconref.BlendColorParams) (*icondata.IconData, error) {
	if !p.Mode.Valid() {
		return nil, fmt.Errorf("transform: invalid blend mode %d", p.Mode)
	}
	c, err := blend.ParseColor(p.Color)
	if err != nil {
		return nil, err
	}
	return applyPerImage(base, func(img *image.NRGBA) (*image.NRGBA, error) {
		return blend.Color(img, c, p.Mode), nil
	})
}

func applyBlendIcon(base *icondata.IconData, p *iconref.BlendIconParams, resolve Resolver) (*icondata.IconData, error) {
	if !p.Mode.Valid() {
		return nil, fmt.Errorf("transform: invalid blend mode %d", p.Mode)
	}
	operand, err := resolve(p.Icon)
	if err != nil {
		return nil, err
	}

	canvasW, canvasH := 0, 0
	if len(base.Images) > 0 {
		b := base.Images[0].Bounds()
		canvasW, canvasH = b.Dx(), b.Dy()
	}

	positioned := &icondata.IconData{
		Frames:   operand.Frames,
		Dirs:     operand.Dirs,
		Delay:    operand.Delay,
		LoopFlag: operand.LoopFlag,
		Rewind:   operand.Rewind,
		Images:   make([]*image.NRGBA, len(operand.Images)),
	}
	for i, img := range operand.Images {
		positioned.Images[i] = blend.PositionOverlay(canvasW, canvasH, img, p.X, p.Y)
	}

	return reconcile.Blend(base, positioned, p.Mode)
}

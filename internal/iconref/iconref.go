// Package iconref defines the declarative sprite-reference model — IconRef
// and Transform — shared by every compositor component. Values are
// immutable after construction and deep-hashable: two IconRefs with equal
// (file_path, state_name, dir, frame, transforms) are interchangeable for
// caching purposes.
package iconref

import (
	"strconv"
	"strings"
)

// IconRef is a logical reference to one frame/dir selection of an
// animation, plus a pipeline of transforms.
type IconRef struct {
	FilePath   string      `json:"icon_file"`
	StateName  string      `json:"icon_state"`
	Dir        Dir         `json:"dir,omitempty"`
	Frame      uint32      `json:"frame,omitempty"`
	Transforms []Transform `json:"transform,omitempty"`
}

// Base returns r with its transform pipeline stripped — the bucket key
// used by the transform-tree optimiser.
func (r IconRef) Base() IconRef {
	r.Transforms = nil
	return r
}

// BaseKey returns the canonical string key for r's base icon: the tuple
// (file_path, state_name, dir, frame) with no transform component.
func (r IconRef) BaseKey() string {
	var sb strings.Builder
	sb.WriteString(r.FilePath)
	sb.WriteByte('\x00')
	sb.WriteString(r.StateName)
	sb.WriteByte('\x00')
	sb.WriteString(strconv.Itoa(int(r.Dir)))
	sb.WriteByte('\x00')
	sb.WriteString(strconv.Itoa(int(r.Frame)))
	return sb.String()
}

// Key returns the canonical deep-content key for r, including its full
// transform pipeline. Two IconRefs are interchangeable iff their Key()
// values are equal.
func (r IconRef) Key() string {
	var sb strings.Builder
	sb.WriteString(r.BaseKey())
	for _, t := range r.Transforms {
		sb.WriteByte('\x01')
		sb.WriteString(t.Key())
	}
	return sb.String()
}

// Depth returns the number of transforms in r's pipeline.
func (r IconRef) Depth() int {
	return len(r.Transforms)
}

// WithDepth returns a copy of r truncated to the first n transforms.
func (r IconRef) WithDepth(n int) IconRef {
	r.Transforms = r.Transforms[:n]
	return r
}

// NestedIconRefs returns every IconRef nested inside r's transform
// pipeline via BlendIcon, recursively. Used by the pre-warm step to force
// every referenced path through the icon-set loader before bucketing
// begins.
func (r IconRef) NestedIconRefs() []IconRef {
	var out []IconRef
	for _, t := range r.Transforms {
		if t.Kind == KindBlendIcon {
			out = append(out, t.BlendIcon.Icon)
			out = append(out, t.BlendIcon.Icon.NestedIconRefs()...)
		}
	}
	return out
}

package blend

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// ParseColor parses a "#RRGGBB" or "#RRGGBBAA" string into a color.NRGBA.
// Alpha defaults to 255 when omitted.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	var raw []byte
	var err error
	switch len(s) {
	case 6, 8:
		raw, err = hex.DecodeString(s)
	default:
		return color.NRGBA{}, fmt.Errorf("blend: invalid color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("blend: invalid color %q: %w", s, err)
	}
	c := color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 255}
	if len(raw) == 4 {
		c.A = raw[3]
	}
	return c, nil
}

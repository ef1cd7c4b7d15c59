package iconref

import "fmt"

// BlendMode selects the per-pixel compositing function used by BlendColor
// and BlendIcon transforms, and by GAGS layers. The numeric codes are part
// of the external contract and must not be renumbered.
type BlendMode int

const (
	BlendAdd      BlendMode = 0
	BlendSubtract BlendMode = 1
	BlendMultiply BlendMode = 2
	BlendOverlay  BlendMode = 3
	BlendUnderlay BlendMode = 6
)

func (m BlendMode) String() string {
	switch m {
	case BlendAdd:
		return "add"
	case BlendSubtract:
		return "subtract"
	case BlendMultiply:
		return "multiply"
	case BlendOverlay:
		return "overlay"
	case BlendUnderlay:
		return "underlay"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the known blend modes.
func (m BlendMode) Valid() bool {
	switch m {
	case BlendAdd, BlendSubtract, BlendMultiply, BlendOverlay, BlendUnderlay:
		return true
	}
	return false
}

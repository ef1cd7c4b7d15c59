package iconref

// Dir is a direction bitfield, part of the external contract:
//
//	S=2, N=1, E=4, W=8, NE=5, NW=9, SE=6, SW=10
//
// 0 (or an absent dir) means "all directions".
type Dir uint8

const (
	DirNone      Dir = 0
	DirSouth     Dir = 2
	DirNorth     Dir = 1
	DirEast      Dir = 4
	DirWest      Dir = 8
	DirNortheast Dir = DirNorth | DirEast // 5
	DirNorthwest Dir = DirNorth | DirWest // 9
	DirSoutheast Dir = DirSouth | DirEast // 6
	DirSouthwest Dir = DirSouth | DirWest // 10
)

// Index4 maps a Dir to its index in a dirs=4 ordering: S,N,E,W.
func Index4(d Dir) (int, bool) {
	switch d {
	case DirSouth:
		return 0, true
	case DirNorth:
		return 1, true
	case DirEast:
		return 2, true
	case DirWest:
		return 3, true
	}
	return 0, false
}

// Index8 maps a Dir to its index in a dirs=8 ordering: S,N,E,W,SE,SW,NE,NW.
func Index8(d Dir) (int, bool) {
	switch d {
	case DirSouth:
		return 0, true
	case DirNorth:
		return 1, true
	case DirEast:
		return 2, true
	case DirWest:
		return 3, true
	case DirSoutheast:
		return 4, true
	case DirSouthwest:
		return 5, true
	case DirNortheast:
		return 6, true
	case DirNorthwest:
		return 7, true
	}
	return 0, false
}

// Index resolves a Dir to its image-list index for a state with the given
// number of directions (1, 4, or 8). dirs=1 always resolves to index 0
// (the single frame represents S).
func Index(d Dir, dirs int) (int, bool) {
	switch dirs {
	case 1:
		return 0, true
	case 4:
		return Index4(d)
	case 8:
		return Index8(d)
	}
	return 0, false
}

// IsDiagonal reports whether d is one of the four intercardinal directions.
func IsDiagonal(d Dir) bool {
	switch d {
	case DirNortheast, DirNorthwest, DirSoutheast, DirSouthwest:
		return true
	}
	return false
}

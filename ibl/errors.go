package ibl

import "errors"

var (
	ErrNotCubeMap     = errors.New("supplied texture is not a cube map")
	ErrNonSquare      = errors.New("supplied cube map is using unsupported, non-square dimensions")
	ErrNoPixelData    = errors.New("supplied cube map has no readable pixel data")
	ErrInvalidSamples = errors.New("sample count must be positive")
	ErrInvalidSize    = errors.New("size must be positive")
)

// validateSource checks that src can be read back as a square six face cube map.
func validateSource(src CubeSource) (size int, err error) {
	if src == nil {
		return 0, ErrNoPixelData
	}
	w, h, faces := src.Dims()
	if faces != 6 {
		return 0, ErrNotCubeMap
	}
	if w != h {
		return 0, ErrNonSquare
	}
	if w < 1 || !src.HasPixels() {
		return 0, ErrNoPixelData
	}
	return w, nil
}

package envmap

import "errors"

var (
	ErrCorrupt            = errors.New("environment file is corrupt")
	ErrUnsupportedVersion = errors.New("environment file version unsupported")
	ErrNotPrepared        = errors.New("environment map is not prepared")
)

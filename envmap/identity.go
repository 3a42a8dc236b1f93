package envmap

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
)

// CanonicalPath cleans path and makes it absolute when possible.
func CanonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Identity is the cache key of an environment: the fnv-1a hash of the source path
// followed by the prefiltered size and sample count, separated by underscores.
// It does not depend on the pixel content, so distinct files with colliding path
// hashes share an identity.
func Identity(path string, size, samples int) string {
	h := fnv.New64a()
	h.Write([]byte(CanonicalPath(path)))
	return fmt.Sprintf("%x_%d_%d", h.Sum64(), size, samples)
}

package ibl_test

import (
	"iblcache/ibl"
	"math/rand"
)

// fakeSource is a CubeSource with configurable dimensions.
type fakeSource struct {
	width, height, faces int
	pixels               bool
}

func (s *fakeSource) Dims() (int, int, int) {
	return s.width, s.height, s.faces
}

func (s *fakeSource) HasPixels() bool {
	return s.pixels
}

func (s *fakeSource) Texel(face, x, y int) (float32, float32, float32) {
	return 1, 1, 1
}

func uniformCubeMap(size int, r, g, b float32) *ibl.CubeMap {
	cm := ibl.NewCubeMap(nil, size, 1)
	cm.Fill(r, g, b)
	return cm
}

func randomCubeMap(size, levels int, seed int64) *ibl.CubeMap {
	rng := rand.New(rand.NewSource(seed))
	cm := ibl.NewCubeMap(nil, size, levels)
	data := cm.Data()
	for i := range data {
		data[i] = rng.Float32()
	}
	return cm
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

package ibl

import (
	"fmt"
	"iblcache/libio"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type PrefilterParams struct {
	// face size of the first level
	Size    int
	Mipmaps int
	Samples int
	// runs the per face jobs, Sequential when nil
	Dispatch Dispatcher
}

// MipRoughness is the roughness encoded by a level of a chain with the given length.
func MipRoughness(level, mipmaps int) float32 {
	if mipmaps <= 1 {
		return 1
	}
	return float32(level) / float32(mipmaps-1)
}

// FilterEnvMap builds a roughness indexed specular cube map from src.
// Each level halves in size and is convolved with the GGX lobe of its roughness.
func FilterEnvMap(src CubeSource, params PrefilterParams) (*CubeMap, error) {
	if _, err := validateSource(src); err != nil {
		return nil, err
	}
	if params.Size < 1 || params.Mipmaps < 1 {
		return nil, ErrInvalidSize
	}
	if params.Mipmaps > MaxMipmaps(params.Size) {
		return nil, fmt.Errorf("%d levels for size %d, at most %d: %w", params.Mipmaps, params.Size, MaxMipmaps(params.Size), ErrInvalidSize)
	}
	if params.Samples < 1 {
		return nil, ErrInvalidSamples
	}
	dispatch := params.Dispatch
	if dispatch == nil {
		dispatch = Sequential
	}

	result := NewCubeMap(nil, params.Size, params.Mipmaps)
	result.Sampler = libio.Sampler{
		MinFilter: libio.FilterLinearMipmapLinear,
		MagFilter: libio.FilterLinear,
		WrapU:     libio.WrapClamp,
		WrapV:     libio.WrapClamp,
		WrapW:     libio.WrapClamp,
	}

	seq := HammersleySequence(params.Samples)

	jobs := make([]func(), 0, 6*params.Mipmaps)
	for lvl := 0; lvl < params.Mipmaps; lvl++ {
		roughness := MipRoughness(lvl, params.Mipmaps)
		size := result.Size(lvl)
		for face := 0; face < 6; face++ {
			pix := result.Face(lvl, face)
			jobs = append(jobs, func() {
				for y := 0; y < size; y++ {
					for x := 0; x < size; x++ {
						n := DirectionForTexel(face, x, y, size)
						r, g, b := filterSample(src, n, roughness, seq)
						i := (x + y*size) * 3
						pix[i+0], pix[i+1], pix[i+2] = r, g, b
					}
				}
			})
		}
	}
	dispatch(jobs)

	return result, nil
}

// filterSample convolves src around n, which is also used as the view vector.
func filterSample(src CubeSource, n mgl32.Vec3, roughness float32, seq [][2]float32) (r, g, b float32) {
	v := n
	var totalWeight float32
	for _, xi := range seq {
		h := ImportanceSampleGGX(xi, n, roughness)
		l := reflect(v, h)

		ndotl := math32.Max(n.Dot(l), 0.0)
		if ndotl > 0 {
			sr, sg, sb := Lookup(src, l)
			r += sr * ndotl
			g += sg * ndotl
			b += sb * ndotl
			totalWeight += ndotl
		}
	}

	if totalWeight == 0 {
		return Lookup(src, n)
	}
	return r / totalWeight, g / totalWeight, b / totalWeight
}

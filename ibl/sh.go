package ibl

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SHCoefficients are 9 rgb coefficients of the band 0 to 2 real spherical harmonics.
type SHCoefficients [9]mgl32.Vec3

// cosine lobe convolution per band
var shBandScale = [9]float32{
	math32.Pi,
	2 * math32.Pi / 3, 2 * math32.Pi / 3, 2 * math32.Pi / 3,
	math32.Pi / 4, math32.Pi / 4, math32.Pi / 4, math32.Pi / 4, math32.Pi / 4,
}

// SHBasis evaluates the 9 basis functions for a normalized direction.
func SHBasis(dir mgl32.Vec3) [9]float32 {
	x, y, z := dir[0], dir[1], dir[2]
	return [9]float32{
		0.282095,
		0.488603 * x,
		0.488603 * z,
		0.488603 * y,
		1.092548 * x * z,
		1.092548 * y * z,
		1.092548 * y * x,
		0.946176*z*z - 0.315392,
		0.546274 * (x*x - y*y),
	}
}

// ProjectIrradiance projects the radiance of src onto the SH basis,
// weighting each texel by its solid angle. The cosine lobe is baked into the result.
func ProjectIrradiance(src CubeSource) (SHCoefficients, error) {
	dim, err := validateSource(src)
	if err != nil {
		return SHCoefficients{}, err
	}

	invDim := 1.0 / float32(dim)
	var sums [9][3]float64

	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			sa := float64(SolidAngle(invDim, x, y))
			for face := 0; face < 6; face++ {
				r, g, b := src.Texel(face, x, y)
				basis := SHBasis(DirectionForTexel(face, x, y, dim))
				cr, cg, cb := float64(r)*sa, float64(g)*sa, float64(b)*sa
				for i, v := range basis {
					sums[i][0] += cr * float64(v)
					sums[i][1] += cg * float64(v)
					sums[i][2] += cb * float64(v)
				}
			}
		}
	}

	var sh SHCoefficients
	for i := range sh {
		scale := float64(shBandScale[i])
		sh[i] = mgl32.Vec3{
			float32(sums[i][0] * scale),
			float32(sums[i][1] * scale),
			float32(sums[i][2] * scale),
		}
	}
	return sh, nil
}

// Evaluate reconstructs the irradiance for normal n.
func (sh *SHCoefficients) Evaluate(n mgl32.Vec3) mgl32.Vec3 {
	basis := SHBasis(n)
	var result mgl32.Vec3
	for i, v := range basis {
		result = result.Add(sh[i].Mul(v))
	}
	return result
}

// Floats packs the coefficients in band order, rgb interleaved.
func (sh *SHCoefficients) Floats() [27]float32 {
	var result [27]float32
	for i, c := range sh {
		result[i*3+0] = c[0]
		result[i*3+1] = c[1]
		result[i*3+2] = c[2]
	}
	return result
}

func SHFromFloats(f [27]float32) SHCoefficients {
	var sh SHCoefficients
	for i := range sh {
		sh[i] = mgl32.Vec3{f[i*3+0], f[i*3+1], f[i*3+2]}
	}
	return sh
}

func (sh *SHCoefficients) IsZero() bool {
	return *sh == SHCoefficients{}
}

package ibl

import (
	"iblcache/libio"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const minNdotV = 0.0001

// IntegrateBrdf returns the split sum scale and bias for a view angle and roughness.
func IntegrateBrdf(ndotv, roughness float32, samples int) (scale, bias float32) {
	if samples < 1 {
		return 0, 0
	}
	ndotv = math32.Max(ndotv, minNdotV)
	v := mgl32.Vec3{math32.Sqrt(1 - ndotv*ndotv), 0, ndotv}
	n := mgl32.Vec3{0, 0, 1}

	seq := HammersleySequence(samples)
	for _, xi := range seq {
		h := ImportanceSampleGGX(xi, n, roughness)
		l := reflect(v, h)

		ndotl := math32.Max(l[2], 0)
		if ndotl > 0 {
			ndoth := math32.Max(h[2], 0)
			vdoth := math32.Max(v.Dot(h), 0)
			if ndoth == 0 {
				continue
			}
			geom := GeometrySmith(n, v, l, roughness)
			geomVis := (geom * vdoth) / (ndoth * ndotv)
			fresnel := math32.Pow(1-vdoth, 5)

			scale += (1 - fresnel) * geomVis
			bias += fresnel * geomVis
		}
	}

	return scale / float32(samples), bias / float32(samples)
}

// GenerateBrdfLut integrates the brdf over a size x size grid.
// x is N.V and y is the roughness, both spaced over [0, 1).
// The result has two channels and uses a linear clamped sampler.
func GenerateBrdfLut(size, samples int, dispatch Dispatcher) (*libio.FloatImage, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	if samples < 1 {
		return nil, ErrInvalidSamples
	}
	if dispatch == nil {
		dispatch = Sequential
	}

	// warm up the memoized sequence before it is shared by the rows
	HammersleySequence(samples)

	pix := make([]float32, size*size*2)
	jobs := make([]func(), size)
	for y := 0; y < size; y++ {
		row := pix[y*size*2 : (y+1)*size*2]
		roughness := float32(y) / float32(size)
		jobs[y] = func() {
			for x := 0; x < size; x++ {
				scale, bias := IntegrateBrdf(float32(x)/float32(size), roughness, samples)
				row[x*2+0] = scale
				row[x*2+1] = bias
			}
		}
	}
	dispatch(jobs)

	lut := libio.NewFloatImage(pix, 2, size, size)
	lut.Sampler = libio.LinearClampSampler()
	return lut, nil
}

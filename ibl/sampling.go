package ibl

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func radicalInverseVdC(bits uint32) float32 {
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float32(bits) * 2.3283064365386963e-10 // / 0x100000000
}

// RadicalInverse mirrors the digits of index in the given base around the decimal point.
func RadicalInverse(index uint32, base uint32) float32 {
	if base == 2 {
		return radicalInverseVdC(index)
	}
	if base < 2 {
		return 0
	}

	var result float64
	denom := 1.0
	for index > 0 {
		denom *= float64(base)
		result += float64(index%base) / denom
		index /= base
	}
	return float32(result)
}

// count -> [][2]float32
var hammersleyCache sync.Map

func generateHammersleySequence(count int) [][2]float32 {
	samples := make([][2]float32, count)
	for i := 0; i < count; i++ {
		samples[i][0] = float32(i) / float32(count)
		samples[i][1] = radicalInverseVdC(uint32(i))
	}
	return samples
}

// HammersleySequence returns all count points of the sequence.
// Sequences are memoized per count and must not be modified.
func HammersleySequence(count int) [][2]float32 {
	if seq, ok := hammersleyCache.Load(count); ok {
		return seq.([][2]float32)
	}
	seq, _ := hammersleyCache.LoadOrStore(count, generateHammersleySequence(count))
	return seq.([][2]float32)
}

// Hammersley returns point i of a sequence with n points.
func Hammersley(i, n int) (x, y float32) {
	if i < 0 || i >= n {
		return float32(i) / float32(n), RadicalInverse(uint32(i), 2)
	}
	p := HammersleySequence(n)[i]
	return p[0], p[1]
}

// ImportanceSampleGGX maps the sample xi to a half vector around normal distributed by the
// GGX distribution for the given roughness.
func ImportanceSampleGGX(xi [2]float32, normal mgl32.Vec3, roughness float32) mgl32.Vec3 {
	a := roughness * roughness

	phi := 2.0 * math32.Pi * xi[0]
	cosTheta := math32.Sqrt((1.0 - xi[1]) / (1.0 + (a*a-1.0)*xi[1]))
	sinTheta := math32.Sqrt(math32.Max(1.0-cosTheta*cosTheta, 0))

	// from spherical coordinates to cartesian coordinates
	hx := math32.Cos(phi) * sinTheta
	hy := math32.Sin(phi) * sinTheta
	hz := cosTheta

	tangent, bitangent := tangentFrame(normal)

	// from tangent-space vector to world-space sample vector
	return tangent.Mul(hx).Add(bitangent.Mul(hy)).Add(normal.Mul(hz)).Normalize()
}

func tangentFrame(normal mgl32.Vec3) (tangent, bitangent mgl32.Vec3) {
	up := mgl32.Vec3{0, 0, 1}
	if math32.Abs(normal[2]) >= 0.999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	tangent = up.Cross(normal).Normalize()
	bitangent = normal.Cross(tangent)
	return tangent, bitangent
}

// GeometrySchlickGGX uses the image based lighting remapping k = roughness^2 / 2.
func GeometrySchlickGGX(ndotv, roughness float32) float32 {
	k := roughness * roughness / 2
	return ndotv / (ndotv*(1-k) + k)
}

func GeometrySmith(n, v, l mgl32.Vec3, roughness float32) float32 {
	ndotv := math32.Max(n.Dot(v), 0)
	ndotl := math32.Max(n.Dot(l), 0)
	return GeometrySchlickGGX(ndotv, roughness) * GeometrySchlickGGX(ndotl, roughness)
}

func reflect(v, h mgl32.Vec3) mgl32.Vec3 {
	return h.Mul(2 * v.Dot(h)).Sub(v).Normalize()
}

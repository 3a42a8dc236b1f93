package ibl

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// the fixed axis is slightly longer so it always stays the dominant component
const unitLength = 1.00001

// faceCoords remaps texel x, y of a dim sized face to [-1, 1].
// The vertical axis is flipped so y=0 is the top row.
func faceCoords(x, y, dim int) (xc, yc float32) {
	if dim <= 1 {
		return 0, 0
	}
	maxIdx := float32(dim - 1)
	xc = float32(x)/maxIdx*2 - 1
	yc = (maxIdx-float32(y))/maxIdx*2 - 1
	return xc, yc
}

// DirectionForTexel returns the normalized direction through texel x, y of a face.
// Faces are ordered +X, -X, +Y, -Y, +Z, -Z.
func DirectionForTexel(face, x, y, dim int) mgl32.Vec3 {
	xc, yc := faceCoords(x, y, dim)
	return faceVector(face, xc, yc).Normalize()
}

func faceVector(face int, xc, yc float32) mgl32.Vec3 {
	switch CubeMapFace(face) {
	case CubeMapPositiveX:
		return mgl32.Vec3{unitLength, yc, -xc}
	case CubeMapNegativeX:
		return mgl32.Vec3{-unitLength, yc, xc}
	case CubeMapPositiveY:
		return mgl32.Vec3{xc, unitLength, -yc}
	case CubeMapNegativeY:
		return mgl32.Vec3{xc, -unitLength, yc}
	case CubeMapPositiveZ:
		return mgl32.Vec3{xc, yc, unitLength}
	default:
		return mgl32.Vec3{-xc, yc, -unitLength}
	}
}

// SolidAngle returns the solid angle subtended by texel x, y of a face with 1/dim = invDim.
func SolidAngle(invDim float32, x, y int) float32 {
	s := ((float32(x) + 0.5) * 2 * invDim) - 1
	t := ((float32(y) + 0.5) * 2 * invDim) - 1
	x0, y0 := s-invDim, t-invDim
	x1, y1 := s+invDim, t+invDim

	return areaElement(x0, y0) - areaElement(x0, y1) - areaElement(x1, y0) + areaElement(x1, y1)
}

func areaElement(x, y float32) float32 {
	return math32.Atan2(x*y, math32.Sqrt(x*x+y*y+1))
}

// Based on: https://www.gamedev.net/forums/topic/687535-implementing-a-cube-map-lookup-function/5337472/
// Unlike a GPU lookup the face coordinates span texel centers, which makes this the
// exact inverse of DirectionForTexel.
func directionToFace(dir mgl32.Vec3) (face int, xc, yc float32) {
	rx, ry, rz := dir[0], dir[1], dir[2]
	ax := math32.Abs(rx)
	ay := math32.Abs(ry)
	az := math32.Abs(rz)

	if ax >= ay && ax >= az {
		if rx >= 0 {
			return int(CubeMapPositiveX), -rz / ax * unitLength, ry / ax * unitLength
		}
		return int(CubeMapNegativeX), rz / ax * unitLength, ry / ax * unitLength
	} else if ay >= ax && ay >= az {
		if ry >= 0 {
			return int(CubeMapPositiveY), rx / ay * unitLength, -rz / ay * unitLength
		}
		return int(CubeMapNegativeY), rx / ay * unitLength, rz / ay * unitLength
	}
	if rz >= 0 {
		return int(CubeMapPositiveZ), rx / az * unitLength, ry / az * unitLength
	}
	return int(CubeMapNegativeZ), -rx / az * unitLength, ry / az * unitLength
}

// Lookup bilinearly samples the base level of src in direction dir.
func Lookup(src CubeSource, dir mgl32.Vec3) (r, g, b float32) {
	dim, _, _ := src.Dims()
	face, xc, yc := directionToFace(dir)
	if dim <= 1 {
		return src.Texel(face, 0, 0)
	}

	maxIdx := float32(dim - 1)
	u := (xc + 1) * 0.5 * maxIdx
	v := maxIdx - (yc+1)*0.5*maxIdx

	ufloor, ufrac := math32.Modf(clamp(u, 0, maxIdx))
	vfloor, vfrac := math32.Modf(clamp(v, 0, maxIdx))
	u0, v0 := int(ufloor), int(vfloor)
	u1, v1 := u0+1, v0+1
	if u1 >= dim {
		u1 = dim - 1
	}
	if v1 >= dim {
		v1 = dim - 1
	}

	r00, g00, b00 := src.Texel(face, u0, v0)
	r10, g10, b10 := src.Texel(face, u1, v0)
	r01, g01, b01 := src.Texel(face, u0, v1)
	r11, g11, b11 := src.Texel(face, u1, v1)

	rh0 := r00*(1.0-ufrac) + r10*ufrac
	gh0 := g00*(1.0-ufrac) + g10*ufrac
	bh0 := b00*(1.0-ufrac) + b10*ufrac

	rh1 := r01*(1.0-ufrac) + r11*ufrac
	gh1 := g01*(1.0-ufrac) + g11*ufrac
	bh1 := b01*(1.0-ufrac) + b11*ufrac

	r = rh0*(1.0-vfrac) + rh1*vfrac
	g = gh0*(1.0-vfrac) + gh1*vfrac
	b = bh0*(1.0-vfrac) + bh1*vfrac
	return r, g, b
}

func clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}

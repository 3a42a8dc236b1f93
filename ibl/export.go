package ibl

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mrjoshuak/go-openexr/exr"
)

type levelView struct {
	cm    *CubeMap
	level int
}

func (v levelView) Dims() (width, height, faces int) {
	s := v.cm.Size(v.level)
	return s, s, 6
}

func (v levelView) HasPixels() bool {
	return v.cm.HasPixels()
}

func (v levelView) Texel(face, x, y int) (r, g, b float32) {
	return v.cm.LevelTexel(v.level, face, x, y)
}

// LevelSource exposes one level of the mip chain as a CubeSource.
func (cm *CubeMap) LevelSource(level int) CubeSource {
	return levelView{cm: cm, level: level}
}

// ExportEnvImage lays out a level as an OpenEXR cube strip of N x 6N pixels.
func ExportEnvImage(cm *CubeMap, level int) *exr.RGBAImage {
	src := cm.LevelSource(level)
	size := cm.Size(level)
	img := exr.NewRGBAImage(image.Rect(0, 0, size, 6*size))
	dw := exr.Box2i{Max: exr.V2i{X: int32(size - 1), Y: int32(6*size - 1)}}

	for face := 0; face < 6; face++ {
		for py := 0; py < size; py++ {
			for px := 0; px < size; px++ {
				pos := exr.V2f{X: float32(px), Y: float32(py)}
				dir := exr.DirectionFromCubeFaceAndPosition(face, pos, dw)
				x, y := exr.CubePixel(face, dw, pos)
				r, g, b := Lookup(src, mgl32.Vec3{dir.X, dir.Y, dir.Z})
				img.SetRGBA(x, y, r, g, b, 1)
			}
		}
	}
	return img
}

package ibl

import (
	"iblcache/libio"
	"math/bits"
)

type CubeMapFace int

const (
	CubeMapPositiveX = CubeMapFace(iota)
	CubeMapNegativeX
	CubeMapPositiveY
	CubeMapNegativeY
	CubeMapPositiveZ
	CubeMapNegativeZ
)

func (f CubeMapFace) String() string {
	switch f {
	case CubeMapPositiveX:
		return "+x"
	case CubeMapNegativeX:
		return "-x"
	case CubeMapPositiveY:
		return "+y"
	case CubeMapNegativeY:
		return "-y"
	case CubeMapPositiveZ:
		return "+z"
	case CubeMapNegativeZ:
		return "-z"
	default:
		return "invalid"
	}
}

// CubeSource is a readable radiance cube map.
// Dims reports the face width, face height and the number of faces.
type CubeSource interface {
	Dims() (width, height, faces int)
	HasPixels() bool
	Texel(face, x, y int) (r, g, b float32)
}

// CubeMap holds a mip chained rgb float cube map.
// Every level is stored face after face, each face row by row starting at the top.
type CubeMap struct {
	Name     string
	Path     string
	Sampler  libio.Sampler
	BaseSize int
	Levels   int
	data     []float32
}

// NewCubeMap wraps data as a cube map. When data is nil the storage is allocated.
func NewCubeMap(data []float32, size, levels int) *CubeMap {
	if levels < 1 {
		levels = 1
	}
	if data == nil {
		data = make([]float32, calcCubeMapPixels(size, levels)*3)
	}

	return &CubeMap{
		Sampler:  libio.LinearClampSampler(),
		BaseSize: size,
		Levels:   levels,
		data:     data,
	}
}

// MaxMipmaps is the length of a full mip chain for the face size, ending at 1x1.
func MaxMipmaps(size int) int {
	if size < 1 {
		return 0
	}
	return bits.Len(uint(size))
}

func levelSize(size, level int) int {
	size >>= level
	if size < 1 {
		return 1
	}
	return size
}

func calcCubeMapPixels(size, levels int) int {
	pixels := 0
	for lvl := 0; lvl < levels; lvl++ {
		s := levelSize(size, lvl)
		pixels += 6 * s * s
	}
	return pixels
}

// start and end pixel index of a level
func calcCubeMapOffset(size, level int) (start, end int) {
	start = calcCubeMapPixels(size, level)
	s := levelSize(size, level)
	return start, start + 6*s*s
}

// Size returns the face size of the level.
func (cm *CubeMap) Size(level int) int {
	return levelSize(cm.BaseSize, level)
}

func (cm *CubeMap) Level(level int) []float32 {
	start, end := calcCubeMapOffset(cm.BaseSize, level)
	return cm.data[start*3 : end*3 : end*3]
}

func (cm *CubeMap) Face(level, face int) []float32 {
	start, _ := calcCubeMapOffset(cm.BaseSize, level)
	s := cm.Size(level)
	o := (start + face*s*s) * 3
	return cm.data[o : o+s*s*3 : o+s*s*3]
}

// Data returns the backing storage of all levels.
func (cm *CubeMap) Data() []float32 {
	return cm.data
}

func (cm *CubeMap) Dims() (width, height, faces int) {
	return cm.BaseSize, cm.BaseSize, 6
}

func (cm *CubeMap) HasPixels() bool {
	return len(cm.data) >= calcCubeMapPixels(cm.BaseSize, cm.Levels)*3 && cm.BaseSize > 0
}

// Texel reads from the base level.
func (cm *CubeMap) Texel(face, x, y int) (r, g, b float32) {
	return cm.LevelTexel(0, face, x, y)
}

func (cm *CubeMap) LevelTexel(level, face, x, y int) (r, g, b float32) {
	s := cm.Size(level)
	pix := cm.Face(level, face)
	i := (x + y*s) * 3
	return pix[i], pix[i+1], pix[i+2]
}

func (cm *CubeMap) SetTexel(level, face, x, y int, r, g, b float32) {
	s := cm.Size(level)
	pix := cm.Face(level, face)
	i := (x + y*s) * 3
	pix[i], pix[i+1], pix[i+2] = r, g, b
}

// Fill sets every texel of every level to one color.
func (cm *CubeMap) Fill(r, g, b float32) {
	for i := 0; i+2 < len(cm.data); i += 3 {
		cm.data[i], cm.data[i+1], cm.data[i+2] = r, g, b
	}
}

// Equal reports whether both cube maps have the same layout and bit identical pixels.
func (cm *CubeMap) Equal(other *CubeMap) bool {
	if cm.BaseSize != other.BaseSize || cm.Levels != other.Levels || len(cm.data) != len(other.data) {
		return false
	}
	for i := range cm.data {
		if cm.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

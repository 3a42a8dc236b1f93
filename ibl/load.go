package ibl

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mrjoshuak/go-openexr/exr"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FacePatternChar is replaced by the face index 0 to 5 in face pattern paths.
const FacePatternChar = "#"

// LoadCubeMap loads a radiance cube map.
//
// Supported sources are encoded cube maps (.cube), face patterns such as "sky_#.png"
// where # is replaced by the face index, OpenEXR cube strips and lat-long images, and
// single LDR images laid out as an N x 6N strip or a 2N x N lat-long panorama.
func LoadCubeMap(path string) (*CubeMap, error) {
	var cm *CubeMap
	var err error

	switch {
	case strings.Contains(filepath.Base(path), FacePatternChar):
		cm, err = loadFacePattern(path)
	case strings.EqualFold(filepath.Ext(path), ".cube"):
		cm, err = loadEncodedCubeMap(path)
	default:
		cm, err = loadEnvImage(path)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load cube map %q: %w", path, err)
	}

	if cm.Path == "" {
		cm.Path = path
	}
	if cm.Name == "" {
		cm.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cm, nil
}

func loadEncodedCubeMap(path string) (*CubeMap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeCubeMap(bufio.NewReader(file))
}

// rgbaImage is a float rgba image with a stride of 4, rows top to bottom.
type rgbaImage struct {
	width, height int
	pix           []float32
}

func (img *rgbaImage) rgb(x, y int) (r, g, b float32) {
	i := (x + y*img.width) * 4
	return img.pix[i], img.pix[i+1], img.pix[i+2]
}

func readImage(path string) (*rgbaImage, exr.EnvMap, bool, error) {
	if strings.EqualFold(filepath.Ext(path), ".exr") {
		return readExr(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, 0, false, err
	}
	defer file.Close()

	img, _, err := image.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, 0, false, err
	}

	bounds := img.Bounds()
	result := &rgbaImage{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		pix:    make([]float32, bounds.Dx()*bounds.Dy()*4),
	}
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			result.pix[i+0] = float32(r) / 0xffff
			result.pix[i+1] = float32(g) / 0xffff
			result.pix[i+2] = float32(b) / 0xffff
			result.pix[i+3] = float32(a) / 0xffff
			i += 4
		}
	}
	return result, 0, false, nil
}

func readExr(path string) (*rgbaImage, exr.EnvMap, bool, error) {
	in, err := exr.OpenRGBAInputFile(path)
	if err != nil {
		return nil, 0, false, err
	}
	defer in.Close()

	header := in.Header()
	img, err := in.ReadRGBA()
	if err != nil {
		return nil, 0, false, err
	}

	result := &rgbaImage{
		width:  img.Rect.Dx(),
		height: img.Rect.Dy(),
		pix:    img.Pix,
	}
	return result, header.Envmap(), header.HasEnvmap(), nil
}

func loadFacePattern(pattern string) (*CubeMap, error) {
	var cm *CubeMap
	for face := 0; face < 6; face++ {
		path := strings.Replace(pattern, FacePatternChar, strconv.Itoa(face), 1)
		img, _, _, err := readImage(path)
		if err != nil {
			return nil, err
		}
		if img.width != img.height {
			return nil, fmt.Errorf("face %d is %dx%d: %w", face, img.width, img.height, ErrNonSquare)
		}
		if cm == nil {
			cm = NewCubeMap(nil, img.width, 1)
		} else if img.width != cm.BaseSize {
			return nil, fmt.Errorf("face %d is %d wide but face 0 is %d: %w", face, img.width, cm.BaseSize, ErrNonSquare)
		}
		for y := 0; y < img.height; y++ {
			for x := 0; x < img.width; x++ {
				r, g, b := img.rgb(x, y)
				cm.SetTexel(0, face, x, y, r, g, b)
			}
		}
	}
	cm.Name = strings.TrimSuffix(strings.ReplaceAll(filepath.Base(pattern), FacePatternChar, ""), filepath.Ext(pattern))
	return cm, nil
}

func loadEnvImage(path string) (*CubeMap, error) {
	img, envType, tagged, err := readImage(path)
	if err != nil {
		return nil, err
	}
	if img.width == 0 || img.height == 0 {
		return nil, ErrNoPixelData
	}

	if !tagged {
		switch {
		case img.height == 6*img.width:
			envType = exr.EnvMapCube
		case img.width == 2*img.height:
			envType = exr.EnvMapLatLong
		default:
			return nil, fmt.Errorf("%dx%d is neither a cube strip nor a lat-long image: %w", img.width, img.height, ErrNotCubeMap)
		}
	}

	env := exr.NewEnvMapImage(envType, img.width, img.height)
	for i := range env.Pixels {
		env.Pixels[i] = exr.RGBA{R: img.pix[i*4], G: img.pix[i*4+1], B: img.pix[i*4+2], A: img.pix[i*4+3]}
	}

	var size int
	if envType == exr.EnvMapCube {
		size = exr.CubeSizeOfFace(env.DataWindow())
	} else {
		size = img.width / 4
	}
	if size < 1 {
		return nil, errors.Join(ErrInvalidSize, fmt.Errorf("%dx%d source is too small", img.width, img.height))
	}

	return ResampleEnvImage(env, size), nil
}

// ResampleEnvImage converts an OpenEXR environment image into a single level cube map.
func ResampleEnvImage(env *exr.EnvMapImage, size int) *CubeMap {
	cm := NewCubeMap(nil, size, 1)
	for face := 0; face < 6; face++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				dir := DirectionForTexel(face, x, y, size)
				c := env.Lookup(exr.V3f{X: dir[0], Y: dir[1], Z: dir[2]})
				cm.SetTexel(0, face, x, y, c.R, c.G, c.B)
			}
		}
	}
	return cm
}

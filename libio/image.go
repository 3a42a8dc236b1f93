package libio

import (
	goimg "image"

	"github.com/chewxy/math32"
)

const MagicNumberF32 = 0x6d16837d

type FloatImageVersion uint32

const (
	F32Version1_001_000 = FloatImageVersion(1_001_000)
	F32Version1_002_000 = FloatImageVersion(1_002_000)
)

type FloatImageCompression uint32

const (
	FloatImageCompressionNone = FloatImageCompression(iota)
	FloatImageCompressionFixedPoint16Lz4
	FloatImageCompressionHalf16Lz4
)

type image struct {
	Channels      int
	Width, Height int
}

// Calculates the tuple index into the images data.
//
// Note that the origin (0,0) is in the bottom left, as opposed to Go's top left origin
func (img *image) Index(x, y int) int {
	return x*img.Channels + y*img.Channels*img.Width
}

func (img *image) Count() int {
	return img.Width * img.Height
}

type IntImage struct {
	image
	Pix []uint8
}

func NewIntImage(pix []uint8, channels int, width, height int) *IntImage {
	return &IntImage{
		Pix: pix,
		image: image{
			Channels: channels,
			Width:    width,
			Height:   height,
		},
	}
}

func (img *IntImage) ToRGBA() *goimg.RGBA {
	rgba := goimg.NewRGBA(goimg.Rect(0, 0, img.Width, img.Height))

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := (x + y*img.Width) * img.Channels
			// flipped vertically
			j := (x + (img.Height-y-1)*img.Width) * 4
			for c := 0; c < img.Channels && c < 4; c++ {
				rgba.Pix[j+c] = img.Pix[i+c]
			}
			for c := img.Channels; c < 3; c++ {
				rgba.Pix[j+c] = 0
			}
			if img.Channels < 4 {
				rgba.Pix[j+3] = 0xff
			}
		}
	}

	return rgba
}

// The v1.2 header stores the sampler in what used to be padding.
type FloatImageHeader struct {
	Check         uint32
	Version       FloatImageVersion
	Width, Height uint32
	Channels      uint8
	Compression   FloatImageCompression
	Sampler       Sampler
	Unused        [9]uint8
}

type FloatImage struct {
	image
	Sampler Sampler
	Pix     []float32
}

func NewFloatImage(pix []float32, channels int, width, height int) *FloatImage {
	return &FloatImage{
		Pix: pix,
		image: image{
			Channels: channels,
			Width:    width,
			Height:   height,
		},
		Sampler: LinearClampSampler(),
	}
}

func (img *FloatImage) Bytes() int {
	return img.Width * img.Height * img.Channels * 4
}

// At returns the channels of the pixel at x, y.
func (img *FloatImage) At(x, y int) []float32 {
	i := img.Index(x, y)
	return img.Pix[i : i+img.Channels : i+img.Channels]
}

// Shuffle creates a new image whose channels are picked from this one by index.
func (img *FloatImage) Shuffle(channels []int) *FloatImage {
	count := img.Count()
	pix := make([]float32, count*len(channels))
	for i := 0; i < count; i++ {
		for c, src := range channels {
			pix[i*len(channels)+c] = img.Pix[i*img.Channels+src]
		}
	}
	result := NewFloatImage(pix, len(channels), img.Width, img.Height)
	result.Sampler = img.Sampler
	return result
}

// Normalize rescales every channel independently into [0, 1].
func (img *FloatImage) Normalize() {
	count := img.Count()
	for ch := 0; ch < img.Channels; ch++ {
		var min, max float32 = math32.Inf(1), math32.Inf(-1)
		for i := 0; i < count; i++ {
			v := img.Pix[i*img.Channels+ch]
			min = math32.Min(min, v)
			max = math32.Max(max, v)
		}
		r := max - min
		if r == 0 {
			r = 1
		}
		for i := 0; i < count; i++ {
			img.Pix[i*img.Channels+ch] = (img.Pix[i*img.Channels+ch] - min) / r
		}
	}
}

func (img *FloatImage) ToIntImage(gamma, scale float32) *IntImage {
	pix := make([]uint8, len(img.Pix))

	for i := 0; i < len(img.Pix); i++ {
		pix[i] = uint8(tonemap(img.Pix[i], 1.0/gamma, scale) * 0xff)
	}

	return NewIntImage(pix, img.Channels, img.Width, img.Height)
}

func tonemap(value, gamma, scale float32) float32 {
	value = math32.Pow(value, gamma) * scale
	return math32.Min(math32.Max(0.0, value), 1.0)
}

// Package libgl uploads prefiltered environments and the brdf lut to OpenGL.
// All functions must be called on the thread owning the GL context.
package libgl

import (
	"fmt"
	"iblcache/ibl"
	"iblcache/libio"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type Texture struct {
	glId   uint32
	target uint32
	width  int32
	height int32
	levels int32
}

var _ LabeledGlObject = (*Texture)(nil)

func (tex *Texture) Id() uint32 {
	return tex.glId
}

func (tex *Texture) Size() (width, height int) {
	return int(tex.width), int(tex.height)
}

func (tex *Texture) Levels() int {
	return int(tex.levels)
}

func (tex *Texture) Bind(unit int) {
	gl.BindTextureUnit(uint32(unit), tex.glId)
}

func (tex *Texture) Delete() {
	if tex.glId != 0 {
		gl.DeleteTextures(1, &tex.glId)
		tex.glId = 0
	}
}

func (tex *Texture) SetDebugLabel(label string) {
	setObjectLabel(gl.TEXTURE, tex.glId, label)
}

// UploadCubeMap creates an immutable rgb16f cube map texture holding every level of cm.
// Face rows are uploaded top to bottom as GL expects for cube maps.
func UploadCubeMap(cm *ibl.CubeMap) (*Texture, error) {
	if cm == nil || !cm.HasPixels() {
		return nil, ibl.ErrNoPixelData
	}

	tex := &Texture{
		target: gl.TEXTURE_CUBE_MAP,
		width:  int32(cm.BaseSize),
		height: int32(cm.BaseSize),
		levels: int32(cm.Levels),
	}
	gl.CreateTextures(gl.TEXTURE_CUBE_MAP, 1, &tex.glId)
	gl.TextureStorage2D(tex.glId, tex.levels, gl.RGB16F, tex.width, tex.height)

	for level := 0; level < cm.Levels; level++ {
		size := int32(cm.Size(level))
		for face := 0; face < 6; face++ {
			data := cm.Face(level, face)
			gl.TextureSubImage3D(tex.glId, int32(level), 0, 0, int32(face), size, size, 1, gl.RGB, gl.FLOAT, gl.Ptr(data))
		}
	}

	applySampler(tex, cm.Sampler)
	tex.SetDebugLabel(cm.Name)
	return tex, nil
}

// UploadFloatImage creates a 2d texture from img. Two channel images such as the brdf lut become rg16f.
func UploadFloatImage(img *libio.FloatImage) (*Texture, error) {
	if img == nil || len(img.Pix) == 0 {
		return nil, ibl.ErrNoPixelData
	}

	var internalFormat, format uint32
	switch img.Channels {
	case 1:
		internalFormat, format = gl.R16F, gl.RED
	case 2:
		internalFormat, format = gl.RG16F, gl.RG
	case 3:
		internalFormat, format = gl.RGB16F, gl.RGB
	case 4:
		internalFormat, format = gl.RGBA16F, gl.RGBA
	default:
		return nil, fmt.Errorf("float image with %d channels cannot be uploaded", img.Channels)
	}

	tex := &Texture{
		target: gl.TEXTURE_2D,
		width:  int32(img.Width),
		height: int32(img.Height),
		levels: 1,
	}
	gl.CreateTextures(gl.TEXTURE_2D, 1, &tex.glId)
	gl.TextureStorage2D(tex.glId, 1, internalFormat, tex.width, tex.height)
	gl.TextureSubImage2D(tex.glId, 0, 0, 0, tex.width, tex.height, format, gl.FLOAT, gl.Ptr(img.Pix))

	applySampler(tex, img.Sampler)
	return tex, nil
}

func applySampler(tex *Texture, s libio.Sampler) {
	gl.TextureParameteri(tex.glId, gl.TEXTURE_MIN_FILTER, glFilter(s.MinFilter))
	gl.TextureParameteri(tex.glId, gl.TEXTURE_MAG_FILTER, glFilter(s.MagFilter))
	gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_S, glWrap(s.WrapU))
	gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_T, glWrap(s.WrapV))
	gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_R, glWrap(s.WrapW))
	gl.TextureParameteri(tex.glId, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TextureParameteri(tex.glId, gl.TEXTURE_MAX_LEVEL, tex.levels-1)
}

func glFilter(f libio.Filter) int32 {
	switch f {
	case libio.FilterNearest:
		return gl.NEAREST
	case libio.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}

func glWrap(w libio.Wrap) int32 {
	switch w {
	case libio.WrapRepeat:
		return gl.REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

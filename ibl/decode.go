package ibl

import (
	"encoding/binary"
	"fmt"
	"iblcache/libio"
	"io"

	"github.com/chewxy/math32"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// maximum accepted face size of a decoded cube map
const maxDecodeSize = 1 << 14

// bytes decoded per step, pixel storage grows with what the payload actually holds
const decodeChunk = 1 << 20

func DecodeCubeMap(r io.Reader) (cm *CubeMap, err error) {
	var br *libio.BinaryReader
	var ok bool

	if br, ok = r.(*libio.BinaryReader); !ok {
		br = &libio.BinaryReader{
			Src:   r,
			Order: binary.LittleEndian,
		}

		defer func() {
			if br.Err != nil {
				if err == nil {
					err = br.Err
				} else {
					err = fmt.Errorf("%v: %w", err, br.Err)
				}
			}
		}()
	}

	header := CubeMapHeader{}
	if !br.ReadRef(&header) {
		return nil, fmt.Errorf("expected cube map header; byte 0x%08x", br.LastIndex)
	}

	if header.Check != MagicNumberCubeMap {
		return nil, fmt.Errorf("cube map header is corrupt; byte 0x%08x", br.LastIndex)
	}

	if header.Version != CubeMapVersion1_000_000 {
		return nil, fmt.Errorf("cube map version %d unsupported; byte 0x%08x", header.Version, br.LastIndex)
	}

	if header.Size == 0 || header.Size > maxDecodeSize || header.Levels == 0 || int(header.Levels) > MaxMipmaps(int(header.Size)) {
		return nil, fmt.Errorf("cube map dimensions %dx%d with %d levels invalid; byte 0x%08x", header.Size, header.Size, header.Levels, br.LastIndex)
	}

	var name, path string
	br.ReadString(&name)
	br.ReadString(&path)

	var payloadLen uint64
	if !br.ReadRef(&payloadLen) {
		return nil, fmt.Errorf("expected cube map payload length; byte 0x%08x", br.LastIndex)
	}
	size, levels := int(header.Size), int(header.Levels)
	pixels := calcCubeMapPixels(size, levels)
	if header.Compression == CubeMapCompressionNone && payloadLen != uint64(pixels)*3*4 {
		return nil, fmt.Errorf("cube map payload of %d bytes does not hold %d pixels; byte 0x%08x", payloadLen, pixels, br.LastIndex)
	}
	payload := io.LimitReader(br, int64(payloadLen))

	var pixr io.Reader
	switch header.Compression {
	case CubeMapCompressionNone:
		pixr = payload
	case CubeMapCompressionLZ4, CubeMapCompressionLZ4Fast:
		pixr = lz4.NewReader(payload)
	case CubeMapCompressionZstd:
		// a single decoder reads synchronously and never past the payload
		zr, err := zstd.NewReader(payload, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		pixr = zr
	case CubeMapCompressionZlib:
		zr, err := zlib.NewReader(payload)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		pixr = zr
	default:
		return nil, fmt.Errorf("cube map compression id %d unsupported; byte 0x%08x", header.Compression, br.LastIndex)
	}

	data, err := decodeFloats(pixr, pixels*3)
	if err != nil {
		return nil, fmt.Errorf("expected %d encoded pixels; %w", pixels, err)
	}
	// drain what the decompressor left so the next object starts at the right offset
	if _, err = io.Copy(io.Discard, payload); err != nil {
		return nil, err
	}

	cm = NewCubeMap(data, size, levels)
	cm.Name = name
	cm.Path = path
	cm.Sampler = header.Sampler
	return cm, nil
}

// decodeFloats reads n little endian floats in chunks of at most decodeChunk bytes.
func decodeFloats(r io.Reader, n int) ([]float32, error) {
	buf := make([]byte, min(n*4, decodeChunk))
	data := make([]float32, 0, min(n, decodeChunk/4))
	for len(data) < n {
		chunk := buf[:min((n-len(data))*4, len(buf))]
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, err
		}
		for i := 0; i < len(chunk); i += 4 {
			data = append(data, math32.Float32frombits(binary.LittleEndian.Uint32(chunk[i:])))
		}
	}
	return data, nil
}

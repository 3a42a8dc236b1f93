package ibl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"iblcache/libio"
	"io"

	"github.com/chewxy/math32"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type EncodeContext struct {
	Compression CubeMapCompression
	// wraps the payload buffer with a compressor
	compressor func(w io.Writer) (io.WriteCloser, error)
}

type EncodeOption func(ctx *EncodeContext) error

// OptCompress enables lz4 compression; level 0 is the fast mode and negative levels disable it.
func OptCompress(level int) EncodeOption {
	levels := []lz4.CompressionLevel{lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9}
	if level < 0 {
		return nil
	}

	if level >= len(levels) {
		level = len(levels) - 1
	}

	return func(ctx *EncodeContext) error {
		if ctx.Compression != CubeMapCompressionNone {
			return fmt.Errorf("compression already configured")
		}
		if level == 0 {
			ctx.Compression = CubeMapCompressionLZ4Fast
		} else {
			ctx.Compression = CubeMapCompressionLZ4
		}
		ctx.compressor = func(w io.Writer) (io.WriteCloser, error) {
			lzw := lz4.NewWriter(w)
			if err := lzw.Apply(lz4.CompressionLevelOption(levels[level])); err != nil {
				return nil, err
			}
			return lzw, nil
		}
		return nil
	}
}

// OptZstd enables zstd compression. Levels map to the zstd encoder presets 1 to 4.
func OptZstd(level int) EncodeOption {
	if level < 0 {
		return nil
	}
	return func(ctx *EncodeContext) error {
		if ctx.Compression != CubeMapCompressionNone {
			return fmt.Errorf("compression already configured")
		}
		ctx.Compression = CubeMapCompressionZstd
		ctx.compressor = func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		return nil
	}
}

// OptZlib enables deflate compression with a zlib level from 1 to 9.
func OptZlib(level int) EncodeOption {
	if level < 0 {
		return nil
	}
	if level > zlib.BestCompression {
		level = zlib.BestCompression
	}
	return func(ctx *EncodeContext) error {
		if ctx.Compression != CubeMapCompressionNone {
			return fmt.Errorf("compression already configured")
		}
		ctx.Compression = CubeMapCompressionZlib
		ctx.compressor = func(w io.Writer) (io.WriteCloser, error) {
			return zlib.NewWriterLevel(w, level)
		}
		return nil
	}
}

func EncodeCubeMap(w io.Writer, cm *CubeMap, options ...EncodeOption) (err error) {
	var bw *libio.BinaryWriter
	var ok bool

	if bw, ok = w.(*libio.BinaryWriter); !ok {
		bw = &libio.BinaryWriter{
			Dst:   w,
			Order: binary.LittleEndian,
		}

		defer func() {
			if bw.Err != nil {
				if err == nil {
					err = bw.Err
				} else {
					err = fmt.Errorf("%v: %w", err, bw.Err)
				}
			}
		}()
	}

	if !cm.HasPixels() {
		return ErrNoPixelData
	}

	ctx := EncodeContext{}
	for _, opt := range options {
		if opt != nil {
			err = opt(&ctx)
			if err != nil {
				return err
			}
		}
	}

	header := CubeMapHeader{
		Check:       MagicNumberCubeMap,
		Version:     CubeMapVersion1_000_000,
		Compression: ctx.Compression,
		Size:        uint32(cm.BaseSize),
		Levels:      uint32(cm.Levels),
		Sampler:     cm.Sampler,
	}
	if !bw.WriteRef(&header) {
		return fmt.Errorf("could not write cube map header: %w", bw.Err)
	}
	if !bw.WriteString(cm.Name) || !bw.WriteString(cm.Path) {
		return fmt.Errorf("could not write cube map name: %w", bw.Err)
	}

	payload, err := encodePixels(cm.data[:calcCubeMapPixels(cm.BaseSize, cm.Levels)*3], ctx.compressor)
	if err != nil {
		return fmt.Errorf("could not compress cube map pixels: %w", err)
	}

	bw.WriteRef(uint64(len(payload)))
	if !bw.WriteBytes(payload) {
		return fmt.Errorf("could not write cube map pixels: %w", bw.Err)
	}

	return nil
}

func encodePixels(pix []float32, compressor func(w io.Writer) (io.WriteCloser, error)) ([]byte, error) {
	raw := make([]byte, len(pix)*4)
	for i, v := range pix {
		binary.LittleEndian.PutUint32(raw[i*4:], math32.Float32bits(v))
	}
	if compressor == nil {
		return raw, nil
	}

	buf := bytes.NewBuffer(nil)
	cw, err := compressor(buf)
	if err != nil {
		return nil, err
	}
	if _, err := cw.Write(raw); err != nil {
		return nil, err
	}
	if err := cw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

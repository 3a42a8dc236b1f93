package ibl

import "iblcache/libio"

const MagicNumberCubeMap = 0x78b85412

type CubeMapVersion uint32

const (
	CubeMapVersion1_000_000 = CubeMapVersion(1_000_000)
)

type CubeMapCompression uint32

const (
	CubeMapCompressionNone = CubeMapCompression(iota)
	CubeMapCompressionLZ4Fast
	CubeMapCompressionLZ4
	CubeMapCompressionZstd
	CubeMapCompressionZlib
)

func (c CubeMapCompression) String() string {
	switch c {
	case CubeMapCompressionNone:
		return "none"
	case CubeMapCompressionLZ4Fast:
		return "lz4-fast"
	case CubeMapCompressionLZ4:
		return "lz4"
	case CubeMapCompressionZstd:
		return "zstd"
	case CubeMapCompressionZlib:
		return "zlib"
	default:
		return "unknown"
	}
}

// The header is followed by the name and path strings and the length prefixed pixel payload.
// The length prefix keeps stream decompressors from reading past the cube map.
type CubeMapHeader struct {
	Check       uint32
	Version     CubeMapVersion
	Compression CubeMapCompression
	Size        uint32
	Levels      uint32
	Sampler     libio.Sampler
	Unused      [3]uint8
}

package ibl_test

import (
	"bytes"
	"encoding/binary"
	"iblcache/ibl"
	"iblcache/libio"
	"runtime"
	"testing"
)

func TestCubeMapRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		option      ibl.EncodeOption
		compression ibl.CubeMapCompression
	}{
		{"none", nil, ibl.CubeMapCompressionNone},
		{"lz4 fast", ibl.OptCompress(0), ibl.CubeMapCompressionLZ4Fast},
		{"lz4", ibl.OptCompress(3), ibl.CubeMapCompressionLZ4},
		{"zstd", ibl.OptZstd(3), ibl.CubeMapCompressionZstd},
		{"zlib", ibl.OptZlib(6), ibl.CubeMapCompressionZlib},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := randomCubeMap(8, 4, 3)
			cm.Name = "studio"
			cm.Path = "/envs/studio.exr"
			cm.Sampler.MinFilter = libio.FilterLinearMipmapLinear

			buf := new(bytes.Buffer)
			if err := ibl.EncodeCubeMap(buf, cm, tt.option); err != nil {
				t.Fatal(err)
			}

			if compression := ibl.CubeMapCompression(buf.Bytes()[8]); compression != tt.compression {
				t.Errorf("compression should be: %v but is %v", tt.compression, compression)
			}

			decoded, err := ibl.DecodeCubeMap(buf)
			if err != nil {
				t.Fatal(err)
			}

			if !cm.Equal(decoded) {
				t.Errorf("decoded pixels should be identical")
			}
			if decoded.Name != cm.Name || decoded.Path != cm.Path {
				t.Errorf("name and path should be: %q, %q but are %q, %q", cm.Name, cm.Path, decoded.Name, decoded.Path)
			}
			if decoded.Sampler != cm.Sampler {
				t.Errorf("sampler should be: %+v but is %+v", cm.Sampler, decoded.Sampler)
			}
		})
	}
}

func TestCubeMapSequentialDecode(t *testing.T) {
	first := randomCubeMap(4, 1, 1)
	second := randomCubeMap(8, 3, 2)

	buf := new(bytes.Buffer)
	if err := ibl.EncodeCubeMap(buf, first, ibl.OptCompress(0)); err != nil {
		t.Fatal(err)
	}
	if err := ibl.EncodeCubeMap(buf, second, ibl.OptZstd(1)); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("tail")

	r := bytes.NewReader(buf.Bytes())
	a, err := ibl.DecodeCubeMap(r)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ibl.DecodeCubeMap(r)
	if err != nil {
		t.Fatal(err)
	}

	if !first.Equal(a) || !second.Equal(b) {
		t.Errorf("both cube maps should decode from a shared stream")
	}
	rest := make([]byte, 8)
	n, _ := r.Read(rest)
	if string(rest[:n]) != "tail" {
		t.Errorf("reader should stop at the end of the second cube map but %q remains", rest[:n])
	}
}

func TestCubeMapDoubleCompression(t *testing.T) {
	err := ibl.EncodeCubeMap(new(bytes.Buffer), randomCubeMap(2, 1, 1), ibl.OptCompress(1), ibl.OptZstd(1))
	if err == nil {
		t.Errorf("configuring two compressors should fail")
	}
}

func TestDecodeCubeMapCorrupt(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := ibl.EncodeCubeMap(buf, randomCubeMap(2, 1, 1)); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	data[0] ^= 0xff

	if _, err := ibl.DecodeCubeMap(bytes.NewReader(data)); err == nil {
		t.Errorf("a corrupt magic number should be rejected")
	}

	if _, err := ibl.DecodeCubeMap(bytes.NewReader(data[:10])); err == nil {
		t.Errorf("a truncated header should be rejected")
	}
}

// encodeRawCubeMap writes a cube map header followed by a payload that is not checked against it.
func encodeRawCubeMap(t *testing.T, header ibl.CubeMapHeader, payload []byte) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	bw := &libio.BinaryWriter{Order: binary.LittleEndian, Dst: buf}
	header.Check = ibl.MagicNumberCubeMap
	header.Version = ibl.CubeMapVersion1_000_000
	bw.WriteRef(&header)
	bw.WriteString("")
	bw.WriteString("")
	bw.WriteRef(uint64(len(payload)))
	bw.WriteBytes(payload)
	if bw.Err != nil {
		t.Fatal(bw.Err)
	}
	return buf.Bytes()
}

func TestDecodeCubeMapOversizedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header ibl.CubeMapHeader
	}{
		{"uncompressed", ibl.CubeMapHeader{Compression: ibl.CubeMapCompressionNone, Size: 4096, Levels: 1}},
		{"lz4", ibl.CubeMapHeader{Compression: ibl.CubeMapCompressionLZ4, Size: 4096, Levels: 1}},
		{"zstd", ibl.CubeMapHeader{Compression: ibl.CubeMapCompressionZstd, Size: 4096, Levels: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeRawCubeMap(t, tt.header, make([]byte, 16))

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := ibl.DecodeCubeMap(bytes.NewReader(data))
			runtime.ReadMemStats(&after)

			if err == nil {
				t.Fatal("a payload smaller than the header claims should be rejected")
			}
			if allocated := after.TotalAlloc - before.TotalAlloc; allocated > 64<<20 {
				t.Errorf("decoding should allocate less than 64 MiB but allocated %d MiB", allocated>>20)
			}
		})
	}
}

func TestDecodeCubeMapPayloadLength(t *testing.T) {
	header := ibl.CubeMapHeader{Compression: ibl.CubeMapCompressionNone, Size: 1, Levels: 1}
	if _, err := ibl.DecodeCubeMap(bytes.NewReader(encodeRawCubeMap(t, header, make([]byte, 6*3*4)))); err != nil {
		t.Fatalf("an exact payload should decode: %v", err)
	}
	if _, err := ibl.DecodeCubeMap(bytes.NewReader(encodeRawCubeMap(t, header, make([]byte, 6*3*4+4)))); err == nil {
		t.Errorf("a payload longer than the pixels should be rejected")
	}
}

func TestDecodeCubeMapTooManyLevels(t *testing.T) {
	header := ibl.CubeMapHeader{Compression: ibl.CubeMapCompressionNone, Size: 4, Levels: 4}
	pixels := 6 * (16 + 4 + 1 + 1)
	if _, err := ibl.DecodeCubeMap(bytes.NewReader(encodeRawCubeMap(t, header, make([]byte, pixels*3*4)))); err == nil {
		t.Errorf("levels past 1x1 should be rejected")
	}
}

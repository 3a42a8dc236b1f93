package envmap_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"iblcache/envmap"
	"iblcache/ibl"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteOpenRoundTrip(t *testing.T) {
	for _, option := range []ibl.EncodeOption{nil, ibl.OptCompress(0), ibl.OptZstd(2)} {
		env := envmap.New(randomCubeMap(8, 5),
			envmap.WithBlocking(),
			envmap.WithPrefilteredSize(4),
			envmap.WithPrefilteredSamples(8),
			envmap.WithMipmaps(3))

		path := filepath.Join(t.TempDir(), "cache", env.Hash()+".env")
		if err := env.Write(path, option); err != nil {
			t.Fatal(err)
		}

		loaded, err := envmap.Open(path)
		if err != nil {
			t.Fatal(err)
		}

		if loaded.State() != envmap.StatePrepared || !loaded.Prepared().IsDone() {
			t.Errorf("a loaded environment should be prepared but is %v", loaded.State())
		}
		if loaded.SHCoefficients() != env.SHCoefficients() {
			t.Errorf("sh coefficients should be: %v but are %v", env.SHCoefficients(), loaded.SHCoefficients())
		}
		if !loaded.Source().Equal(env.Source()) {
			t.Error("source pixels should be identical")
		}
		if !loaded.Prefiltered().Equal(env.Prefiltered()) {
			t.Error("prefiltered mip chain should be identical")
		}
		if loaded.Prefiltered().Sampler != env.Prefiltered().Sampler {
			t.Error("prefiltered sampler should survive")
		}
		if loaded.Hash() != env.Hash() || loaded.Mipmaps() != 3 {
			t.Errorf("hash and mipmaps should be: %s, 3 but are %s, %d", env.Hash(), loaded.Hash(), loaded.Mipmaps())
		}
	}
}

func TestShTrailer(t *testing.T) {
	env := envmap.New(randomCubeMap(4, 2), envmap.WithBlocking(), envmap.WithPrefilteredSize(2), envmap.WithPrefilteredSamples(2), envmap.WithMipmaps(1))

	buf := new(bytes.Buffer)
	if err := env.Encode(buf); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()
	trailer := data[len(data)-27*4:]
	var floats [27]float32
	if err := binary.Read(bytes.NewReader(trailer), binary.LittleEndian, &floats); err != nil {
		t.Fatal(err)
	}
	sh := env.SHCoefficients()
	if floats != sh.Floats() {
		t.Errorf("the file should end with the 27 sh floats")
	}
}

func TestEncodeUnprepared(t *testing.T) {
	env := envmap.New(whiteCubeMap(4), envmap.WithSkipPrepare())
	if err := env.Encode(new(bytes.Buffer)); !errors.Is(err, envmap.ErrNotPrepared) {
		t.Errorf("error should be: %v but is %v", envmap.ErrNotPrepared, err)
	}

	dir := t.TempDir()
	if err := env.Write(filepath.Join(dir, "x.env")); err == nil {
		t.Fatal("writing an unprepared environment should fail")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("a failed write should leave nothing behind but left %d files", len(entries))
	}
}

func TestDecodeCorrupt(t *testing.T) {
	env := envmap.New(whiteCubeMap(2), envmap.WithBlocking(), envmap.WithPrefilteredSize(2), envmap.WithPrefilteredSamples(1), envmap.WithMipmaps(1))
	buf := new(bytes.Buffer)
	if err := env.Encode(buf); err != nil {
		t.Fatal(err)
	}
	valid := buf.Bytes()

	corrupt := bytes.Clone(valid)
	corrupt[0] ^= 0xff
	if _, err := envmap.Decode(bytes.NewReader(corrupt)); !errors.Is(err, envmap.ErrCorrupt) {
		t.Errorf("error should be: %v but is %v", envmap.ErrCorrupt, err)
	}

	version := bytes.Clone(valid)
	binary.LittleEndian.PutUint32(version[4:], 9)
	if _, err := envmap.Decode(bytes.NewReader(version)); !errors.Is(err, envmap.ErrUnsupportedVersion) {
		t.Errorf("error should be: %v but is %v", envmap.ErrUnsupportedVersion, err)
	}

	truncated := valid[:len(valid)-10]
	if _, err := envmap.Decode(bytes.NewReader(truncated)); !errors.Is(err, envmap.ErrCorrupt) {
		t.Errorf("error should be: %v but is %v", envmap.ErrCorrupt, err)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := envmap.Open(filepath.Join(t.TempDir(), "missing.env"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should be: %v but is %v", os.ErrNotExist, err)
	}
}

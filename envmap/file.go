package envmap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"iblcache/ibl"
	"iblcache/libio"
	"io"
	"os"
	"path/filepath"
)

const MagicNumberEnv = 0x454e5631

type EnvVersion uint32

const (
	EnvVersion1_000_000 = EnvVersion(1_000_000)
)

// EnvHeader is followed by the source cube map, the prefiltered cube map and
// the 27 floats of the SH coefficients.
type EnvHeader struct {
	Check              uint32
	Version            EnvVersion
	PrefilteredSize    uint32
	PrefilteredSamples uint32
}

// Encode writes a prepared environment.
func (env *EnvMap) Encode(w io.Writer, options ...ibl.EncodeOption) (err error) {
	if !env.prepared.IsDone() {
		return ErrNotPrepared
	}
	if err := env.prepared.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotPrepared, err)
	}

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
					err = fmt.Errorf("%w: %w", err, bw.Err)
				}
			}
		}()
	}

	header := EnvHeader{
		Check:              MagicNumberEnv,
		Version:            EnvVersion1_000_000,
		PrefilteredSize:    uint32(env.opts.size),
		PrefilteredSamples: uint32(env.opts.samples),
	}
	if !bw.WriteRef(&header) {
		return fmt.Errorf("could not write environment header: %w", bw.Err)
	}

	if err := ibl.EncodeCubeMap(bw, env.source, options...); err != nil {
		return fmt.Errorf("could not write source cube map: %w", err)
	}
	if err := ibl.EncodeCubeMap(bw, env.prefiltered, options...); err != nil {
		return fmt.Errorf("could not write prefiltered cube map: %w", err)
	}

	floats := env.sh.Floats()
	if !bw.WriteRef(&floats) {
		return fmt.Errorf("could not write sh coefficients: %w", bw.Err)
	}
	return nil
}

// Decode reads an environment written by Encode. It is returned prepared.
func Decode(r io.Reader, opts ...Option) (env *EnvMap, err error) {
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
					err = fmt.Errorf("%w: %w", err, br.Err)
				}
			}
		}()
	}

	header := EnvHeader{}
	if !br.ReadRef(&header) {
		return nil, fmt.Errorf("%w: expected environment header; byte 0x%08x", ErrCorrupt, br.LastIndex)
	}
	if header.Check != MagicNumberEnv {
		return nil, fmt.Errorf("%w: environment header is corrupt; byte 0x%08x", ErrCorrupt, br.LastIndex)
	}
	if header.Version != EnvVersion1_000_000 {
		return nil, fmt.Errorf("%w: %d; byte 0x%08x", ErrUnsupportedVersion, header.Version, br.LastIndex)
	}

	source, err := ibl.DecodeCubeMap(br)
	if err != nil {
		return nil, fmt.Errorf("%w: source cube map: %w", ErrCorrupt, err)
	}
	prefiltered, err := ibl.DecodeCubeMap(br)
	if err != nil {
		return nil, fmt.Errorf("%w: prefiltered cube map: %w", ErrCorrupt, err)
	}

	var floats [27]float32
	if !br.ReadRef(&floats) {
		return nil, fmt.Errorf("%w: expected sh coefficients; byte 0x%08x", ErrCorrupt, br.LastIndex)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.size = int(header.PrefilteredSize)
	o.samples = int(header.PrefilteredSamples)
	o.mipmaps = prefiltered.Levels

	env = &EnvMap{
		source:      source,
		sh:          ibl.SHFromFloats(floats),
		prefiltered: prefiltered,
		opts:        o,
		prepared:    Resolved(nil),
	}
	env.state.Store(int32(StatePrepared))
	return env, nil
}

// Write atomically replaces path with the encoded environment.
func (env *EnvMap) Write(path string, options ...ibl.EncodeOption) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bufw := bufio.NewWriter(tmp)
	if err = env.Encode(bufw, options...); err != nil {
		return err
	}
	if err = bufw.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Open reads an environment file written by Write.
func Open(path string, opts ...Option) (*EnvMap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	env, err := Decode(bufio.NewReader(file), opts...)
	if err != nil {
		return nil, fmt.Errorf("could not read environment %q: %w", path, err)
	}
	return env, nil
}

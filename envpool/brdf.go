package envpool

import (
	"bufio"
	"bytes"
	"fmt"
	"iblcache/ibl"
	"iblcache/libio"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// BrdfLutPath is the cache file of the brdf lut with the configured size and sample count.
func (p *Pool) BrdfLutPath() string {
	return filepath.Join(p.cfg.CacheDir, fmt.Sprintf("brdf_lut_%d_%d.f32", p.cfg.BrdfLutSize, p.cfg.BrdfLutSamples))
}

// BrdfLut returns the split sum lut shared by all environments.
// It is computed once per pool and persisted in the cache directory.
func (p *Pool) BrdfLut() (*libio.FloatImage, error) {
	p.brdfOnce.Do(func() {
		p.brdfLut, p.brdfErr = p.loadBrdfLut()
	})
	return p.brdfLut, p.brdfErr
}

func (p *Pool) loadBrdfLut() (*libio.FloatImage, error) {
	path := p.BrdfLutPath()

	if file, err := os.Open(path); err == nil {
		lut, err := libio.DecodeFloatImage(bufio.NewReader(file))
		file.Close()
		if err == nil && lut.Width == p.cfg.BrdfLutSize && lut.Channels == 2 {
			p.logger.Info("brdf lut cache hit", zap.String("cache", path))
			return lut, nil
		}
		p.logger.Warn("ignoring unreadable brdf lut cache", zap.String("cache", path), zap.Error(err))
	}

	start := time.Now()
	lut, err := ibl.GenerateBrdfLut(p.cfg.BrdfLutSize, p.cfg.BrdfLutSamples, p.dispatch)
	if err != nil {
		return nil, err
	}
	p.logger.Info("brdf lut computed",
		zap.Int("size", p.cfg.BrdfLutSize),
		zap.Int("samples", p.cfg.BrdfLutSamples),
		zap.Duration("took", time.Since(start)))

	buf := new(bytes.Buffer)
	if err := libio.EncodeFloatImage(buf, lut, libio.FloatImageCompressionHalf16Lz4); err != nil {
		return nil, err
	}
	encoded := buf.Bytes()

	// the returned lut matches what later runs read from the cache
	lut, err = libio.DecodeFloatImage(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}

	if err := writeFile(path, encoded); err != nil {
		p.logger.Warn("could not write brdf lut cache", zap.String("cache", path), zap.Error(err))
	}
	return lut, nil
}

// writeFile replaces path with data through a temporary file.
func writeFile(path string, data []byte) (err error) {
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

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package envpool

import (
	"encoding/json"
	"fmt"
	"iblcache/envmap"
	"iblcache/ibl"
	"os"
	"path/filepath"
	"runtime"
)

const (
	CompressionNone = "none"
	CompressionLz4  = "lz4"
	CompressionZstd = "zstd"
	CompressionZlib = "zlib"
)

const (
	DefaultBrdfLutSize    = 512
	DefaultBrdfLutSamples = 1024
)

type Config struct {
	CacheDir           string `json:"cacheDir"`
	PrefilteredSize    int    `json:"prefilteredSize"`
	PrefilteredSamples int    `json:"prefilteredSamples"`
	PrefilteredMipmaps int    `json:"prefilteredMipmaps"`
	BrdfLutSize        int    `json:"brdfLutSize"`
	BrdfLutSamples     int    `json:"brdfLutSamples"`
	Compression        string `json:"compression,omitempty"`
	// number of prefilter workers, NumCPU-1 by default
	Workers int `json:"workers,omitempty"`
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "iblcache")
}

func defaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

func DefaultConfig() Config {
	return Config{
		CacheDir:           defaultCacheDir(),
		PrefilteredSize:    envmap.DefaultPrefilteredSize,
		PrefilteredSamples: envmap.DefaultPrefilteredSamples,
		PrefilteredMipmaps: envmap.DefaultMipmaps,
		BrdfLutSize:        DefaultBrdfLutSize,
		BrdfLutSamples:     DefaultBrdfLutSamples,
		Compression:        CompressionLz4,
		Workers:            defaultWorkers(),
	}
}

// LoadConfig reads a json config. Missing or zero fields take their default.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config %q: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	def := DefaultConfig()
	if cfg.CacheDir == "" {
		cfg.CacheDir = def.CacheDir
	}
	if cfg.PrefilteredSize == 0 {
		cfg.PrefilteredSize = def.PrefilteredSize
	}
	if cfg.PrefilteredSamples == 0 {
		cfg.PrefilteredSamples = def.PrefilteredSamples
	}
	if cfg.PrefilteredMipmaps == 0 {
		cfg.PrefilteredMipmaps = def.PrefilteredMipmaps
	}
	if cfg.BrdfLutSize == 0 {
		cfg.BrdfLutSize = def.BrdfLutSize
	}
	if cfg.BrdfLutSamples == 0 {
		cfg.BrdfLutSamples = def.BrdfLutSamples
	}
	if cfg.Compression == "" {
		cfg.Compression = def.Compression
	}
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
}

func (cfg Config) Validate() error {
	if cfg.CacheDir == "" {
		return fmt.Errorf("cacheDir is empty")
	}
	if cfg.PrefilteredSize < 1 || cfg.PrefilteredMipmaps < 1 || cfg.BrdfLutSize < 1 {
		return fmt.Errorf("prefilteredSize, prefilteredMipmaps and brdfLutSize must be positive: %w", ibl.ErrInvalidSize)
	}
	if limit := ibl.MaxMipmaps(cfg.PrefilteredSize); cfg.PrefilteredMipmaps > limit {
		return fmt.Errorf("prefilteredMipmaps %d exceeds %d for prefilteredSize %d: %w", cfg.PrefilteredMipmaps, limit, cfg.PrefilteredSize, ibl.ErrInvalidSize)
	}
	if cfg.PrefilteredSamples < 1 || cfg.BrdfLutSamples < 1 {
		return fmt.Errorf("prefilteredSamples and brdfLutSamples must be positive: %w", ibl.ErrInvalidSamples)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if _, err := EncodeOptions(cfg.Compression); err != nil {
		return err
	}
	return nil
}

// EncodeOptions maps a compression name to cube map encode options.
func EncodeOptions(compression string) ([]ibl.EncodeOption, error) {
	switch compression {
	case CompressionNone:
		return nil, nil
	case CompressionLz4:
		return []ibl.EncodeOption{ibl.OptCompress(0)}, nil
	case CompressionZstd:
		return []ibl.EncodeOption{ibl.OptZstd(3)}, nil
	case CompressionZlib:
		return []ibl.EncodeOption{ibl.OptZlib(6)}, nil
	default:
		return nil, fmt.Errorf("compression %q unsupported", compression)
	}
}

package envpool_test

import (
	"errors"
	"iblcache/envpool"
	"iblcache/ibl"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := envpool.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.PrefilteredSize != 64 || cfg.PrefilteredSamples != 16 || cfg.PrefilteredMipmaps != 4 {
		t.Errorf("prefilter defaults should be 64/16/4 but are %d/%d/%d", cfg.PrefilteredSize, cfg.PrefilteredSamples, cfg.PrefilteredMipmaps)
	}
	if cfg.BrdfLutSize != 512 || cfg.BrdfLutSamples != 1024 {
		t.Errorf("lut defaults should be 512/1024 but are %d/%d", cfg.BrdfLutSize, cfg.BrdfLutSamples)
	}
	if cfg.Compression != envpool.CompressionLz4 || cfg.Workers < 1 {
		t.Errorf("compression should be lz4 and workers positive but are %q, %d", cfg.Compression, cfg.Workers)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{"cacheDir": "/tmp/ibl", "prefilteredSize": 128, "compression": "zstd"}`)
	cfg, err := envpool.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheDir != "/tmp/ibl" || cfg.PrefilteredSize != 128 || cfg.Compression != envpool.CompressionZstd {
		t.Errorf("explicit fields should be kept but config is %+v", cfg)
	}
	if cfg.PrefilteredSamples != 16 || cfg.BrdfLutSize != 512 {
		t.Errorf("missing fields should take their default but config is %+v", cfg)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
	}{
		{"negative size", `{"prefilteredSize": -1}`, ibl.ErrInvalidSize},
		{"mipmaps past 1x1", `{"prefilteredSize": 8, "prefilteredMipmaps": 5}`, ibl.ErrInvalidSize},
		{"negative samples", `{"brdfLutSamples": -4}`, ibl.ErrInvalidSamples},
		{"compression", `{"compression": "rar"}`, nil},
		{"syntax", `{"cacheDir": `, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := envpool.LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("config should be rejected")
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("error should be: %v but is %v", tt.err, err)
			}
		})
	}

	if _, err := envpool.LoadConfig(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should be: %v but is %v", os.ErrNotExist, err)
	}
}

func TestEncodeOptions(t *testing.T) {
	for _, name := range []string{envpool.CompressionNone, envpool.CompressionLz4, envpool.CompressionZstd, envpool.CompressionZlib} {
		if _, err := envpool.EncodeOptions(name); err != nil {
			t.Errorf("compression %q should be supported: %v", name, err)
		}
	}
}

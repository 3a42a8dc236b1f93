package ibl_test

import (
	"errors"
	"iblcache/ibl"
	"iblcache/libio"
	"testing"
)

func TestMipRoughness(t *testing.T) {
	tests := []struct {
		level, mipmaps int
		expected       float32
	}{
		{0, 1, 1},
		{0, 4, 0},
		{1, 3, 0.5},
		{3, 4, 1},
	}
	for _, tt := range tests {
		if got := ibl.MipRoughness(tt.level, tt.mipmaps); got != tt.expected {
			t.Errorf("roughness of level %d of %d should be: %v but is %v", tt.level, tt.mipmaps, tt.expected, got)
		}
	}
}

func TestFilterEnvMapUniform(t *testing.T) {
	src := uniformCubeMap(8, 0.25, 0.5, 1)
	result, err := ibl.FilterEnvMap(src, ibl.PrefilterParams{Size: 8, Mipmaps: 4, Samples: 16})
	if err != nil {
		t.Fatal(err)
	}

	if result.Levels != 4 {
		t.Fatalf("levels should be: 4 but is %d", result.Levels)
	}
	for lvl, size := range []int{8, 4, 2, 1} {
		if result.Size(lvl) != size {
			t.Errorf("size of level %d should be: %d but is %d", lvl, size, result.Size(lvl))
		}
		pix := result.Level(lvl)
		if len(pix) != 6*size*size*3 {
			t.Errorf("level %d should hold %d floats but holds %d", lvl, 6*size*size*3, len(pix))
		}
		for i := 0; i < len(pix); i += 3 {
			if abs(pix[i]-0.25) > 1e-4 || abs(pix[i+1]-0.5) > 1e-4 || abs(pix[i+2]-1) > 1e-4 {
				t.Fatalf("texel %d of level %d should be uniform but is %v", i/3, lvl, pix[i:i+3])
			}
		}
	}

	if result.Sampler.MinFilter != libio.FilterLinearMipmapLinear || result.Sampler.MagFilter != libio.FilterLinear {
		t.Errorf("sampler should be linear mipmap linear / linear but is %v / %v", result.Sampler.MinFilter, result.Sampler.MagFilter)
	}
}

func TestFilterEnvMapSmoothLevelKeepsSource(t *testing.T) {
	src := randomCubeMap(8, 1, 7)
	result, err := ibl.FilterEnvMap(src, ibl.PrefilterParams{Size: 8, Mipmaps: 2, Samples: 8, Dispatch: ibl.Concurrent(3)})
	if err != nil {
		t.Fatal(err)
	}

	for face := 0; face < 6; face++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				er, eg, eb := src.Texel(face, x, y)
				r, g, b := result.LevelTexel(0, face, x, y)
				if abs(er-r) > 1e-3 || abs(eg-g) > 1e-3 || abs(eb-b) > 1e-3 {
					t.Fatalf("roughness 0 texel %d,%d of face %d should be: %v,%v,%v but is %v,%v,%v", x, y, face, er, eg, eb, r, g, b)
				}
			}
		}
	}
}

func TestFilterEnvMapSingleMipIsRough(t *testing.T) {
	// a single mip is filtered with roughness 1 which blurs a hard edge
	src := ibl.NewCubeMap(nil, 8, 1)
	face := src.Face(0, int(ibl.CubeMapPositiveX))
	for i := range face {
		face[i] = 1
	}

	result, err := ibl.FilterEnvMap(src, ibl.PrefilterParams{Size: 4, Mipmaps: 1, Samples: 64})
	if err != nil {
		t.Fatal(err)
	}

	r, _, _ := result.LevelTexel(0, int(ibl.CubeMapPositiveX), 2, 2)
	if r >= 0.99 {
		t.Errorf("the lit face should be blurred by roughness 1 but is %.4f", r)
	}
	r, _, _ = result.LevelTexel(0, int(ibl.CubeMapPositiveZ), 3, 2)
	if r <= 0 {
		t.Errorf("light should bleed into the neighbouring face but is %.4f", r)
	}
}

func TestFilterEnvMapFullChain(t *testing.T) {
	src := uniformCubeMap(4, 1, 1, 1)
	result, err := ibl.FilterEnvMap(src, ibl.PrefilterParams{Size: 6, Mipmaps: ibl.MaxMipmaps(6), Samples: 4})
	if err != nil {
		t.Fatal(err)
	}
	if result.Levels != 3 {
		t.Fatalf("levels should be: 3 but are %d", result.Levels)
	}
	for lvl := 1; lvl < result.Levels; lvl++ {
		if result.Size(lvl) != result.Size(lvl-1)/2 {
			t.Errorf("level %d should be %d but is %d", lvl, result.Size(lvl-1)/2, result.Size(lvl))
		}
	}
}

func TestMaxMipmaps(t *testing.T) {
	tests := []struct{ size, levels int }{{0, 0}, {1, 1}, {2, 2}, {4, 3}, {5, 3}, {64, 7}, {512, 10}}
	for _, tt := range tests {
		if got := ibl.MaxMipmaps(tt.size); got != tt.levels {
			t.Errorf("size %d should allow %d levels but allows %d", tt.size, tt.levels, got)
		}
	}
}

func TestFilterEnvMapInvalid(t *testing.T) {
	src := uniformCubeMap(4, 1, 1, 1)
	tests := []struct {
		name   string
		src    ibl.CubeSource
		params ibl.PrefilterParams
		err    error
	}{
		{"zero samples", src, ibl.PrefilterParams{Size: 4, Mipmaps: 1, Samples: 0}, ibl.ErrInvalidSamples},
		{"zero size", src, ibl.PrefilterParams{Size: 0, Mipmaps: 1, Samples: 4}, ibl.ErrInvalidSize},
		{"zero mipmaps", src, ibl.PrefilterParams{Size: 4, Mipmaps: 0, Samples: 4}, ibl.ErrInvalidSize},
		{"mipmaps past 1x1", src, ibl.PrefilterParams{Size: 4, Mipmaps: 4, Samples: 4}, ibl.ErrInvalidSize},
		{"non square", &fakeSource{width: 4, height: 8, faces: 6, pixels: true}, ibl.PrefilterParams{Size: 4, Mipmaps: 1, Samples: 4}, ibl.ErrNonSquare},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ibl.FilterEnvMap(tt.src, tt.params)
			if !errors.Is(err, tt.err) {
				t.Errorf("error should be: %v but is %v", tt.err, err)
			}
			if result != nil {
				t.Errorf("no cube map should be returned on error")
			}
		})
	}
}

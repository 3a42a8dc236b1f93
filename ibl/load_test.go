package ibl_test

import (
	"errors"
	"iblcache/ibl"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mrjoshuak/go-openexr/exr"
)

func writePng(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFacePattern(t *testing.T) {
	dir := t.TempDir()
	for face := 0; face < 6; face++ {
		gray := uint8(face * 40)
		writePng(t, filepath.Join(dir, "sky_"+strconv.Itoa(face)+".png"), 4, 4, color.RGBA{gray, gray, gray, 0xff})
	}

	cm, err := ibl.LoadCubeMap(filepath.Join(dir, "sky_#.png"))
	if err != nil {
		t.Fatal(err)
	}

	if cm.BaseSize != 4 || cm.Levels != 1 {
		t.Fatalf("cube map should be 4x4 with one level but is %dx%d with %d", cm.BaseSize, cm.BaseSize, cm.Levels)
	}
	for face := 0; face < 6; face++ {
		expected := float32(face*40) / 255
		r, g, b := cm.Texel(face, 1, 2)
		if abs(r-expected) > 1e-4 || abs(g-expected) > 1e-4 || abs(b-expected) > 1e-4 {
			t.Errorf("face %d should be: %.4f but is %.4f,%.4f,%.4f", face, expected, r, g, b)
		}
	}
	if cm.Name != "sky_" {
		t.Errorf("name should be: %q but is %q", "sky_", cm.Name)
	}
}

func TestLoadFacePatternNonSquare(t *testing.T) {
	dir := t.TempDir()
	for face := 0; face < 6; face++ {
		writePng(t, filepath.Join(dir, strconv.Itoa(face)+".png"), 4, 2, color.White)
	}

	_, err := ibl.LoadCubeMap(filepath.Join(dir, "#.png"))
	if !errors.Is(err, ibl.ErrNonSquare) {
		t.Errorf("error should be: %v but is %v", ibl.ErrNonSquare, err)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := ibl.LoadCubeMap(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should be: %v but is %v", os.ErrNotExist, err)
	}
}

func TestLoadLatLongPng(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pano.png")
	writePng(t, path, 32, 16, color.RGBA{0xff, 0x80, 0x00, 0xff})

	cm, err := ibl.LoadCubeMap(path)
	if err != nil {
		t.Fatal(err)
	}
	if cm.BaseSize != 8 {
		t.Fatalf("a 32 wide panorama should become an 8 wide cube but is %d", cm.BaseSize)
	}
	r, g, b := cm.Texel(int(ibl.CubeMapNegativeY), 0, 7)
	if abs(r-1) > 1e-3 || abs(g-float32(0x80)/0xff) > 1e-3 || abs(b) > 1e-3 {
		t.Errorf("texel should be orange but is %.4f,%.4f,%.4f", r, g, b)
	}
}

func TestLoadUnsupportedLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.png")
	writePng(t, path, 5, 5, color.White)

	_, err := ibl.LoadCubeMap(path)
	if !errors.Is(err, ibl.ErrNotCubeMap) {
		t.Errorf("error should be: %v but is %v", ibl.ErrNotCubeMap, err)
	}
}

func TestLoadEncodedCubeMap(t *testing.T) {
	cm := randomCubeMap(4, 2, 9)
	path := filepath.Join(t.TempDir(), "env.cube")
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ibl.EncodeCubeMap(file, cm, ibl.OptCompress(0)); err != nil {
		t.Fatal(err)
	}
	file.Close()

	loaded, err := ibl.LoadCubeMap(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cm.Equal(loaded) {
		t.Errorf("loaded cube map should match the encoded one")
	}
	if loaded.Path != path || loaded.Name != "env" {
		t.Errorf("path and name should be: %q, %q but are %q, %q", path, "env", loaded.Path, loaded.Name)
	}
}

func TestLoadExrStrip(t *testing.T) {
	img := exr.NewRGBAImage(image.Rect(0, 0, 4, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, 0.5, 0.25, 2, 1)
		}
	}
	path := filepath.Join(t.TempDir(), "strip.exr")
	if err := exr.EncodeFile(path, img); err != nil {
		t.Fatal(err)
	}

	cm, err := ibl.LoadCubeMap(path)
	if err != nil {
		t.Fatal(err)
	}
	if cm.BaseSize != 4 {
		t.Fatalf("face size should be: 4 but is %d", cm.BaseSize)
	}
	for face := 0; face < 6; face++ {
		r, g, b := cm.Texel(face, 3, 0)
		if abs(r-0.5) > 1e-3 || abs(g-0.25) > 1e-3 || abs(b-2) > 1e-3 {
			t.Errorf("face %d should be: 0.5,0.25,2 but is %.4f,%.4f,%.4f", face, r, g, b)
		}
	}
}

func TestExportEnvImageRoundTrip(t *testing.T) {
	size := 32
	cm := ibl.NewCubeMap(nil, size, 1)
	for face := 0; face < 6; face++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				d := ibl.DirectionForTexel(face, x, y, size)
				cm.SetTexel(0, face, x, y, 0.5+0.5*d[0], 0.5+0.5*d[1], 0.5+0.5*d[2])
			}
		}
	}

	strip := ibl.ExportEnvImage(cm, 0)
	env := exr.NewEnvMapImage(exr.EnvMapCube, size, 6*size)
	for i := range env.Pixels {
		env.Pixels[i] = exr.RGBA{R: strip.Pix[i*4], G: strip.Pix[i*4+1], B: strip.Pix[i*4+2], A: strip.Pix[i*4+3]}
	}
	back := ibl.ResampleEnvImage(env, size)

	for _, dir := range []mgl32.Vec3{{1, 0, 0}, {0, -1, 0}, mgl32.Vec3{0.2, 0.3, -1}.Normalize()} {
		er, eg, eb := ibl.Lookup(cm, dir)
		r, g, b := ibl.Lookup(back, dir)
		if abs(er-r) > 0.05 || abs(eg-g) > 0.05 || abs(eb-b) > 0.05 {
			t.Errorf("color towards %v should be: %.3f,%.3f,%.3f but is %.3f,%.3f,%.3f", dir, er, eg, eb, r, g, b)
		}
	}
}

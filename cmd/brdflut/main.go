package main

import (
	"flag"
	"fmt"
	"iblcache/envpool"
	"iblcache/ibl"
	"iblcache/libio"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

var args = struct {
	samples     int
	size        int
	workers     int
	preview     bool
	grayscale   bool
	compression int
	quiet       bool
}{
	samples:     envpool.DefaultBrdfLutSamples,
	size:        envpool.DefaultBrdfLutSize,
	workers:     runtime.NumCPU(),
	preview:     false,
	grayscale:   false,
	compression: int(libio.FloatImageCompressionHalf16Lz4),
}

func printGeneralUsage() {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s [arguments] <out>\n\n", exe)
	fmt.Fprintf(os.Stderr, "The arguments are:\n\n")
	flag.CommandLine.SetOutput(os.Stderr)
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.IntVar(&args.samples, "samples", args.samples, "samples of the integral")
	flag.IntVar(&args.size, "size", args.size, "size of the lut")
	flag.IntVar(&args.workers, "workers", args.workers, "number of rows integrated in parallel")
	flag.BoolVar(&args.preview, "preview", args.preview, "generate normalized preview png")
	flag.BoolVar(&args.grayscale, "grayscale", args.grayscale, "generate seperate grayscale images")
	flag.IntVar(&args.compression, "compression", args.compression, "0=none, 1=fixed-point + lz4, 2=half + lz4")
	flag.BoolVar(&args.quiet, "quiet", args.quiet, "disables informational output")

	flag.Parse()

	if flag.NArg() != 1 || args.compression < 0 || args.compression > int(libio.FloatImageCompressionHalf16Lz4) {
		printGeneralUsage()
	}

	start := time.Now()
	img, err := ibl.GenerateBrdfLut(args.size, args.samples, ibl.Concurrent(args.workers))
	harderr(err)
	if !args.quiet {
		fmt.Printf("Integrated %dx%d lut with %d samples in %v\n", args.size, args.size, args.samples, time.Since(start).Round(time.Millisecond))
	}

	fileext := path.Ext(flag.Arg(0))
	filename := strings.TrimSuffix(flag.Arg(0), fileext)

	if args.grayscale {
		rimg := img.Shuffle([]int{0})
		gimg := img.Shuffle([]int{1})
		saveFloatImage(rimg, filename+"_r", fileext)
		saveFloatImage(gimg, filename+"_g", fileext)
	} else {
		saveFloatImage(img, filename, fileext)
	}
}

func saveFloatImage(img *libio.FloatImage, filename, fileext string) {
	file, err := os.OpenFile(filename+fileext, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	harderr(err)
	defer file.Close()

	err = libio.EncodeFloatImage(file, img, libio.FloatImageCompression(args.compression))
	harderr(err)

	if args.preview {
		if img.Channels == 1 {
			img = img.Shuffle([]int{0, 0, 0})
		} else {
			img = img.Shuffle([]int{0, 1})
		}

		preview, err := os.OpenFile(filename+".png", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
		harderr(err)
		defer preview.Close()

		img.Normalize()
		rgba := img.ToIntImage(1, 1).ToRGBA()
		err = png.Encode(preview, rgba)
		harderr(err)
	}
}

func harderr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

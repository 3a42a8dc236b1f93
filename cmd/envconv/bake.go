package main

import (
	"flag"
	"fmt"
	"iblcache/envmap"
	"iblcache/envpool"
	"iblcache/ibl"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
)

type bakeArgs struct {
	commonArgs
	size        int
	samples     int
	levels      int
	compression string
	workers     int
}

func createBakeCommand() *command {
	args := bakeArgs{
		size:        envmap.DefaultPrefilteredSize,
		samples:     envmap.DefaultPrefilteredSamples,
		levels:      envmap.DefaultMipmaps,
		compression: envpool.CompressionLz4,
		workers:     runtime.NumCPU(),
	}

	flags := flag.NewFlagSet("bake", flag.ExitOnError)

	registerCommonFlags(flags, &args.commonArgs)

	flags.IntVar(&args.size, "size", args.size, "the face size of the first prefiltered level")
	flags.IntVar(&args.size, "s", args.size, "shorthand for size")
	flags.IntVar(&args.samples, "samples", args.samples, "number of samples per prefiltered texel")
	flags.IntVar(&args.levels, "levels", args.levels, "the number of prefiltered levels")
	flags.StringVar(&args.compression, "compression", args.compression, "the payload compression; none, lz4, zstd or zlib")
	flags.StringVar(&args.compression, "c", args.compression, "shorthand for compression")
	flags.IntVar(&args.workers, "workers", args.workers, "number of prefilter workers")

	return &command{
		Name: "bake",
		Help: "prefilter environment maps into .env files",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.size < 1 || args.samples < 1 || args.levels < 1 || args.workers < 1 {
				printCommandUsage(self, " file-glob...")
			}
			if args.levels > ibl.MaxMipmaps(args.size) {
				fmt.Fprintf(os.Stderr, "at most %d levels fit size %d\n\n", ibl.MaxMipmaps(args.size), args.size)
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			runBake(args, gatherInputFiles(self.Flags.Args()))
		},
		Flags: flags,
	}
}

func runBake(args bakeArgs, inputFiles []string) {
	options, err := envpool.EncodeOptions(args.compression)
	harderr(err)

	dispatch := ibl.Concurrent(args.workers)

	for _, input := range inputFiles {
		start := time.Now()
		env, err := envmap.FromFile(input,
			envmap.WithBlocking(),
			envmap.WithLogger(logger),
			envmap.WithDispatcher(dispatch),
			envmap.WithPrefilteredSize(args.size),
			envmap.WithPrefilteredSamples(args.samples),
			envmap.WithMipmaps(args.levels))
		if softerr(err) {
			continue
		}
		if softerr(env.Prepared().Err()) {
			continue
		}

		out := outputPath(input, ".env")
		if softerr(env.Write(out, options...)) {
			continue
		}
		logger.Info("baked environment",
			zap.String("input", input),
			zap.String("output", out),
			zap.Duration("took", time.Since(start)))
	}
}

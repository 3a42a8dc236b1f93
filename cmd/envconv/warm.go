package main

import (
	"context"
	"flag"
	"iblcache/envmap"
	"iblcache/envpool"

	"go.uber.org/zap"
)

type warmArgs struct {
	commonArgs
	config string
	lut    bool
}

func createWarmCommand() *command {
	args := warmArgs{lut: true}

	flags := flag.NewFlagSet("warm", flag.ExitOnError)

	flags.BoolVar(&args.verbose, "verbose", args.verbose, "enables debug logging")
	flags.BoolVar(&args.verbose, "v", args.verbose, "shorthand for verbose")
	flags.BoolVar(&args.quiet, "quiet", args.quiet, "disables informational logging")
	flags.BoolVar(&args.quiet, "q", args.quiet, "shorthand for quiet")
	flags.BoolVar(&args.supress, "supress", args.supress, "disables soft error logging")
	flags.StringVar(&args.config, "config", args.config, "the pool config json, defaults are used if empty")
	flags.BoolVar(&args.lut, "lut", args.lut, "also compute the brdf lut")

	return &command{
		Name: "warm",
		Help: "fill the environment cache directory",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 && !args.lut {
				printCommandUsage(self, " file-glob...")
			}
			cfg := envpool.DefaultConfig()
			if args.config != "" {
				var err error
				cfg, err = envpool.LoadConfig(args.config)
				harderr(err)
			}
			args.out = cfg.CacheDir
			setCommonArgs(&args.commonArgs)

			runWarm(args, cfg, gatherInputFiles(self.Flags.Args()))
		},
		Flags: flags,
	}
}

func runWarm(args warmArgs, cfg envpool.Config, inputFiles []string) {
	pool, err := envpool.New(cfg, envpool.WithLogger(logger))
	harderr(err)
	defer pool.Close()

	envs := make([]*envmap.EnvMap, 0, len(inputFiles))
	for _, input := range inputFiles {
		env, err := pool.LoadDefault(input)
		if softerr(err) {
			continue
		}
		envs = append(envs, env)
	}

	if args.lut {
		_, err := pool.BrdfLut()
		softerr(err)
	}

	for _, env := range envs {
		softerr(env.Prepared().Wait(context.Background()))
	}
	logger.Info("cache warm", zap.String("dir", cfg.CacheDir), zap.Int("environments", len(envs)))
}

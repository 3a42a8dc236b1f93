package main

import (
	"flag"
	"fmt"
	"iblcache/envmap"
	"iblcache/ibl"

	"github.com/mrjoshuak/go-openexr/exr"
	"go.uber.org/zap"
)

type exportArgs struct {
	commonArgs
	level  int
	source bool
}

func createExportCommand() *command {
	args := exportArgs{}

	flags := flag.NewFlagSet("export", flag.ExitOnError)

	registerCommonFlags(flags, &args.commonArgs)

	flags.IntVar(&args.level, "level", args.level, "the prefiltered level to export")
	flags.IntVar(&args.level, "l", args.level, "shorthand for level")
	flags.BoolVar(&args.source, "source", args.source, "export the source cube map instead of a prefiltered level")

	return &command{
		Name: "export",
		Help: "write a level of .env files as an OpenEXR cube strip",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.level < 0 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			for _, input := range gatherInputFiles(self.Flags.Args()) {
				softerr(runExport(args, input))
			}
		},
		Flags: flags,
	}
}

func runExport(args exportArgs, input string) error {
	env, err := envmap.Open(input)
	if err != nil {
		return err
	}

	cm, level, suffix := env.Prefiltered(), args.level, fmt.Sprintf("_%d", args.level)
	if args.source {
		cm, level, suffix = env.Source(), 0, "_source"
	}
	if level >= cm.Levels {
		return fmt.Errorf("%s has %d levels, cannot export level %d", input, cm.Levels, level)
	}

	out := outputPath(input, suffix+".exr")
	if err := exr.EncodeFile(out, ibl.ExportEnvImage(cm, level)); err != nil {
		return err
	}
	logger.Info("exported environment", zap.String("input", input), zap.String("output", out), zap.Int("level", level))
	return nil
}

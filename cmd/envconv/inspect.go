package main

import (
	"flag"
	"fmt"
	"iblcache/envmap"
	"iblcache/ibl"
)

func createInspectCommand() *command {
	args := commonArgs{}
	flags := flag.NewFlagSet("inspect", flag.ExitOnError)
	flags.BoolVar(&args.supress, "supress", args.supress, "disables soft error logging")

	return &command{
		Name: "inspect",
		Help: "print the sh coefficients and mip chain of .env files",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 {
				printCommandUsage(self, " file-glob...")
			}
			cargs = &args

			for _, input := range gatherInputFiles(self.Flags.Args()) {
				env, err := envmap.Open(input)
				if softerr(err) {
					continue
				}
				printEnv(input, env)
			}
		},
		Flags: flags,
	}
}

func printEnv(path string, env *envmap.EnvMap) {
	fmt.Printf("%s\n", path)
	source := env.Source()
	fmt.Printf("  name:     %s\n", env.Name())
	fmt.Printf("  source:   %dpx, %d levels, from %q\n", source.BaseSize, source.Levels, source.Path)
	fmt.Printf("  identity: %s\n", env.Hash())
	fmt.Printf("  samples:  %d\n", env.PrefilteredSamples())

	prefiltered := env.Prefiltered()
	fmt.Printf("  prefiltered (%s, %s):\n", prefiltered.Sampler.MinFilter, prefiltered.Sampler.WrapU)
	for level := 0; level < prefiltered.Levels; level++ {
		fmt.Printf("    %d: %4dpx roughness %.3f\n", level, prefiltered.Size(level), ibl.MipRoughness(level, prefiltered.Levels))
	}

	sh := env.SHCoefficients()
	fmt.Printf("  sh:\n")
	for i, c := range sh {
		fmt.Printf("    %d: % .6f % .6f % .6f\n", i, c[0], c[1], c[2])
	}
	fmt.Println()
}

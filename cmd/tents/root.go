package main

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/tents-server/internal/config"
	"github.com/vancomm/tents-server/internal/tents"
)

type options struct {
	configPath string
	verbose    bool
	seed       uint64
	params     tents.GameParams
}

func newRootCmd() *cobra.Command {
	opts := &options{params: tents.DefaultParams()}

	root := &cobra.Command{
		Use:          "tents",
		Short:        "Generate and play Tents and Trees puzzles",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML file with game defaults")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log generation details")
	flags.IntVarP(&opts.params.Dimension, "dimension", "d", tents.DefaultDimension, "Board side length")
	flags.Float64Var(&opts.params.TentDensity, "density", tents.DefaultTentDensity, "Tents per row on average")
	flags.IntVar(&opts.params.StartLives, "lives", tents.DefaultStartLives, "Wrong guesses allowed")
	flags.Uint64Var(&opts.seed, "seed", 0, "Random seed, 0 picks one")

	root.AddCommand(newGenCmd(opts), newPlayCmd(opts))
	return root
}

// load applies the config file underneath any flag set on the command line.
func (o *options) load(cmd *cobra.Command) error {
	tents.Log.SetOutput(cmd.ErrOrStderr())
	tents.Log.SetLevel(logrus.WarnLevel)
	if o.verbose {
		tents.Log.SetLevel(logrus.DebugLevel)
	}

	if o.configPath != "" {
		f, err := config.ReadFile(o.configPath)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		file := tents.GameParams{}
		f.Game.Apply(&file)
		if !flags.Changed("dimension") && file.Dimension != 0 {
			o.params.Dimension = file.Dimension
		}
		if !flags.Changed("density") && file.TentDensity != 0 {
			o.params.TentDensity = file.TentDensity
		}
		if !flags.Changed("lives") && file.StartLives != 0 {
			o.params.StartLives = file.StartLives
		}
		if f.LogLevel != "" && !o.verbose {
			level, err := logrus.ParseLevel(f.LogLevel)
			if err != nil {
				return err
			}
			tents.Log.SetLevel(level)
		}
	}

	return o.params.Validate()
}

func (o *options) rand() *rand.Rand {
	seed := o.seed
	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

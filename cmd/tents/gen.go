package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vancomm/tents-server/internal/tents"
)

func newGenCmd(opts *options) *cobra.Command {
	var (
		count    int
		solution bool
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Print generated puzzles",
		Long: `Generate one or more puzzles and print them with their clues.

Examples:
  tents gen
  tents gen -d 12 --density 2 -n 3
  tents gen --seed 42 --solution`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := opts.rand()
			out := cmd.OutOrStdout()
			for i := range count {
				if i > 0 {
					fmt.Fprintln(out)
				}
				puzzle, err := tents.Generate(opts.params, r)
				if err != nil {
					return err
				}
				printPuzzle(out, opts.params, puzzle, solution)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "number", "n", 1, "Number of puzzles to generate")
	cmd.Flags().BoolVar(&solution, "solution", false, "Also print the tents")
	return cmd
}

func printPuzzle(w io.Writer, params tents.GameParams, puzzle *tents.Puzzle, solution bool) {
	report := puzzle.Report
	fmt.Fprintf(w, "params %s: %d/%d tents, %d trees\n",
		params.Seed(), report.TentsPlaced, report.TentsRequested, report.TreesPlaced)
	fmt.Fprint(w, puzzle.Grid)
	if solution {
		fmt.Fprintln(w, "solution:")
		fmt.Fprint(w, tents.NewGameFromPuzzle(params, puzzle).Solution())
	}
}

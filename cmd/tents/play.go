package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vancomm/tents-server/internal/command"
	"github.com/vancomm/tents-server/internal/tents"
)

const playHelp = `commands: g <row> <col> guess a tent, f forfeit, n redraw`

func newPlayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a puzzle on stdin",
		Long:  "Play a generated puzzle. " + playHelp + ".",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := tents.NewGame(&opts.params, opts.rand())
			if err != nil {
				return err
			}
			return play(cmd.InOrStdin(), cmd.OutOrStdout(), game)
		},
	}
}

func printState(w io.Writer, g *tents.GameState) {
	counts := g.Counts()
	fmt.Fprintf(w, "lives %d, tents %d/%d\n", counts.Lives, counts.Revealed, counts.Tents)
	fmt.Fprint(w, g.Grid)
}

// play reads one command per line until the game ends or in runs dry.
func play(in io.Reader, out io.Writer, g *tents.GameState) error {
	fmt.Fprintln(out, playHelp)
	printState(out, g)

	scanner := bufio.NewScanner(in)
	for !g.Status.Over() && scanner.Scan() {
		line := scanner.Text()
		c, err := command.Parse(line)
		if errors.Is(err, command.ErrUnknownCommand) || errors.Is(err, command.ErrBadArguments) {
			fmt.Fprintln(out, err)
			continue
		}
		if err != nil {
			return err
		}
		if event, ok := command.Apply(g, c); ok {
			fmt.Fprintln(out, event)
		}
		printState(out, g)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	switch g.Status {
	case tents.Won:
		fmt.Fprintln(out, "you found every tent")
	case tents.Lost:
		fmt.Fprintln(out, "game lost, solution:")
		fmt.Fprint(out, g.Solution())
	}
	return nil
}

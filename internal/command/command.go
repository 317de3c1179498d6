// Package command implements the line-oriented move language shared by the
// websocket loop, the batch endpoint and the terminal player:
//
//	g row col // guess that a tent stands at row:col
//	f         // forfeit
//	n         // no-op, the caller just re-sends the state
package command

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/tents-server/internal/tents"
)

type Verb string

const (
	Guess   Verb = "g"
	Forfeit Verb = "f"
	Noop    Verb = "n"
)

// Maps known verbs to number of arguments
var verbNargs = map[Verb]int{
	Guess:   2,
	Forfeit: 0,
	Noop:    0,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("invalid arguments")
)

type Command struct {
	Verb Verb
	Pos  tents.Position
}

func Parse(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrUnknownCommand
	}
	verb := Verb(strings.ToLower(parts[0]))
	nargs, ok := verbNargs[verb]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return Command{}, fmt.Errorf(
			"%w: %s takes %d arguments, got %d", ErrBadArguments, verb, nargs, len(parts)-1,
		)
	}
	c := Command{Verb: verb}
	if verb == Guess {
		row, col, err := parseRowCol(parts[1:])
		if err != nil {
			return Command{}, err
		}
		c.Pos = tents.Position{Row: row, Col: col}
	}
	return c, nil
}

func parseRowCol(args []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("%w: row must be an int", ErrBadArguments)
		return
	}
	if col, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("%w: column must be an int", ErrBadArguments)
		return
	}
	return
}

// Apply runs c against the game. ok is false when c does not produce an
// event (no-op and forfeit).
func Apply(g *tents.GameState, c Command) (event tents.Event, ok bool) {
	switch c.Verb {
	case Guess:
		return g.Guess(c.Pos), true
	case Forfeit:
		g.Forfeit()
	}
	return 0, false
}

type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Lines yields newline-separated pieces of s with their index.
func Lines(s string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, "\n")
			if !yield(i, strings.TrimSpace(piece)) {
				return
			}
			i += 1
		}
	}
}

// Batch parses every line first, so a malformed batch leaves the game
// untouched, then applies commands until the game ends. Blank lines are
// skipped.
func Batch(g *tents.GameState, text string) ([]tents.Event, error) {
	var cmds []Command
	for i, line := range Lines(strings.TrimSpace(text)) {
		if line == "" {
			continue
		}
		c, err := Parse(line)
		if err != nil {
			return nil, &LineError{Line: i, Err: err}
		}
		cmds = append(cmds, c)
	}
	events := make([]tents.Event, 0, len(cmds))
	for _, c := range cmds {
		if event, ok := Apply(g, c); ok {
			events = append(events, event)
		}
		if g.Status.Over() {
			break
		}
	}
	return events, nil
}

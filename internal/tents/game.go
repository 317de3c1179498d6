package tents

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type Status uint8

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for _, candidate := range []Status{Playing, Won, Lost} {
		if candidate.String() == name {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", name)
}

func (s Status) Over() bool {
	return s == Won || s == Lost
}

// Event is the outcome of a single guess.
type Event uint8

const (
	TentRevealed Event = iota + 1
	WrongGuess
	GameWon
	GameLost
	GameOver // the game had already ended; nothing changed
)

func (e Event) String() string {
	switch e {
	case TentRevealed:
		return "tent_revealed"
	case WrongGuess:
		return "wrong_guess"
	case GameWon:
		return "won"
	case GameLost:
		return "lost"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for candidate := TentRevealed; candidate <= GameOver; candidate++ {
		if candidate.String() == name {
			*e = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown event %q", name)
}

type GameState struct {
	GameParams

	Status Status
	Lives  int
	Grid   Grid    // player view
	Pieces []Piece // manifest
	Report Report
}

func NewGame(params *GameParams, r *rand.Rand) (*GameState, error) {
	puzzle, err := Generate(*params, r)
	if err != nil {
		return nil, err
	}
	return NewGameFromPuzzle(*params, puzzle), nil
}

func NewGameFromPuzzle(params GameParams, puzzle *Puzzle) *GameState {
	state := &GameState{
		Status:     Playing,
		Lives:      params.StartLives,
		Grid:       puzzle.Grid.Clone(),
		Pieces:     append([]Piece(nil), puzzle.Pieces...),
		Report:     puzzle.Report,
		GameParams: params,
	}
	if state.allTentsRevealed() {
		state.Status = Won
	}
	return state
}

func DecodeGameState(buf []byte) (*GameState, error) {
	var game GameState
	if err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (g GameState) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *GameState) hiddenTentAt(p Position) (int, bool) {
	for i, piece := range g.Pieces {
		if piece.Kind == TentPiece && piece.Pos == p && !piece.Revealed() {
			return i, true
		}
	}
	return -1, false
}

func (g *GameState) allTentsRevealed() bool {
	for _, piece := range g.Pieces {
		if piece.Kind == TentPiece && !piece.Revealed() {
			return false
		}
	}
	return true
}

// grass marks p safe unless it holds a tree or a revealed tent.
func (g *GameState) grass(p Position) {
	if s := g.Grid.At(p); s == Tree || s == Tent {
		return
	}
	g.Grid.set(p, Grass)
}

// Guess checks the player's pick. A hit reveals the tent and propagates what
// it proves; anything else, including coordinates off the playable area,
// costs a life and leaves the board alone.
func (g *GameState) Guess(p Position) Event {
	if g.Status.Over() {
		return GameOver
	}

	i, ok := g.hiddenTentAt(p)
	if !ok {
		g.Lives = max(g.Lives-1, 0)
		if g.Lives == 0 {
			g.Status = Lost
			return GameLost
		}
		return WrongGuess
	}

	g.Pieces[i].Visibility = Revealed
	g.Grid.set(p, Tent)
	g.Grid.RowClues[p.Row-1]--
	g.Grid.ColClues[p.Col]--

	for _, q := range g.Grid.neighbors(p, false) {
		g.grass(q)
	}
	if g.Grid.RowClue(p.Row) == 0 {
		for col := range g.Size() {
			if q := (Position{p.Row, col}); g.Grid.At(q) == Unresolved {
				g.grass(q)
			}
		}
	}
	if g.Grid.ColClue(p.Col) == 0 {
		for row := 1; row <= g.Size(); row++ {
			if q := (Position{row, p.Col}); g.Grid.At(q) == Unresolved {
				g.grass(q)
			}
		}
	}

	if g.allTentsRevealed() {
		g.Status = Won
		return GameWon
	}
	return TentRevealed
}

// Forfeit ends a running game as lost and shows every piece.
func (g *GameState) Forfeit() {
	if g.Status.Over() {
		return
	}
	g.Status = Lost
	for i, piece := range g.Pieces {
		g.Pieces[i].Visibility = Revealed
		if piece.Kind == TentPiece {
			g.Grid.set(piece.Pos, Tent)
		}
	}
}

// Solution is the player grid with every tent drawn in.
func (g GameState) Solution() Grid {
	grid := g.Grid.Clone()
	for _, piece := range g.Pieces {
		if piece.Kind == TentPiece {
			grid.set(piece.Pos, Tent)
		}
	}
	return grid
}

func (g GameState) Size() int {
	return g.Grid.Size
}

type Counts struct {
	Tents    int `json:"tents"`
	Revealed int `json:"revealed"`
	Lives    int `json:"lives"`
}

func (g GameState) Counts() Counts {
	c := Counts{Lives: g.Lives}
	for _, piece := range g.Pieces {
		if piece.Kind != TentPiece {
			continue
		}
		c.Tents++
		if piece.Revealed() {
			c.Revealed++
		}
	}
	return c
}

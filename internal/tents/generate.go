package tents

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// Report tells how much of the requested puzzle was actually built. The
// placer and the pairer give up silently, so callers compare the counts.
type Report struct {
	TentsRequested int `json:"tents_requested"`
	TentsPlaced    int `json:"tents_placed"`
	TreesPlaced    int `json:"trees_placed"`
}

func (r Report) Complete() bool {
	return r.TentsPlaced == r.TentsRequested && r.TreesPlaced == r.TentsPlaced
}

// Puzzle is a finalized, playable board: tents hidden, trees and grass shown.
type Puzzle struct {
	Grid   Grid
	Pieces []Piece
	Report Report
}

type builder struct {
	grid   Grid
	pieces []Piece
	report Report
	r      *rand.Rand
}

func Generate(params GameParams, r *rand.Rand) (*Puzzle, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		grid:   NewGrid(params.Dimension),
		report: Report{TentsRequested: params.TentTarget()},
		r:      r,
	}
	b.placeTents()
	b.placeTrees()
	b.computeClues()
	inferGrass(b.grid)

	if Log.IsLevelEnabled(logrus.DebugLevel) {
		Log.Debug("generated board\n", b.grid)
	}

	b.hideTents()

	if !b.report.Complete() {
		Log.WithFields(logrus.Fields{
			"seed":      params.Seed(),
			"requested": b.report.TentsRequested,
			"tents":     b.report.TentsPlaced,
			"trees":     b.report.TreesPlaced,
		}).Info("puzzle under-built")
	}

	return &Puzzle{Grid: b.grid, Pieces: b.pieces, Report: b.report}, nil
}

func (b *builder) canHoldTent(p Position) bool {
	return b.grid.At(p) == Unresolved && !b.grid.hasNeighbor(p, true, Tent)
}

// placeTents drops tents on random free cells. Every tent gets Size^2
// attempts; the first tent to run out of attempts ends placement.
func (b *builder) placeTents() {
	n := b.grid.Size
	budget := n * n
	for range b.report.TentsRequested {
		placed := false
		for attempt := 1; attempt <= budget; attempt++ {
			p := Position{Row: 1 + b.r.IntN(n), Col: b.r.IntN(n)}
			if b.canHoldTent(p) {
				b.grid.set(p, Tent)
				b.pieces = append(b.pieces, Piece{
					Kind:       TentPiece,
					Pos:        p,
					Visibility: Hidden,
					Partner:    -1,
				})
				placed = true
				break
			}
			if attempt%max(budget/10, 1) == 0 {
				Log.Debugf("retrying... (aborting: %d%%)", attempt*100/budget)
			}
		}
		if !placed {
			Log.WithField("placed", len(b.pieces)).Debug("tent placement budget exhausted")
			break
		}
	}
	b.report.TentsPlaced = len(b.pieces)
}

func (b *builder) tentIndex(p Position) int {
	for i, piece := range b.pieces {
		if piece.Kind == TentPiece && piece.Pos == p {
			return i
		}
	}
	return -1
}

// placeTrees gives each tent, scanned row by row, one tree on a random free
// orthogonal neighbour.
func (b *builder) placeTrees() {
	for _, p := range b.grid.Positions() {
		if b.grid.At(p) != Tent {
			continue
		}
		candidates := b.grid.neighbors(p, false)
		b.r.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, q := range candidates {
			if b.grid.At(q) != Unresolved {
				continue
			}
			b.grid.set(q, Tree)
			tent := b.tentIndex(p)
			b.pieces[tent].Partner = len(b.pieces)
			b.pieces = append(b.pieces, Piece{
				Kind:       TreePiece,
				Pos:        q,
				Visibility: Revealed,
				Partner:    tent,
			})
			b.report.TreesPlaced++
			break
		}
	}
}

func (b *builder) computeClues() {
	for _, p := range b.grid.Positions() {
		if b.grid.At(p) == Tent {
			b.grid.RowClues[p.Row-1]++
			b.grid.ColClues[p.Col]++
		}
	}
}

// inferGrass marks every cell that cannot hold a tent: anything but a tree
// in a row or column whose clue is zero, and any unresolved cell without an
// orthogonal tree. One pass reaches the fixed point.
func inferGrass(g Grid) {
	for _, p := range g.Positions() {
		s := g.At(p)
		switch {
		case g.RowClue(p.Row) == 0 || g.ColClue(p.Col) == 0:
			if s != Tree {
				g.set(p, Grass)
			}
		case s == Unresolved && !g.hasNeighbor(p, false, Tree):
			g.set(p, Grass)
		}
	}
}

func (b *builder) hideTents() {
	for i, s := range b.grid.Cells {
		if s == Tent {
			b.grid.Cells[i] = Unresolved
		}
	}
}

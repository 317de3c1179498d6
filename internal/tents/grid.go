package tents

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Unresolved CellState = iota
	Grass
	Tree
	Tent
)

func (s CellState) String() string {
	switch s {
	case Unresolved:
		return "."
	case Grass:
		return "\""
	case Tree:
		return "T"
	case Tent:
		return "A"
	default:
		return "!"
	}
}

// CellKind classifies a board coordinate. The board is (Size+1)x(Size+1):
// row 0 carries column clues, column Size carries row clues and [0][Size] is
// the corner placeholder.
type CellKind uint8

const (
	OutOfBounds CellKind = iota
	InteriorCell
	RowClueCell
	ColumnClueCell
	CornerCell
)

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

var (
	orthogonal = [4]Position{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	diagonal   = [4]Position{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

type Grid struct {
	Size     int
	Cells    []CellState /* interior, (row-1)*Size + col */
	RowClues []int       /* RowClues[row-1] */
	ColClues []int       /* ColClues[col] */
}

func NewGrid(size int) Grid {
	return Grid{
		Size:     size,
		Cells:    make([]CellState, size*size),
		RowClues: make([]int, size),
		ColClues: make([]int, size),
	}
}

func (g Grid) Clone() Grid {
	return Grid{
		Size:     g.Size,
		Cells:    append([]CellState(nil), g.Cells...),
		RowClues: append([]int(nil), g.RowClues...),
		ColClues: append([]int(nil), g.ColClues...),
	}
}

func (g Grid) Kind(row, col int) CellKind {
	n := g.Size
	switch {
	case row < 0 || row > n || col < 0 || col > n:
		return OutOfBounds
	case row == 0 && col == n:
		return CornerCell
	case row == 0:
		return ColumnClueCell
	case col == n:
		return RowClueCell
	default:
		return InteriorCell
	}
}

func (g Grid) Interior(p Position) bool {
	return g.Kind(p.Row, p.Col) == InteriorCell
}

func (g Grid) index(p Position) int {
	return (p.Row-1)*g.Size + p.Col
}

// At returns the state of an interior cell; any other coordinate reads as
// Unresolved.
func (g Grid) At(p Position) CellState {
	if !g.Interior(p) {
		return Unresolved
	}
	return g.Cells[g.index(p)]
}

func (g Grid) set(p Position, s CellState) {
	g.Cells[g.index(p)] = s
}

// Clue returns the clue shown at a border coordinate. ok is false for the
// corner and for every non-clue coordinate.
func (g Grid) Clue(row, col int) (clue int, ok bool) {
	switch g.Kind(row, col) {
	case RowClueCell:
		return g.RowClues[row-1], true
	case ColumnClueCell:
		return g.ColClues[col], true
	default:
		return 0, false
	}
}

func (g Grid) RowClue(row int) int { return g.RowClues[row-1] }
func (g Grid) ColClue(col int) int { return g.ColClues[col] }

// neighbors returns the interior cells around p: 4-connected, or 8-connected
// when diag is set.
func (g Grid) neighbors(p Position, diag bool) []Position {
	res := make([]Position, 0, 8)
	offsets := orthogonal[:]
	if diag {
		offsets = append(offsets[:4:4], diagonal[:]...)
	}
	for _, d := range offsets {
		q := Position{p.Row + d.Row, p.Col + d.Col}
		if g.Interior(q) {
			res = append(res, q)
		}
	}
	return res
}

func (g Grid) hasNeighbor(p Position, diag bool, s CellState) bool {
	for _, q := range g.neighbors(p, diag) {
		if g.At(q) == s {
			return true
		}
	}
	return false
}

// Positions iterates interior cells in row-major order.
func (g Grid) Positions() []Position {
	res := make([]Position, 0, g.Size*g.Size)
	for row := 1; row <= g.Size; row++ {
		for col := range g.Size {
			res = append(res, Position{row, col})
		}
	}
	return res
}

func (g Grid) Count(s CellState) int {
	n := 0
	for _, c := range g.Cells {
		if c == s {
			n++
		}
	}
	return n
}

// Rows renders the full board, clue border included, one string per cell.
func (g Grid) Rows() [][]string {
	rows := make([][]string, g.Size+1)
	for row := range g.Size + 1 {
		rows[row] = make([]string, g.Size+1)
		for col := range g.Size + 1 {
			switch g.Kind(row, col) {
			case CornerCell:
				rows[row][col] = "+"
			case RowClueCell, ColumnClueCell:
				clue, _ := g.Clue(row, col)
				rows[row][col] = strconv.Itoa(clue)
			default:
				rows[row][col] = g.At(Position{row, col}).String()
			}
		}
	}
	return rows
}

func (g Grid) String() string {
	var b strings.Builder
	for _, row := range g.Rows() {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%2s", cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

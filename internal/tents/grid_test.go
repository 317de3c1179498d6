package tents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridKind(t *testing.T) {
	g := NewGrid(4)
	tests := []struct {
		row, col int
		kind     CellKind
	}{
		{0, 0, ColumnClueCell},
		{0, 3, ColumnClueCell},
		{0, 4, CornerCell},
		{1, 4, RowClueCell},
		{4, 4, RowClueCell},
		{1, 0, InteriorCell},
		{4, 3, InteriorCell},
		{5, 0, OutOfBounds},
		{-1, 2, OutOfBounds},
		{2, 5, OutOfBounds},
	}
	for _, test := range tests {
		assert.Equal(t, test.kind, g.Kind(test.row, test.col), "%d:%d", test.row, test.col)
	}
}

func TestGridClue(t *testing.T) {
	g := NewGrid(3)
	g.RowClues[1] = 2
	g.ColClues[0] = 1

	clue, ok := g.Clue(2, 3)
	assert.True(t, ok)
	assert.Equal(t, 2, clue)

	clue, ok = g.Clue(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 1, clue)

	_, ok = g.Clue(0, 3)
	assert.False(t, ok, "corner is not a clue")
	_, ok = g.Clue(1, 1)
	assert.False(t, ok)
}

func TestNeighbors(t *testing.T) {
	g := NewGrid(3)

	assert.ElementsMatch(t,
		[]Position{{2, 0}, {1, 1}},
		g.neighbors(Position{1, 0}, false),
	)
	assert.ElementsMatch(t,
		[]Position{{2, 0}, {1, 1}, {2, 1}},
		g.neighbors(Position{1, 0}, true),
	)
	assert.Len(t, g.neighbors(Position{2, 1}, false), 4)
	assert.Len(t, g.neighbors(Position{2, 1}, true), 8)
	assert.Empty(t, NewGrid(1).neighbors(Position{1, 0}, true))

	// the package-level offset tables must survive diagonal lookups
	assert.Len(t, orthogonal, 4)
	assert.Equal(t, Position{-1, 0}, orthogonal[0])
}

func TestGridString(t *testing.T) {
	g := NewGrid(2)
	g.set(Position{1, 0}, Tree)
	g.set(Position{2, 1}, Grass)
	g.RowClues[0] = 1
	g.ColClues[1] = 1

	want := "" +
		" 0  1  +\n" +
		" T  .  1\n" +
		" .  \"  0\n"
	assert.Equal(t, want, g.String())
}

func TestCloneIsDeep(t *testing.T) {
	g := NewGrid(2)
	c := g.Clone()
	c.set(Position{1, 1}, Tent)
	c.RowClues[0] = 5
	assert.Equal(t, Unresolved, g.At(Position{1, 1}))
	assert.Zero(t, g.RowClues[0])
}

func TestSeed(t *testing.T) {
	params := GameParams{Dimension: 8, TentDensity: 1.75, StartLives: 3}
	assert.Equal(t, "8:1.75:3", params.Seed())

	parsed, err := ParseSeed(params.Seed())
	require.NoError(t, err)
	assert.Equal(t, params, *parsed)

	for _, bad := range []string{"", "8", "8:x:3", "0:1.75:3", "8:1.75:0"} {
		_, err := ParseSeed(bad)
		assert.ErrorIs(t, err, ErrInvalidParams, bad)
	}
}

func TestTentTarget(t *testing.T) {
	assert.Equal(t, 14, GameParams{Dimension: 8, TentDensity: 1.75}.TentTarget())
	assert.Equal(t, 16, GameParams{Dimension: 8, TentDensity: 2}.TentTarget())
	assert.Equal(t, 2, GameParams{Dimension: 1, TentDensity: 1.75}.TentTarget())
	assert.Equal(t, 2, GameParams{Dimension: 1, TentDensity: 2.5}.TentTarget())
}

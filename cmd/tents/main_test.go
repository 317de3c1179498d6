package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/tents-server/internal/tents"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestGen(t *testing.T) {
	out, err := run(t, "", "gen", "-d", "5", "--seed", "3", "--solution")
	require.NoError(t, err)
	assert.Contains(t, out, "params 5:1.75:3")
	assert.Contains(t, out, "solution:")
	assert.Contains(t, out, " +\n")

	again, err := run(t, "", "gen", "-d", "5", "--seed", "3", "--solution")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestGenInvalidParams(t *testing.T) {
	_, err := run(t, "", "gen", "-d", "0")
	assert.ErrorIs(t, err, tents.ErrInvalidParams)
}

func TestGenConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game:\n  dimension: 4\n  tent_density: 1\n"), 0o600))

	out, err := run(t, "", "gen", "--config", path, "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "params 4:1:3")

	out, err = run(t, "", "gen", "--config", path, "--seed", "1", "-d", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "params 6:1:3")
}

func TestPlayForfeit(t *testing.T) {
	out, err := run(t, "bogus\nf\n", "play", "--seed", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown command")
	assert.Contains(t, out, "game lost, solution:")
}

func TestPlayToWin(t *testing.T) {
	params := tents.GameParams{Dimension: 6, TentDensity: 1.5, StartLives: 3}
	opts := &options{seed: 11, params: params}
	game, err := tents.NewGame(&params, opts.rand())
	require.NoError(t, err)

	var script strings.Builder
	script.WriteString("n\n")
	for _, piece := range game.Pieces {
		if piece.Kind == tents.TentPiece {
			fmt.Fprintf(&script, "g %d %d\n", piece.Pos.Row, piece.Pos.Col)
		}
	}

	var out bytes.Buffer
	require.NoError(t, play(strings.NewReader(script.String()), &out, game))
	assert.Equal(t, tents.Won, game.Status)
	assert.Contains(t, out.String(), "you found every tent")
}

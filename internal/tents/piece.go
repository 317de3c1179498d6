package tents

import "encoding/json"

type PieceKind uint8

const (
	TreePiece PieceKind = iota + 1
	TentPiece
)

func (k PieceKind) String() string {
	switch k {
	case TreePiece:
		return "tree"
	case TentPiece:
		return "tent"
	default:
		return "unknown"
	}
}

func (k PieceKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

type Visibility uint8

const (
	Hidden Visibility = iota
	Revealed
)

func (v Visibility) String() string {
	if v == Revealed {
		return "revealed"
	}
	return "hidden"
}

func (v Visibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// Piece is an entry of the manifest: the authoritative record of where trees
// and tents really are. Partner indexes the paired piece, -1 if unpaired.
type Piece struct {
	Kind       PieceKind  `json:"kind"`
	Pos        Position   `json:"pos"`
	Visibility Visibility `json:"visibility"`
	Partner    int        `json:"partner"`
}

func (p Piece) Revealed() bool {
	return p.Visibility == Revealed
}

package handlers

import (
	"fmt"
	"net/url"

	"github.com/vancomm/tents-server/internal/session"
	"github.com/vancomm/tents-server/internal/tents"
)

type NewGameDTO struct {
	Dimension   int     `schema:"dimension"`
	TentDensity float64 `schema:"tent_density"`
	StartLives  int     `schema:"start_lives"`
}

// ParseGameParams decodes the optional game parameters from src on top of
// defaults.
func ParseGameParams(src url.Values, defaults tents.GameParams) (*tents.GameParams, error) {
	dto := NewGameDTO(defaults)
	if err := decoder.Decode(&dto, src); err != nil {
		return nil, fmt.Errorf("%w: %w", tents.ErrInvalidParams, err)
	}
	params := tents.GameParams(dto)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &params, nil
}

type PositionDTO struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func ParsePosition(src url.Values) (tents.Position, error) {
	var dto PositionDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return tents.Position{}, err
	}
	return tents.Position{Row: dto.Row, Col: dto.Col}, nil
}

// GameSessionDTO is what the player sees: the clue-bordered grid, trees and
// the tents found so far. Hidden tents are only listed once the game is over.
type GameSessionDTO struct {
	SessionId   string           `json:"session_id"`
	Status      tents.Status     `json:"status"`
	Dimension   int              `json:"dimension"`
	TentDensity float64          `json:"tent_density"`
	StartLives  int              `json:"start_lives"`
	Lives       int              `json:"lives"`
	Grid        [][]string       `json:"grid"`
	RowClues    []int            `json:"row_clues"`
	ColClues    []int            `json:"col_clues"`
	Trees       []tents.Position `json:"trees"`
	Tents       []tents.Position `json:"tents"`
	Counts      tents.Counts     `json:"counts"`
	Report      tents.Report     `json:"report"`
	Events      []tents.Event    `json:"events,omitempty"`
	StartedAt   int64            `json:"started_at"`
	EndedAt     *int64           `json:"ended_at,omitempty"`
}

// NewGameSessionDTO must be called with the session locked.
func NewGameSessionDTO(s *session.Session, events []tents.Event) *GameSessionDTO {
	g := s.State
	grid := g.Grid
	if g.Status.Over() {
		grid = g.Solution()
	}

	var endedAt *int64
	if s.EndedAt != nil {
		e := s.EndedAt.UnixMilli()
		endedAt = &e
	}

	dto := &GameSessionDTO{
		SessionId:   s.ID.String(),
		Status:      g.Status,
		Dimension:   g.Dimension,
		TentDensity: g.TentDensity,
		StartLives:  g.StartLives,
		Lives:       g.Lives,
		Grid:        grid.Rows(),
		RowClues:    append([]int(nil), g.Grid.RowClues...),
		ColClues:    append([]int(nil), g.Grid.ColClues...),
		Trees:       make([]tents.Position, 0),
		Tents:       make([]tents.Position, 0),
		Counts:      g.Counts(),
		Report:      g.Report,
		Events:      events,
		StartedAt:   s.StartedAt.UnixMilli(),
		EndedAt:     endedAt,
	}
	for _, piece := range g.Pieces {
		switch {
		case piece.Kind == tents.TreePiece:
			dto.Trees = append(dto.Trees, piece.Pos)
		case piece.Revealed() || g.Status.Over():
			dto.Tents = append(dto.Tents, piece.Pos)
		}
	}
	return dto
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/tents-server/internal/middleware"
	"github.com/vancomm/tents-server/internal/repository"
	"github.com/vancomm/tents-server/internal/tents"
)

type RecordRepository interface {
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
	FetchRecord(ctx context.Context, sessionId uuid.UUID) (*repository.GameRecord, error)
}

type Records struct {
	log  logrus.FieldLogger
	repo RecordRepository
}

func NewRecords(log logrus.FieldLogger, repo RecordRepository) *Records {
	return &Records{log: log, repo: repo}
}

func parseHighscoreFilter(r *http.Request) (repository.HighscoreFilter, error) {
	query := r.URL.Query()
	filter := repository.HighscoreFilter{}
	if query.Has("params") {
		params, err := tents.ParseSeed(query.Get("params"))
		if err != nil {
			return filter, err
		}
		filter.GameParams = params
	}
	if query.Has("username") {
		username := query.Get("username")
		filter.Username = &username
	}
	return filter, nil
}

func (h *Records) send(w http.ResponseWriter, r *http.Request, filter repository.HighscoreFilter) {
	highscores, err := h.repo.GetHighscores(r.Context(), filter)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.log.WithField("filter", filter).WithError(err).Error("unable to fetch highscores")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if highscores == nil {
		highscores = []repository.Highscore{}
	}
	sendJSONOrLog(w, h.log, highscores)
}

func (h *Records) Highscores(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHighscoreFilter(r)
	if err != nil {
		sendError(w, h.log, http.StatusBadRequest, err)
		return
	}
	h.send(w, r, filter)
}

// PlayerHighscores is Highscores restricted to the logged in player.
func (h *Records) PlayerHighscores(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	filter, err := parseHighscoreFilter(r)
	if err != nil {
		sendError(w, h.log, http.StatusBadRequest, err)
		return
	}
	filter.Username = &claims.Username
	h.send(w, r, filter)
}

// RecordDTO is an archived game with its solved board.
type RecordDTO struct {
	SessionId     string     `json:"session_id"`
	PlayerId      *int64     `json:"player_id,omitempty"`
	Dimension     int        `json:"dimension"`
	TentDensity   float64    `json:"tent_density"`
	StartLives    int        `json:"start_lives"`
	LivesLeft     int        `json:"lives_left"`
	Tents         int        `json:"tents"`
	TentsRevealed int        `json:"tents_revealed"`
	Won           bool       `json:"won"`
	Solution      [][]string `json:"solution"`
	StartedAt     int64      `json:"started_at"`
	EndedAt       int64      `json:"ended_at"`
}

func NewRecordDTO(record *repository.GameRecord) (*RecordDTO, error) {
	state, err := tents.DecodeGameState(record.State)
	if err != nil {
		return nil, err
	}
	return &RecordDTO{
		SessionId:     record.SessionId.String(),
		PlayerId:      record.PlayerId,
		Dimension:     record.Dimension,
		TentDensity:   record.TentDensity,
		StartLives:    record.StartLives,
		LivesLeft:     record.LivesLeft,
		Tents:         record.Tents,
		TentsRevealed: record.TentsRevealed,
		Won:           record.Won,
		Solution:      state.Solution().Rows(),
		StartedAt:     record.StartedAt.Time.UnixMilli(),
		EndedAt:       record.EndedAt.Time.UnixMilli(),
	}, nil
}

func (h *Records) Record(w http.ResponseWriter, r *http.Request) {
	sessionId, err := uuid.Parse(r.PathValue("session"))
	if err != nil {
		sendError(w, h.log, http.StatusNotFound, err)
		return
	}
	record, err := h.repo.FetchRecord(r.Context(), sessionId)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, h.log, "unable to fetch record", err)
		return
	}
	dto, err := NewRecordDTO(record)
	if err != nil {
		internalError(w, h.log, "db returned invalid game_record.state", err)
		return
	}
	sendJSONOrLog(w, h.log, dto)
}

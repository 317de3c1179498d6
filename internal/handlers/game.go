package handlers

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/tents-server/internal/command"
	"github.com/vancomm/tents-server/internal/config"
	"github.com/vancomm/tents-server/internal/middleware"
	"github.com/vancomm/tents-server/internal/repository"
	"github.com/vancomm/tents-server/internal/session"
	"github.com/vancomm/tents-server/internal/tents"
)

const maxBatchBytes = 64 << 10

// Recorder archives finished games.
type Recorder interface {
	CreateRecord(ctx context.Context, params repository.CreateRecordParams) (*repository.GameRecord, error)
}

type GameHandler struct {
	log      logrus.FieldLogger
	sessions *session.Store
	records  Recorder /* nil disables archiving */
	ws       *config.WebSocket
	defaults tents.GameParams

	rndMu sync.Mutex
	rnd   *rand.Rand
	now   func() time.Time
}

func NewGameHandler(
	log logrus.FieldLogger,
	sessions *session.Store,
	records Recorder,
	ws *config.WebSocket,
	defaults tents.GameParams,
	rnd *rand.Rand,
) *GameHandler {
	return &GameHandler{
		log:      log,
		sessions: sessions,
		records:  records,
		ws:       ws,
		defaults: defaults,
		rnd:      rnd,
		now:      time.Now,
	}
}

func (g *GameHandler) newGame(params *tents.GameParams) (*tents.GameState, error) {
	g.rndMu.Lock()
	defer g.rndMu.Unlock()
	return tents.NewGame(params, g.rnd)
}

// record archives a finished session. Failures are logged only; the player
// already has the outcome.
func (g *GameHandler) record(ctx context.Context, s *session.Session) {
	if g.records == nil {
		return
	}
	// nothing was played on a board without tents
	if s.State.Report.TentsPlaced == 0 {
		return
	}
	params := repository.CreateRecordParams{
		SessionId: s.ID,
		PlayerId:  s.PlayerID,
		StartedAt: s.StartedAt,
		EndedAt:   *s.EndedAt,
		State:     s.State,
	}
	if _, err := g.records.CreateRecord(ctx, params); err != nil {
		g.log.WithError(err).WithField("session", s.ID).Error("unable to record finished game")
		return
	}
	g.log.WithFields(logrus.Fields{
		"session": s.ID,
		"status":  s.State.Status,
	}).Debug("recorded finished game")
}

// update runs fn on the locked session, then archives the game if fn ended
// it. The DTO is built under the lock.
func (g *GameHandler) update(
	ctx context.Context, s *session.Session, fn func(*tents.GameState) ([]tents.Event, error),
) (*GameSessionDTO, error) {
	var (
		dto      *GameSessionDTO
		finished bool
	)
	err := s.Do(func(s *session.Session) error {
		events, err := fn(s.State)
		if err != nil {
			return err
		}
		finished = s.Finish(g.now())
		dto = NewGameSessionDTO(s, events)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// A finished state is never mutated again, so it can be read unlocked.
	if finished {
		g.record(ctx, s)
	}
	return dto, nil
}

func (g *GameHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := g.sessions.Lookup(r.PathValue("id"))
	if err != nil {
		sendError(w, g.log, http.StatusNotFound, err)
		return nil, false
	}
	return s, true
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	params, err := ParseGameParams(r.URL.Query(), g.defaults)
	if err != nil {
		sendError(w, g.log, http.StatusBadRequest, err)
		return
	}

	game, err := g.newGame(params)
	if errors.Is(err, tents.ErrInvalidParams) {
		sendError(w, g.log, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		internalError(w, g.log, "unable to generate a new game", err)
		return
	}

	var playerID *int64
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		playerID = &claims.PlayerID
	}

	s := g.sessions.Create(game, playerID)
	g.log.WithFields(logrus.Fields{
		"session": s.ID,
		"seed":    params.Seed(),
		"player":  playerID,
	}).Debug("created session")

	// a board without tents is over before the first guess
	var (
		dto   *GameSessionDTO
		ended bool
	)
	_ = s.Do(func(s *session.Session) error {
		dto = NewGameSessionDTO(s, nil)
		ended = s.EndedAt != nil
		return nil
	})
	if ended {
		g.record(r.Context(), s)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	sendJSONOrLog(w, g.log, dto)
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}
	var dto *GameSessionDTO
	_ = s.Do(func(s *session.Session) error {
		dto = NewGameSessionDTO(s, nil)
		return nil
	})
	sendJSONOrLog(w, g.log, dto)
}

func (g *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	pos, err := ParsePosition(r.URL.Query())
	if err != nil {
		sendError(w, g.log, http.StatusBadRequest, err)
		return
	}
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}
	dto, err := g.update(r.Context(), s, func(state *tents.GameState) ([]tents.Event, error) {
		return []tents.Event{state.Guess(pos)}, nil
	})
	if err != nil {
		internalError(w, g.log, "unable to apply guess", err)
		return
	}
	sendJSONOrLog(w, g.log, dto)
}

// Batch applies newline-separated commands from the request body.
func (g *GameHandler) Batch(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	if err != nil {
		sendError(w, g.log, http.StatusBadRequest, err)
		return
	}
	dto, err := g.update(r.Context(), s, func(state *tents.GameState) ([]tents.Event, error) {
		return command.Batch(state, string(body))
	})
	var lineErr *command.LineError
	if errors.As(err, &lineErr) {
		sendError(w, g.log, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		internalError(w, g.log, "unable to apply batch", err)
		return
	}
	sendJSONOrLog(w, g.log, dto)
}

func (g *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}
	dto, err := g.update(r.Context(), s, func(state *tents.GameState) ([]tents.Event, error) {
		state.Forfeit()
		return nil, nil
	})
	if err != nil {
		internalError(w, g.log, "unable to forfeit", err)
		return
	}
	sendJSONOrLog(w, g.log, dto)
}

// ConnectWS runs the command loop over a websocket: every text message is a
// batch, every reply the updated session. Malformed batches are answered with
// an error object and leave the game untouched.
func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}
	c, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer c.Close()

	log := g.log.WithField("session", s.ID)
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}
		if mt != websocket.TextMessage {
			_ = c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "text only"))
			return
		}

		g.sessions.Touch(s)

		var reply any
		dto, err := g.update(r.Context(), s, func(state *tents.GameState) ([]tents.Event, error) {
			return command.Batch(state, string(message))
		})
		if err != nil {
			reply = wrapError(err)
		} else {
			reply = dto
		}
		if err := c.WriteJSON(reply); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}
	}
}

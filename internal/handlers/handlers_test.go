package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/tents-server/internal/config"
	"github.com/vancomm/tents-server/internal/repository"
	"github.com/vancomm/tents-server/internal/session"
	"github.com/vancomm/tents-server/internal/tents"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []repository.CreateRecordParams
}

func (f *fakeRecorder) CreateRecord(
	_ context.Context, params repository.CreateRecordParams,
) (*repository.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, params)
	return &repository.GameRecord{SessionId: params.SessionId}, nil
}

func (f *fakeRecorder) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type gameFixture struct {
	handler  *GameHandler
	recorder *fakeRecorder
	mux      *http.ServeMux
}

func newGameFixture(t *testing.T) *gameFixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	ws, err := config.NewWebSocket()
	require.NoError(t, err)

	recorder := &fakeRecorder{}
	h := NewGameHandler(
		log,
		session.NewStore(log, 0),
		recorder,
		ws,
		tents.GameParams{Dimension: 6, TentDensity: 1.75, StartLives: 3},
		rand.New(rand.NewPCG(1, 2)),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /game", h.NewGame)
	mux.HandleFunc("GET /game/{id}", h.Fetch)
	mux.HandleFunc("POST /game/{id}/guess", h.Guess)
	mux.HandleFunc("POST /game/{id}/batch", h.Batch)
	mux.HandleFunc("POST /game/{id}/forfeit", h.Forfeit)
	mux.HandleFunc("GET /game/{id}/connect", h.ConnectWS)

	return &gameFixture{handler: h, recorder: recorder, mux: mux}
}

func (f *gameFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func decodeDTO(t *testing.T, rec *httptest.ResponseRecorder) GameSessionDTO {
	t.Helper()
	var dto GameSessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto), rec.Body.String())
	return dto
}

func (f *gameFixture) create(t *testing.T, query string) GameSessionDTO {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/game?"+query, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeDTO(t, rec)
}

func (f *gameFixture) hiddenTents(t *testing.T, id string) []tents.Position {
	t.Helper()
	s, err := f.handler.sessions.Lookup(id)
	require.NoError(t, err)
	var out []tents.Position
	_ = s.Do(func(s *session.Session) error {
		for _, piece := range s.State.Pieces {
			if piece.Kind == tents.TentPiece && !piece.Revealed() {
				out = append(out, piece.Pos)
			}
		}
		return nil
	})
	return out
}

func TestNewGame(t *testing.T) {
	f := newGameFixture(t)

	dto := f.create(t, "")
	assert.Equal(t, "playing", dto.Status.String())
	assert.Equal(t, 6, dto.Dimension)
	assert.Equal(t, 3, dto.Lives)
	assert.Len(t, dto.Grid, 7)
	assert.Equal(t, "+", dto.Grid[0][6])
	assert.Empty(t, dto.Tents, "hidden tents leaked")
	assert.Equal(t, dto.Report.TreesPlaced, len(dto.Trees))
	assert.Nil(t, dto.EndedAt)

	dto = f.create(t, "dimension=10&tent_density=2&start_lives=5")
	assert.Equal(t, 10, dto.Dimension)
	assert.Equal(t, 5, dto.Lives)
}

func TestNewGameBadParams(t *testing.T) {
	f := newGameFixture(t)
	for _, query := range []string{
		"dimension=0",
		"dimension=101",
		"dimension=4294967296",
		"tent_density=-1",
		"tent_density=1e300",
		"start_lives=zero",
	} {
		rec := f.do(t, http.MethodPost, "/game?"+query, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func TestTentlessGameIsNotRecorded(t *testing.T) {
	f := newGameFixture(t)
	dto := f.create(t, "dimension=3&tent_density=0.01")
	assert.Equal(t, tents.Won, dto.Status)
	assert.Zero(t, dto.Report.TentsPlaced)
	assert.NotNil(t, dto.EndedAt)
	assert.Zero(t, f.recorder.len())
}

func TestUnknownSession(t *testing.T) {
	f := newGameFixture(t)
	for _, target := range []string{"/game/nope", "/game/" + "00000000-0000-0000-0000-000000000000"} {
		rec := f.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
}

func TestGuess(t *testing.T) {
	f := newGameFixture(t)
	dto := f.create(t, "")
	hidden := f.hiddenTents(t, dto.SessionId)
	require.NotEmpty(t, hidden)

	tent := hidden[0]
	rec := f.do(t, http.MethodPost,
		fmt.Sprintf("/game/%s/guess?row=%d&col=%d", dto.SessionId, tent.Row, tent.Col), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto = decodeDTO(t, rec)
	assert.Contains(t, dto.Tents, tent)
	assert.Equal(t, tents.Tent.String(), dto.Grid[tent.Row][tent.Col])
	assert.Equal(t, 3, dto.Lives)

	rec = f.do(t, http.MethodPost, "/game/"+dto.SessionId+"/guess?row=0&col=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeDTO(t, rec).Lives)

	rec = f.do(t, http.MethodPost, "/game/"+dto.SessionId+"/guess?row=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLosingRecordsOnce(t *testing.T) {
	f := newGameFixture(t)
	dto := f.create(t, "start_lives=1")

	rec := f.do(t, http.MethodPost, "/game/"+dto.SessionId+"/guess?row=0&col=0", "")
	dto = decodeDTO(t, rec)
	assert.Equal(t, tents.Lost, dto.Status)
	assert.NotNil(t, dto.EndedAt)
	assert.Equal(t, dto.Counts.Tents, len(dto.Tents), "finished games show every tent")
	assert.Equal(t, 1, f.recorder.len())

	f.do(t, http.MethodPost, "/game/"+dto.SessionId+"/guess?row=0&col=0", "")
	f.do(t, http.MethodPost, "/game/"+dto.SessionId+"/forfeit", "")
	assert.Equal(t, 1, f.recorder.len())
}

func TestBatch(t *testing.T) {
	f := newGameFixture(t)
	dto := f.create(t, "")
	hidden := f.hiddenTents(t, dto.SessionId)

	rec := f.do(t, http.MethodPost, "/game/"+dto.SessionId+"/batch", "n\ng 1\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "line 1")
	assert.Len(t, f.hiddenTents(t, dto.SessionId), len(hidden), "malformed batch applied")

	var body strings.Builder
	for _, p := range hidden {
		fmt.Fprintf(&body, "g %d %d\n", p.Row, p.Col)
	}
	rec = f.do(t, http.MethodPost, "/game/"+dto.SessionId+"/batch", body.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto = decodeDTO(t, rec)
	assert.Equal(t, tents.Won, dto.Status)
	require.NotEmpty(t, dto.Events)
	assert.Equal(t, tents.GameWon, dto.Events[len(dto.Events)-1])

	require.Equal(t, 1, f.recorder.len())
	record := f.recorder.records[0]
	assert.Equal(t, dto.SessionId, record.SessionId.String())
	assert.Nil(t, record.PlayerId)
	assert.False(t, record.EndedAt.Before(record.StartedAt))
}

func TestForfeit(t *testing.T) {
	f := newGameFixture(t)
	dto := f.create(t, "")

	rec := f.do(t, http.MethodPost, "/game/"+dto.SessionId+"/forfeit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	dto = decodeDTO(t, rec)
	assert.Equal(t, tents.Lost, dto.Status)
	assert.Equal(t, 3, dto.Lives)
	assert.Equal(t, 1, f.recorder.len())
}

func TestConnectWS(t *testing.T) {
	f := newGameFixture(t)
	dto := f.create(t, "")

	srv := httptest.NewServer(f.mux)
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/game/" + dto.SessionId + "/connect"

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("n")))
	var got GameSessionDTO
	require.NoError(t, c.ReadJSON(&got))
	assert.Equal(t, dto.SessionId, got.SessionId)
	assert.Equal(t, 3, got.Lives)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("x 1 2")))
	var errReply map[string]string
	require.NoError(t, c.ReadJSON(&errReply))
	assert.Contains(t, errReply["error"], "unknown command")

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("g 0 0\nf")))
	require.NoError(t, c.ReadJSON(&got))
	assert.Equal(t, tents.Lost, got.Status)
	assert.Equal(t, 2, got.Lives)

	require.NoError(t, c.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}

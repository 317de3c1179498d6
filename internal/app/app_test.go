package app

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/tents-server/internal/config"
	"github.com/vancomm/tents-server/internal/repository"
	"github.com/vancomm/tents-server/internal/session"
	"github.com/vancomm/tents-server/internal/tents"
)

type nopRepository struct{}

func (nopRepository) CreateRecord(context.Context, repository.CreateRecordParams) (*repository.GameRecord, error) {
	return &repository.GameRecord{}, nil
}

func (nopRepository) CreatePlayer(context.Context, repository.CreatePlayerParams) (*repository.Player, error) {
	return &repository.Player{}, nil
}

func (nopRepository) FetchPlayer(context.Context, string) (*repository.Player, error) {
	return &repository.Player{}, nil
}

func (nopRepository) GetHighscores(context.Context, repository.HighscoreFilter) ([]repository.Highscore, error) {
	return nil, nil
}

func (nopRepository) FetchRecord(context.Context, uuid.UUID) (*repository.GameRecord, error) {
	return nil, pgx.ErrNoRows
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	log, _ := test.NewNullLogger()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	t.Setenv("COOKIES_DOMAIN", "localhost")
	cookies, err := config.NewCookies(config.NewJWTWithKeys(key, &key.PublicKey, time.Hour))
	require.NoError(t, err)
	ws, err := config.NewWebSocket()
	require.NoError(t, err)

	a := New(log, nil)
	a.cookies = cookies
	a.ws = ws
	a.params = tents.DefaultParams()
	a.sessions = session.NewStore(log, 0)
	a.loadRoutes(nopRepository{})
	return a
}

func TestRoutes(t *testing.T) {
	a := newTestApp(t)
	h := a.handler()

	tests := []struct {
		method, target string
		status         int
	}{
		{http.MethodGet, "/healthz", http.StatusNoContent},
		{http.MethodGet, "/status", http.StatusOK},
		{http.MethodPost, "/game", http.StatusCreated},
		{http.MethodGet, "/game/unknown", http.StatusNotFound},
		{http.MethodGet, "/records", http.StatusOK},
		{http.MethodGet, "/records/" + uuid.NewString(), http.StatusNotFound},
		{http.MethodGet, "/myrecords", http.StatusUnauthorized},
		{http.MethodDelete, "/game/unknown", http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.target)
	}
	assert.Equal(t, 1, a.sessions.Len())
}

func TestBasePath(t *testing.T) {
	a := newTestApp(t)
	t.Setenv("APP_BASE_PATH", "/tents")
	h := a.handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tents/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, time.Hour, sweepInterval(0))
	assert.Equal(t, 30*time.Minute, sweepInterval(2*time.Hour))
	assert.Equal(t, time.Second, sweepInterval(time.Second))
}

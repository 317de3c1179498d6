package config

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/tents-server/internal/tents"
)

func TestPort(t *testing.T) {
	t.Setenv("APP_PORT", "")
	assert.Equal(t, ":8080", Port())

	t.Setenv("APP_PORT", "9000")
	assert.Equal(t, ":9000", Port())

	t.Setenv("APP_PORT", ":9001")
	assert.Equal(t, ":9001", Port())
}

func TestSessionTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "15m")
	ttl, err := SessionTTL()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, ttl)

	t.Setenv("SESSION_TTL", "soon")
	_, err = SessionTTL()
	assert.Error(t, err)
}

func TestNewGameParams(t *testing.T) {
	params, err := NewGameParams()
	require.NoError(t, err)
	assert.Equal(t, tents.DefaultParams(), *params)

	t.Setenv("TENTS_DIMENSION", "12")
	t.Setenv("TENTS_DENSITY", "2")
	t.Setenv("TENTS_START_LIVES", "5")
	params, err = NewGameParams()
	require.NoError(t, err)
	assert.Equal(t, tents.GameParams{Dimension: 12, TentDensity: 2, StartLives: 5}, *params)

	t.Setenv("TENTS_DIMENSION", "0")
	_, err = NewGameParams()
	assert.ErrorIs(t, err, tents.ErrInvalidParams)

	t.Setenv("TENTS_DIMENSION", "eight")
	_, err = NewGameParams()
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"game:\n  dimension: 10\n  start_lives: 1\nlog_level: debug\n",
	), 0o600))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", f.LogLevel)

	params := tents.DefaultParams()
	f.Game.Apply(&params)
	assert.Equal(t, 10, params.Dimension)
	assert.Equal(t, tents.DefaultTentDensity, params.TentDensity)
	assert.Equal(t, 1, params.StartLives)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDbURL(t *testing.T) {
	t.Setenv("POSTGRES_USER", "tents")
	t.Setenv("POSTGRES_PASSWORD", "p@ss word")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_DB", "tents")

	url, err := DbURL()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://tents:p%40ss+word@db:5432/tents?sslmode=disable", url)

	t.Setenv("DATABASE_URL", "postgres://elsewhere/db")
	url, err = DbURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://elsewhere/db", url)
}

func TestCookiesRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	t.Setenv("COOKIES_DOMAIN", "localhost")
	t.Setenv("COOKIES_SAMESITE", "lax")
	cookies, err := NewCookies(NewJWTWithKeys(key, &key.PublicKey, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.SameSiteLaxMode, cookies.SameSite)

	rec := httptest.NewRecorder()
	require.NoError(t, cookies.Issue(rec, NewPlayerClaims(7, "camper")))

	req := httptest.NewRequest(http.MethodGet, "/myrecords", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	claims, err := cookies.ParsePlayerClaims(req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.PlayerID)
	assert.Equal(t, "camper", claims.Username)

	_, err = cookies.ParsePlayerClaims(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/tents-server/internal/config"
	"github.com/vancomm/tents-server/internal/middleware"
	"github.com/vancomm/tents-server/internal/repository"
)

type PlayerRepository interface {
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
}

type CookieJar interface {
	Issue(w http.ResponseWriter, claims *config.PlayerClaims) error
	Clear(w http.ResponseWriter)
}

type Auth struct {
	log     logrus.FieldLogger
	repo    PlayerRepository
	cookies CookieJar
	cost    int
}

func NewAuth(log logrus.FieldLogger, repo PlayerRepository, cookies CookieJar) *Auth {
	return &Auth{
		log:     log,
		repo:    repo,
		cookies: cookies,
		cost:    bcrypt.DefaultCost,
	}
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody        = errors.New("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = errors.New("password too long")
	ErrUsernameTaken      = errors.New("username taken")
	ErrBadCredentials     = errors.New("wrong username or password")
)

func credentials(r *http.Request) (username, password string, err error) {
	if err := r.ParseForm(); err != nil {
		return "", "", ErrBadAuthBody
	}
	username = r.FormValue("username")
	password = r.FormValue("password")
	if username == "" || password == "" {
		return "", "", ErrBadAuthBody
	}
	return username, password, nil
}

func (a *Auth) login(w http.ResponseWriter, player *repository.Player) {
	claims := config.NewPlayerClaims(player.PlayerId, player.Username)
	if err := a.cookies.Issue(w, claims); err != nil {
		internalError(w, a.log, "unable to set auth cookies", err)
		return
	}
	sendJSONOrLog(w, a.log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{player.PlayerId, player.Username},
	})
}

func (a *Auth) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		a.cookies.Clear(w)
		sendJSONOrLog(w, a.log, Status{LoggedIn: false})
		return
	}
	sendJSONOrLog(w, a.log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{claims.PlayerID, claims.Username},
	})
}

func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	username, password, err := credentials(r)
	if err != nil {
		sendError(w, a.log, http.StatusBadRequest, err)
		return
	}

	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		sendError(w, a.log, http.StatusBadRequest, ErrBadPasswordTooLong)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		internalError(w, a.log, "unable to hash password", err)
		return
	}

	player, err := a.repo.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		sendError(w, a.log, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		internalError(w, a.log, "unable to insert player", err)
		return
	}

	a.log.WithField("username", player.Username).Info("registered player")
	a.login(w, player)
}

func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	username, password, err := credentials(r)
	if err != nil {
		sendError(w, a.log, http.StatusBadRequest, err)
		return
	}

	player, err := a.repo.FetchPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		sendError(w, a.log, http.StatusUnauthorized, ErrBadCredentials)
		return
	}
	if err != nil {
		internalError(w, a.log, "unable to fetch player", err)
		return
	}

	err = bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		sendError(w, a.log, http.StatusUnauthorized, ErrBadCredentials)
		return
	}
	if err != nil {
		internalError(w, a.log, "bcrypt compare failed", err)
		return
	}

	a.login(w, player)
}

func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	sendJSONOrLog(w, a.log, Status{LoggedIn: false})
}

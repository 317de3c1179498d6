package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/tents-server/internal/config"
)

type CtxKey int

const (
	CtxPlayerClaims CtxKey = iota
)

type ClaimsParser interface {
	ParsePlayerClaims(r *http.Request) (*config.PlayerClaims, error)
}

// Auth attaches the player's claims to the request context when the auth
// cookies carry a valid token. Anonymous requests pass through untouched.
func Auth(log logrus.FieldLogger, cookies ClaimsParser) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := cookies.ParsePlayerClaims(r)
			if err != nil {
				if _, cookieErr := r.Cookie("auth"); cookieErr == nil {
					log.WithError(err).Debug("rejected auth cookies")
				}
				h.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxPlayerClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func PlayerClaims(ctx context.Context) (*config.PlayerClaims, bool) {
	claims, ok := ctx.Value(CtxPlayerClaims).(*config.PlayerClaims)
	return claims, ok
}

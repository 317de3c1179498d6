package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The signed token is split in two cookies: "auth" (header.payload) is
// readable by the client, "sign" (signature) is http-only.
const (
	authCookie = "auth"
	signCookie = "sign"
)

type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

type PlayerClaims struct {
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewPlayerClaims(playerID int64, username string) *PlayerClaims {
	return &PlayerClaims{
		PlayerID: playerID,
		Username: username,
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToUpper(s) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func NewCookies(jwt *JWT) (*Cookies, error) {
	domain, ok := os.LookupEnv("COOKIES_DOMAIN")
	if !ok {
		return nil, fmt.Errorf("COOKIES_DOMAIN env variable is not set")
	}

	secure := true
	if secureStr, ok := os.LookupEnv("COOKIES_SECURE"); ok {
		secure = secureStr != "0"
	}

	sameSite := http.SameSiteStrictMode
	if sameSiteStr, ok := os.LookupEnv("COOKIES_SAMESITE"); ok {
		sameSite = parseSameSite(sameSiteStr)
	}

	cookies := &Cookies{
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		jwt:      jwt,
	}

	return cookies, nil
}

func (c *Cookies) cookie(name, value string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		HttpOnly: httpOnly,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	for _, ck := range []*http.Cookie{
		c.cookie(authCookie, "delete", false),
		c.cookie(signCookie, "delete", true),
	} {
		ck.MaxAge = -1
		http.SetCookie(w, ck)
	}
}

// Issue signs claims and sets both cookies.
func (c *Cookies) Issue(w http.ResponseWriter, claims *PlayerClaims) error {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(c.jwt.tokenLifetime))
	token, err := c.jwt.Sign(claims)
	if err != nil {
		return fmt.Errorf("unable to sign claims: %w", err)
	}
	header, signature, ok := cutSignature(token)
	if !ok {
		return fmt.Errorf("malformed JWT token generated")
	}
	expires := time.Now().Add(c.jwt.tokenLifetime)
	for _, ck := range []*http.Cookie{
		c.cookie(authCookie, header, false),
		c.cookie(signCookie, signature, true),
	} {
		ck.Expires = expires
		http.SetCookie(w, ck)
	}
	return nil
}

func cutSignature(token string) (headerPayload, signature string, ok bool) {
	if strings.Count(token, ".") != 2 {
		return "", "", false
	}
	i := strings.LastIndexByte(token, '.')
	return token[:i], token[i+1:], true
}

func (c *Cookies) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	auth, err := r.Cookie(authCookie)
	if err != nil {
		return nil, err
	}
	sign, err := r.Cookie(signCookie)
	if err != nil {
		return nil, err
	}
	token, err := c.jwt.ParseWithClaims(auth.Value+"."+sign.Value, &PlayerClaims{})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}

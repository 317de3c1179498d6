package config

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenLifetime = 30 * 24 * time.Hour

type JWT struct {
	publicKey     *rsa.PublicKey
	privateKey    *rsa.PrivateKey
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

// readPEM takes the key from KEY or from the file named by KEY_FILE.
func readPEM(key string) ([]byte, error) {
	if pem, ok := os.LookupEnv(key); ok {
		return []byte(pem), nil
	}
	path, ok := os.LookupEnv(key + "_FILE")
	if !ok {
		return nil, fmt.Errorf("no %s or %s_FILE env variable set", key, key)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	return b, nil
}

func NewJWT() (*JWT, error) {
	privatePEM, err := readPEM("JWT_PRIVATE_KEY")
	if err != nil {
		return nil, err
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT private key: %w", err)
	}

	publicPEM, err := readPEM("JWT_PUBLIC_KEY")
	if err != nil {
		return nil, err
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT public key: %w", err)
	}

	lifetime := defaultTokenLifetime
	if s, ok := os.LookupEnv("JWT_TOKEN_LIFETIME"); ok {
		if lifetime, err = time.ParseDuration(s); err != nil {
			return nil, fmt.Errorf("unable to parse JWT_TOKEN_LIFETIME: %w", err)
		}
	}

	return NewJWTWithKeys(privateKey, publicKey, lifetime), nil
}

func NewJWTWithKeys(private *rsa.PrivateKey, public *rsa.PublicKey, lifetime time.Duration) *JWT {
	return &JWT{
		privateKey:    private,
		publicKey:     public,
		signingMethod: jwt.SigningMethodRS256,
		tokenLifetime: lifetime,
	}
}

func (j *JWT) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.privateKey)
}

func (j *JWT) ParseWithClaims(tokenString string, claims jwt.Claims) (*jwt.Token, error) {
	return jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return j.publicKey, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
}

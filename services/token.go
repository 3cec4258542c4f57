package services

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/oklog/ulid/v2"
	"github.com/xdg-go/pbkdf2"
)

// markerLifetime caps how long an auth token marker stays usable. The
// sliding 1 hour session expiry is enforced by the gate; this is only a
// hard upper bound on the marker itself.
const markerLifetime = 24 * time.Hour

// TokenSigner issues and verifies the auth token marker: a signed proof
// that a login completed, stored alongside the session blob.
type TokenSigner struct {
	key []byte
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{
		key: pbkdf2.Key([]byte(secret), []byte("closing.auth-marker.v1"), 4096, 32, sha256.New),
	}
}

func (t *TokenSigner) Issue(actorID string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   actorID,
		ID:        ulid.Make().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(markerLifetime)),
	})
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("issue auth marker: %w", err)
	}
	return signed, nil
}

func (t *TokenSigner) Verify(marker string) bool {
	token, err := jwt.ParseWithClaims(marker, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.key, nil
	})
	return err == nil && token.Valid
}

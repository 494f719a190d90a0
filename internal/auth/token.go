package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every cookie value that fails signature or claim checks.
var ErrInvalidToken = errors.New("invalid session token")

// TokenManager signs the session reference handed to clients as a cookie value,
// so a forged or altered cookie never reaches the session map.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
// A zero ttl issues tokens without an expiry.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate issues a signed JWT referencing sessionID on behalf of userID.
func (t *TokenManager) Generate(sessionID string, userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:       sessionID,
		Issuer:   t.issuer,
		Subject:  strconv.FormatInt(userID, 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies tokenString and returns the session id and user id it carries.
func (t *TokenManager) Parse(tokenString string) (string, int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return "", 0, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims.ID, userID, nil
}

// TTL returns the configured token lifetime; zero means no expiry.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

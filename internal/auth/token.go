package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// csrfTokenBytes is the entropy of a CSRF token (256-bit).
const csrfTokenBytes = 32

// SessionClaims extends JWT standard claims with the account fields the
// request gate needs without a second lookup.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// IssueSessionToken creates a signed session token for a user.
//
// The token is signed with HS256 and carries the configured TTL. Note the
// token itself is only half a session: it must also be persisted as the
// account's current_token before the gate will accept it.
func IssueSessionToken(user *User, secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour //nolint:mnd // default session lifetime
	}

	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates and parses a session token, returning its claims.
//
// Expired tokens return ErrTokenExpired; any other failure (bad signature,
// wrong algorithm, malformed payload, missing fields) returns ErrTokenInvalid.
// Callers distinguish the two for logging only; both are rejected the same way.
func ParseSessionToken(tokenString, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrTokenInvalid)
	}

	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role", ErrTokenInvalid)
	}

	return claims, nil
}

// NewCSRFToken creates a cryptographically random CSRF token (256-bit hex).
// The same value rides in a JS-readable cookie and the X-CSRF-Token header;
// the guard compares the two, so a cross-site caller who cannot read the
// cookie cannot forge the header.
func NewCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating csrf token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

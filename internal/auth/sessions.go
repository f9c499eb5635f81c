package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Sessions is the session authority: the single owner of login, logout and
// request authentication. Handlers never touch tokens or hashes directly.
type Sessions struct {
	users  UserRepository
	secret string
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessions creates a session authority backed by the given repository.
func NewSessions(users UserRepository, secret string, ttl time.Duration, logger *slog.Logger) *Sessions {
	return &Sessions{
		users:  users,
		secret: secret,
		ttl:    ttl,
		logger: logger,
	}
}

// LoginResult is what a successful login hands back to the transport layer,
// which turns it into cookies and a response body.
type LoginResult struct {
	User         *User
	SessionToken string
	CSRFToken    string
}

// Login verifies credentials and establishes a new session.
//
// Unknown name and wrong password both return ErrInvalidCredentials, so the
// caller cannot tell which accounts exist. On success the new token
// overwrites the account's current_token, so any earlier session for this
// account is dead from this moment.
func (s *Sessions) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		// Unparseable stored hash. Treat as a bad credential rather than
		// leaking the state of the row.
		s.logger.Warn("stored credential is not a valid hash", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := IssueSessionToken(user, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}

	csrf, err := NewCSRFToken()
	if err != nil {
		return nil, err
	}

	if err := s.users.SetCurrentToken(ctx, user.ID, &token); err != nil {
		return nil, fmt.Errorf("persisting session token: %w", err)
	}
	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		// The session is already live; a failed timestamp is not worth
		// failing the login over.
		s.logger.Warn("recording last login failed", "user_id", user.ID, "error", err)
	}

	s.logger.Info("login", "user_id", user.ID, "name", user.Name)

	return &LoginResult{
		User:         user,
		SessionToken: token,
		CSRFToken:    csrf,
	}, nil
}

// Logout revokes the session identified by the token value.
//
// It is idempotent: an expired, malformed or already-superseded token is
// not an error. A token that fails signature validation can still be used
// for logout lookup since revocation matches on the raw string.
func (s *Sessions) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.users.ClearCurrentToken(ctx, token); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// Authenticate validates a presented session token end to end and returns
// the caller's identity.
//
// Validation is two-phase: the signature and expiry check proves the token
// was minted by us and is still within its window; the current_token
// cross-check proves it has not been superseded by a later login or
// revoked by logout. Both must pass.
func (s *Sessions) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := ParseSessionToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByIDAndToken(ctx, claims.UserID, token)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrTokenSuperseded
		}
		return nil, fmt.Errorf("checking current token: %w", err)
	}

	return &Identity{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role,
	}, nil
}

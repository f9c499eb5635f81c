package auth

import (
	"errors"
	"regexp"
	"time"
)

// namePattern defines the valid format for account names:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxNameLength is the maximum allowed account name length.
const maxNameLength = 64

// IsValidName checks if an account name meets format requirements.
func IsValidName(name string) bool {
	return len(name) <= maxNameLength && namePattern.MatchString(name)
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleUser is a standard account: full read access plus device writes.
	RoleUser Role = "user"

	// RoleAdmin additionally manages accounts and seeded data.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles an account may hold.
var ValidRoles = []Role{RoleUser, RoleAdmin}

// IsValidRole returns true if the role is recognised.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents a stored account.
//
// CurrentToken holds the one live session token for the account, nil when
// logged out. It is the revocation anchor: tokens that no longer match it
// are dead regardless of their signature.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"` // never serialised
	Role         Role       `json:"role"`
	CurrentToken *string    `json:"-"` // never serialised
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Identity is the authenticated caller attached to a request context.
// It carries only what handlers need; no credential material.
type Identity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Sentinel errors for auth operations.
var (
	// ErrInvalidCredentials covers both unknown-name and wrong-password so
	// responses cannot be used to probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrNameExists         = errors.New("account name already exists")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenSuperseded    = errors.New("token is no longer the active session")
)

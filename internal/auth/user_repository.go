package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UserRepository defines the interface for account persistence.
//
// GetByIDAndToken and ClearCurrentToken are the session-integrity surface:
// the first implements the current-token cross-check, the second revokes a
// session by its token value.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
	GetByIDAndToken(ctx context.Context, id int64, token string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int, error)
	SetCurrentToken(ctx context.Context, id int64, token *string) error
	ClearCurrentToken(ctx context.Context, token string) error
	TouchLastLogin(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

const userColumns = "id, name, password_hash, role, current_token, last_login, created_at"

// Create inserts a new account. The ID is assigned by the database.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		user.Name, user.PasswordHash, string(user.Role), now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrNameExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	user.ID, _ = result.LastInsertId() //nolint:errcheck // always succeeds on SQLite
	user.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	return nil
}

// GetByID retrieves an account by its ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetByName retrieves an account by its unique name.
func (r *SQLiteUserRepository) GetByName(ctx context.Context, name string) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE name = ?", name)
}

// GetByIDAndToken retrieves an account only if the given token is its
// current session token. ErrUserNotFound here means the token was
// superseded or revoked, not that the account is gone.
func (r *SQLiteUserRepository) GetByIDAndToken(ctx context.Context, id int64, token string) (*User, error) {
	return r.getUser(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? AND current_token = ?", id, token)
}

// List returns all accounts ordered by creation date.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUserFrom(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	if users == nil {
		users = []User{}
	}
	return users, nil
}

// Count returns the total number of accounts.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// SetCurrentToken overwrites the account's live session token. Passing nil
// logs the account out. The single UPDATE is what makes a login atomically
// revoke the previous session; there is only one slot to win.
func (r *SQLiteUserRepository) SetCurrentToken(ctx context.Context, id int64, token *string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET current_token = ? WHERE id = ?", nullFromPtr(token), id)
	if err != nil {
		return fmt.Errorf("setting current token: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearCurrentToken revokes the session identified by the token value.
// Clearing a token that is no longer current affects zero rows, which is
// not an error; logout is idempotent.
func (r *SQLiteUserRepository) ClearCurrentToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET current_token = NULL WHERE current_token = ?", token)
	if err != nil {
		return fmt.Errorf("clearing current token: %w", err)
	}
	return nil
}

// TouchLastLogin stamps the account's last successful login time.
func (r *SQLiteUserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_login = ? WHERE id = ?", now, id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword changes an account's stored credential.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// getUser executes a query and scans a single user result.
func (r *SQLiteUserRepository) getUser(ctx context.Context, query string, args ...any) (*User, error) {
	return scanUserFrom(r.db.QueryRowContext(ctx, query, args...))
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanUserFrom scans a user from any scanner (Row or Rows).
func scanUserFrom(s scanner) (*User, error) {
	var u User
	var role string
	var currentToken, lastLogin sql.NullString
	var createdAt string

	err := s.Scan(&u.ID, &u.Name, &u.PasswordHash, &role,
		&currentToken, &lastLogin, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	if currentToken.Valid {
		u.CurrentToken = &currentToken.String
	}
	if lastLogin.Valid {
		if t, err := time.Parse(time.RFC3339, lastLogin.String); err == nil {
			u.LastLogin = &t
		}
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &u, nil
}

// Helper functions.

func nullFromPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}

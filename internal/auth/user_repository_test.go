package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUserRepository_CreateAndGetByID(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	user := &User{
		Name:         "testuser",
		PasswordHash: hash,
		Role:         RoleUser,
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == 0 {
		t.Fatal("Create() should populate the ID")
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Name != "testuser" {
		t.Errorf("Name = %q, want %q", got.Name, "testuser")
	}
	if got.Role != RoleUser {
		t.Errorf("Role = %q, want %q", got.Role, RoleUser)
	}
	if got.PasswordHash == "" {
		t.Error("PasswordHash should be populated")
	}
	if got.CurrentToken != nil {
		t.Error("new account should have no current token")
	}
	if got.LastLogin != nil {
		t.Error("new account should have no last login")
	}
}

func TestUserRepository_GetByName(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "admin", RoleAdmin)

	got, err := repo.GetByName(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %d, want %d", got.ID, user.ID)
	}

	_, err = repo.GetByName(ctx, "nobody")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByName() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_DuplicateName(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "alice", RoleUser)

	dup := &User{Name: "alice", PasswordHash: "x", Role: RoleUser}
	err := repo.Create(ctx, dup)
	if !errors.Is(err, ErrNameExists) {
		t.Errorf("Create() duplicate error = %v, want ErrNameExists", err)
	}
}

func TestUserRepository_SetAndGetByIDAndToken(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "alice", RoleUser)

	token := "session-token-1"
	if err := repo.SetCurrentToken(ctx, user.ID, &token); err != nil {
		t.Fatalf("SetCurrentToken() error = %v", err)
	}

	got, err := repo.GetByIDAndToken(ctx, user.ID, token)
	if err != nil {
		t.Fatalf("GetByIDAndToken() error = %v", err)
	}
	if got.CurrentToken == nil || *got.CurrentToken != token {
		t.Errorf("CurrentToken = %v, want %q", got.CurrentToken, token)
	}

	// A stale token no longer matches
	_, err = repo.GetByIDAndToken(ctx, user.ID, "session-token-0")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByIDAndToken() stale error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_SetCurrentToken_Overwrites(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "alice", RoleUser)

	first := "token-first"
	second := "token-second"

	if err := repo.SetCurrentToken(ctx, user.ID, &first); err != nil {
		t.Fatalf("SetCurrentToken() error = %v", err)
	}
	if err := repo.SetCurrentToken(ctx, user.ID, &second); err != nil {
		t.Fatalf("SetCurrentToken() error = %v", err)
	}

	// The first token is dead the moment the second is stored
	if _, err := repo.GetByIDAndToken(ctx, user.ID, first); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByIDAndToken() superseded error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByIDAndToken(ctx, user.ID, second); err != nil {
		t.Errorf("GetByIDAndToken() current token error = %v", err)
	}
}

func TestUserRepository_ClearCurrentToken(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "alice", RoleUser)

	token := "session-token-1"
	if err := repo.SetCurrentToken(ctx, user.ID, &token); err != nil {
		t.Fatalf("SetCurrentToken() error = %v", err)
	}

	if err := repo.ClearCurrentToken(ctx, token); err != nil {
		t.Fatalf("ClearCurrentToken() error = %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.CurrentToken != nil {
		t.Errorf("CurrentToken = %v, want nil after clear", got.CurrentToken)
	}

	// Clearing an unknown token is a no-op, not an error
	if err := repo.ClearCurrentToken(ctx, "never-issued"); err != nil {
		t.Errorf("ClearCurrentToken() unknown token error = %v", err)
	}
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "alice", RoleUser)

	before := time.Now().UTC().Add(-time.Minute)
	if err := repo.TouchLastLogin(ctx, user.ID); err != nil {
		t.Fatalf("TouchLastLogin() error = %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.LastLogin == nil {
		t.Fatal("LastLogin should be set")
	}
	if got.LastLogin.Before(before) {
		t.Errorf("LastLogin = %v, want recent", got.LastLogin)
	}

	if err := repo.TouchLastLogin(ctx, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("TouchLastLogin() unknown id error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "alice", RoleUser)

	newHash, _ := HashPassword("new-password")
	if err := repo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PasswordHash != newHash {
		t.Error("PasswordHash was not updated")
	}

	if err := repo.UpdatePassword(ctx, 9999, newHash); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdatePassword() unknown id error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_ListAndCount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// Empty database returns an empty slice, not nil
	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if users == nil {
		t.Error("List() should return empty slice, not nil")
	}

	seedTestUser(t, db, "alice", RoleUser)
	seedTestUser(t, db, "bob", RoleAdmin)

	users, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 {
		t.Errorf("List() returned %d users, want 2", len(users))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

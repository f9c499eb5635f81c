package device

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the device schema and
// seeded lookup tables.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "device-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE device_types (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);
		CREATE TABLE locations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);
		CREATE TABLE device_statuses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);
		CREATE TABLE devices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			type_id INTEGER NOT NULL REFERENCES device_types(id),
			location_id INTEGER NOT NULL REFERENCES locations(id),
			status_id INTEGER NOT NULL REFERENCES device_statuses(id),
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		INSERT INTO device_types (name) VALUES ('sensor'), ('gateway');
		INSERT INTO locations (name) VALUES ('Warehouse'), ('Office');
		INSERT INTO device_statuses (name) VALUES ('active'), ('maintenance');
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying device schema: %v", err)
	}

	return db
}

func validInput() *CreateInput {
	return &CreateInput{
		Name:     "temp-probe-01",
		Type:     "sensor",
		Location: "Warehouse",
		Status:   "active",
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.ID == 0 {
		t.Error("Create() should assign an ID")
	}
	if created.Type != "sensor" {
		t.Errorf("Type = %q, want %q", created.Type, "sensor")
	}
	if created.Location != "Warehouse" {
		t.Errorf("Location = %q, want %q", created.Location, "Warehouse")
	}
	if created.Status != "active" {
		t.Errorf("Status = %q, want %q", created.Status, "active")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "temp-probe-01" {
		t.Errorf("Name = %q, want %q", got.Name, "temp-probe-01")
	}
}

func TestRepository_Create_UnknownLookups(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		wantErr error
	}{
		{"unknown type", func(in *CreateInput) { in.Type = "hologram" }, ErrUnknownType},
		{"unknown location", func(in *CreateInput) { in.Location = "Moon Base" }, ErrUnknownLocation},
		{"unknown status", func(in *CreateInput) { in.Status = "haunted" }, ErrUnknownStatus},
		{"missing name", func(in *CreateInput) { in.Name = "" }, ErrInvalidInput},
		{"missing type", func(in *CreateInput) { in.Type = "" }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)

			_, err := repo.Create(ctx, in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo := NewRepository(testDB(t))

	_, err := repo.Get(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	// Empty inventory returns an empty slice, not nil
	devices, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if devices == nil {
		t.Error("List() should return empty slice, not nil")
	}

	if _, err := repo.Create(ctx, validInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second := validInput()
	second.Name = "gw-01"
	second.Type = "gateway"
	if _, err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	devices, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("List() returned %d devices, want 2", len(devices))
	}
	if devices[1].Type != "gateway" {
		t.Errorf("devices[1].Type = %q, want %q", devices[1].Type, "gateway")
	}
}

func TestRepository_Update(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := repo.Update(ctx, created.ID, &UpdateInput{
		Name:     "temp-probe-01b",
		Location: "Office",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Name != "temp-probe-01b" {
		t.Errorf("Name = %q, want %q", updated.Name, "temp-probe-01b")
	}
	if updated.Location != "Office" {
		t.Errorf("Location = %q, want %q", updated.Location, "Office")
	}
	// Type and status are immutable through update
	if updated.Type != "sensor" {
		t.Errorf("Type = %q, want %q", updated.Type, "sensor")
	}

	t.Run("unknown location", func(t *testing.T) {
		_, err := repo.Update(ctx, created.ID, &UpdateInput{Name: "x", Location: "Moon Base"})
		if !errors.Is(err, ErrUnknownLocation) {
			t.Errorf("Update() error = %v, want ErrUnknownLocation", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := repo.Update(ctx, created.ID, &UpdateInput{Name: "", Location: "Office"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Update() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("missing device", func(t *testing.T) {
		_, err := repo.Update(ctx, 9999, &UpdateInput{Name: "x", Location: "Office"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}
	})
}

func TestRepository_Delete(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

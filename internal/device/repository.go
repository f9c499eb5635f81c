package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository defines the interface for device persistence.
type Repository interface {
	List(ctx context.Context) ([]Device, error)
	Get(ctx context.Context, id int64) (*Device, error)
	Create(ctx context.Context, in *CreateInput) (*Device, error)
	Update(ctx context.Context, id int64, in *UpdateInput) (*Device, error)
	Delete(ctx context.Context, id int64) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed device repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// deviceSelect is the joined projection shared by List and Get.
const deviceSelect = `
	SELECT d.id, d.name, dt.name AS type, l.name AS location, ds.name AS status
	FROM devices d
	JOIN device_types dt ON d.type_id = dt.id
	JOIN locations l ON d.location_id = l.id
	JOIN device_statuses ds ON d.status_id = ds.id`

// List returns all devices with lookup names resolved.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, deviceSelect+" ORDER BY d.id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.Location, &d.Status); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	if devices == nil {
		devices = []Device{}
	}
	return devices, nil
}

// Get returns a single device by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Device, error) {
	var d Device
	err := r.db.QueryRowContext(ctx, deviceSelect+" WHERE d.id = ?", id).
		Scan(&d.ID, &d.Name, &d.Type, &d.Location, &d.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting device: %w", err)
	}
	return &d, nil
}

// Create inserts a new device, resolving type, location and status names
// to their lookup rows. An unknown name is a validation failure.
func (r *SQLiteRepository) Create(ctx context.Context, in *CreateInput) (*Device, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	typeID, err := r.lookupID(ctx, "device_types", in.Type, ErrUnknownType)
	if err != nil {
		return nil, err
	}
	locationID, err := r.lookupID(ctx, "locations", in.Location, ErrUnknownLocation)
	if err != nil {
		return nil, err
	}
	statusID, err := r.lookupID(ctx, "device_statuses", in.Status, ErrUnknownStatus)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (name, type_id, location_id, status_id) VALUES (?, ?, ?, ?)`,
		in.Name, typeID, locationID, statusID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}

	id, _ := result.LastInsertId() //nolint:errcheck // always succeeds on SQLite
	return r.Get(ctx, id)
}

// Update changes a device's name and location. An unknown location name is
// a validation failure; a missing device is ErrNotFound.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, in *UpdateInput) (*Device, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	locationID, err := r.lookupID(ctx, "locations", in.Location, ErrUnknownLocation)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET name = ?, location_id = ?, updated_at = datetime('now') WHERE id = ?`,
		in.Name, locationID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating device: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, id)
}

// Delete removes a device by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// lookupID resolves a lookup-table name to its row ID, returning the given
// sentinel when the name does not exist. The table name is always one of
// the three fixed lookup tables, never caller input.
func (r *SQLiteRepository) lookupID(ctx context.Context, table, name string, notFound error) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE name = ?", table), name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %q", notFound, name)
		}
		return 0, fmt.Errorf("resolving %s: %w", table, err)
	}
	return id, nil
}

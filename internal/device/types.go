package device

import (
	"errors"
	"fmt"
)

// Device is the joined projection of a device row: lookup references are
// resolved to their names.
type Device struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

// CreateInput carries the fields for a new device. All four are required;
// type, location and status must name existing lookup rows.
type CreateInput struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

// Validate checks that all required fields are present.
func (in *CreateInput) Validate() error {
	if in.Name == "" || in.Type == "" || in.Location == "" || in.Status == "" {
		return fmt.Errorf("%w: name, type, location and status are required", ErrInvalidInput)
	}
	return nil
}

// UpdateInput carries the mutable fields of an existing device.
// Type and status are fixed at creation.
type UpdateInput struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Validate checks that all required fields are present.
func (in *UpdateInput) Validate() error {
	if in.Name == "" || in.Location == "" {
		return fmt.Errorf("%w: name and location are required", ErrInvalidInput)
	}
	return nil
}

// Sentinel errors for device operations.
var (
	ErrNotFound        = errors.New("device not found")
	ErrInvalidInput    = errors.New("invalid device input")
	ErrUnknownType     = errors.New("unknown device type")
	ErrUnknownLocation = errors.New("unknown location")
	ErrUnknownStatus   = errors.New("unknown device status")
)

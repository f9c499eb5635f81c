package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/akopytov/inventory-core/internal/device"
)

// handleListDevices returns the full inventory with lookup names resolved.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List(r.Context())
	if err != nil {
		s.logger.Error("listing devices failed", "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	d, err := s.devices.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("getting device failed", "id", id, "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCreateDevice creates a device from a name plus lookup names.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var in device.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	created, err := s.devices.Create(r.Context(), &in)
	if err != nil {
		if isDeviceValidationErr(err) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		s.logger.Error("creating device failed", "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateDevice changes a device's name and location.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	var in device.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	updated, err := s.devices.Update(r.Context(), id, &in)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrNotFound):
			writeNotFound(w, "device not found")
		case isDeviceValidationErr(err):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("updating device failed", "id", id, "error", err)
			writeInternalError(w, "internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteDevice removes a device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	if err := s.devices.Delete(r.Context(), id); err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("deleting device failed", "id", id, "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "device deleted"})
}

// deviceID parses the {id} route parameter, writing a 400 on garbage.
func deviceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid device id")
		return 0, false
	}
	return id, true
}

// isDeviceValidationErr reports whether the error is a client-side input
// problem rather than a store failure.
func isDeviceValidationErr(err error) bool {
	return errors.Is(err, device.ErrInvalidInput) ||
		errors.Is(err, device.ErrUnknownType) ||
		errors.Is(err, device.ErrUnknownLocation) ||
		errors.Is(err, device.ErrUnknownStatus)
}

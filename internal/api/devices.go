package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tillfold/tillfold-core/internal/peripheral"
)

// requestDeviceRequest is the body for POST /devices/request.
type requestDeviceRequest struct {
	Role string `json:"role"`
}

// handleListDevices returns all known peripherals plus the per-role
// connection snapshot the till UI renders.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": s.tracker.Devices(),
		"status":  s.tracker.Snapshot(),
	})
}

// handleRequestDevice asks for a device of the given role to be connected.
// A decline is a normal outcome and reported as granted=false, not an error.
func (s *Server) handleRequestDevice(w http.ResponseWriter, r *http.Request) {
	var req requestDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	err := s.tracker.RequestAccess(r.Context(), peripheral.Role(req.Role))
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]any{"requested": true, "role": req.Role})
	case errors.Is(err, peripheral.ErrAccessDeclined):
		writeJSON(w, http.StatusOK, map[string]any{"requested": true, "granted": false, "role": req.Role})
	case errors.Is(err, peripheral.ErrUnknownRole):
		writeBadRequest(w, "unknown device role")
	case errors.Is(err, peripheral.ErrNoProvider):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "no device transport configured")
	default:
		writeInternalError(w, "device request failed")
	}
}

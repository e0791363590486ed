package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/scmi-pinctrl/internal/pinctrl"
)

// pinListResponse describes the pin domain the platform reported.
type pinListResponse struct {
	Ranges     []pinctrl.Range `json:"ranges"`
	NumPins    int             `json:"num_pins"`
	Claimed    []uint16        `json:"claimed"`
	Properties []string        `json:"properties"`
}

// pinDetailResponse is the full view of one pin.
type pinDetailResponse struct {
	Pin       uint32                `json:"pin"`
	Function  uint16                `json:"function"`
	Direction string                `json:"direction"`
	Config    []pinctrl.ConfigEntry `json:"config"`
}

// setMuxRequest is the body for PUT /pins/{pin}/mux.
type setMuxRequest struct {
	Function uint32 `json:"function"`
}

// setConfigRequest is the body for PUT /pins/{pin}/config.
// Value is optional; absent means the property's documented default.
type setConfigRequest struct {
	Property string  `json:"property"`
	Value    *uint32 `json:"value"`
}

// handleListPins returns the pin ranges, claimed pins, and the property
// names the daemon understands.
func (s *Server) handleListPins(w http.ResponseWriter, _ *http.Request) {
	ranges := s.driver.Ranges()

	numPins := 0
	for _, rng := range ranges {
		numPins += int(rng.NumPins)
	}

	writeJSON(w, http.StatusOK, pinListResponse{
		Ranges:     ranges,
		NumPins:    numPins,
		Claimed:    s.driver.ClaimedPins(),
		Properties: pinctrl.PropertyNames(),
	})
}

// handleGetPin returns a pin's mux function, direction, and configuration.
func (s *Server) handleGetPin(w http.ResponseWriter, r *http.Request) {
	pin, ok := parsePin(w, r)
	if !ok {
		return
	}

	function, err := s.driver.GetMux(r.Context(), pin)
	if err != nil {
		writeDriverError(w, err)
		return
	}

	direction, err := s.driver.Direction(r.Context(), pin)
	if err != nil {
		writeDriverError(w, err)
		return
	}

	config, err := s.driver.GetConfig(r.Context(), pin)
	if err != nil {
		writeDriverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pinDetailResponse{
		Pin:       pin,
		Function:  function,
		Direction: direction.String(),
		Config:    config,
	})
}

// handleSetMux routes a pin to a mux function.
func (s *Server) handleSetMux(w http.ResponseWriter, r *http.Request) {
	pin, ok := parsePin(w, r)
	if !ok {
		return
	}

	var req setMuxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if err := s.driver.SetMux(r.Context(), pin, req.Function); err != nil {
		writeDriverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pin":      pin,
		"function": req.Function,
	})
}

// handleGetConfig returns a pin's configuration entries.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	pin, ok := parsePin(w, r)
	if !ok {
		return
	}

	config, err := s.driver.GetConfig(r.Context(), pin)
	if err != nil {
		writeDriverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pin":    pin,
		"config": config,
	})
}

// handleSetConfig applies one named configuration property to a pin.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	pin, ok := parsePin(w, r)
	if !ok {
		return
	}

	var req setConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	mapping, found := pinctrl.LookupProperty(req.Property)
	if !found {
		writeBadRequest(w, "unknown property: "+req.Property)
		return
	}

	arg := mapping.Default
	if req.Value != nil {
		arg = *req.Value
	}

	if err := s.driver.SetConfig(r.Context(), pin, mapping.Param, arg); err != nil {
		writeDriverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pin":      pin,
		"property": req.Property,
		"arg":      arg,
	})
}

// handleClaimPin borrows a pin as a GPIO, saving its current state.
func (s *Server) handleClaimPin(w http.ResponseWriter, r *http.Request) {
	pin, ok := parsePin(w, r)
	if !ok {
		return
	}

	if err := s.driver.Claim(r.Context(), pin); err != nil {
		writeDriverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pin": pin, "claimed": true})
}

// handleReleasePin restores a borrowed pin to its saved state.
func (s *Server) handleReleasePin(w http.ResponseWriter, r *http.Request) {
	pin, ok := parsePin(w, r)
	if !ok {
		return
	}

	if err := s.driver.Release(r.Context(), pin); err != nil {
		writeDriverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pin": pin, "claimed": false})
}

// handleListStates returns the names of the loaded pin states.
func (s *Server) handleListStates(w http.ResponseWriter, _ *http.Request) {
	names := s.order
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"states": names})
}

// handleApplyState applies one loaded pin state by name.
func (s *Server) handleApplyState(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	node, found := s.states[name]
	if !found {
		writeNotFound(w, "unknown state: "+name)
		return
	}

	if err := s.driver.ApplyNode(r.Context(), node); err != nil {
		writeDriverError(w, err)
		return
	}

	s.logger.Info("pin state applied", "state", name)
	writeJSON(w, http.StatusOK, map[string]any{"state": name, "applied": true})
}

// parsePin extracts and validates the {pin} URL parameter. On failure it
// writes a 400 response and returns false.
func parsePin(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	raw := chi.URLParam(r, "pin")
	pin, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeBadRequest(w, "invalid pin number: "+raw)
		return 0, false
	}
	return uint32(pin), true
}

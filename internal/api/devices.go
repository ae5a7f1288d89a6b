package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/units"
)

// batteryPayload carries battery parameters in requests and responses.
type batteryPayload struct {
	CapacityWh        float64 `json:"capacity_wh"`
	CurrentChargeWh   float64 `json:"current_charge_wh"`
	MaxChargeRateW    float64 `json:"max_charge_rate_w"`
	MaxDischargeRateW float64 `json:"max_discharge_rate_w"`
	Efficiency        float64 `json:"efficiency"`
}

// constantActionPayload carries a fixed run: duration at power inside
// the [earliest_start, latest_end] window.
type constantActionPayload struct {
	EarliestStart   time.Time `json:"earliest_start"`
	LatestEnd       time.Time `json:"latest_end"`
	DurationSeconds int64     `json:"duration_seconds"`
	PowerW          float64   `json:"power_w"`
}

// variableActionPayload carries an energy budget consumed at a free
// rate inside the [start, end] window.
type variableActionPayload struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	TotalEnergyWh float64   `json:"total_energy_wh"`
	MaxPowerW     float64   `json:"max_power_w"`
}

// generatorPayload carries generator parameters.
type generatorPayload struct {
	MaxPowerW float64 `json:"max_power_w"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// createDeviceRequest is kind-discriminated: exactly the payload that
// matches kind must be present.
type createDeviceRequest struct {
	Name           string                 `json:"name"`
	Kind           device.Kind            `json:"kind"`
	Battery        *batteryPayload        `json:"battery,omitempty"`
	ConstantAction *constantActionPayload `json:"constant_action,omitempty"`
	VariableAction *variableActionPayload `json:"variable_action,omitempty"`
	Generator      *generatorPayload      `json:"generator,omitempty"`
}

// deviceResponse mirrors createDeviceRequest with identity attached.
type deviceResponse struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Kind      device.Kind `json:"kind"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	Battery        *batteryPayload        `json:"battery,omitempty"`
	ConstantAction *constantActionPayload `json:"constant_action,omitempty"`
	VariableAction *variableActionPayload `json:"variable_action,omitempty"`
	Generator      *generatorPayload      `json:"generator,omitempty"`
}

// handleListDevices returns the identity of every registered device.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.manager.Devices().ListDevices(r.Context())
	if err != nil {
		s.logger.Error("failed to list devices", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleCreateDevice registers a device of the requested kind in the
// durable store and installs its interactor and controller.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if !req.Kind.Valid() {
		writeBadRequest(w, "unknown device kind: "+string(req.Kind))
		return
	}

	var (
		id  int64
		err error
	)
	ctx := r.Context()

	switch req.Kind {
	case device.KindBattery:
		if req.Battery == nil {
			writeBadRequest(w, "battery payload is required")
			return
		}
		p := req.Battery
		b := &device.Battery{
			Capacity:         units.WattHour(p.CapacityWh),
			CurrentCharge:    units.WattHour(p.CurrentChargeWh),
			MaxChargeRate:    units.Watt(p.MaxChargeRateW),
			MaxDischargeRate: units.Watt(p.MaxDischargeRateW),
			Efficiency:       p.Efficiency,
		}
		b.Name = req.Name
		id, err = s.manager.AddBattery(ctx, b)

	case device.KindConstantAction:
		if req.ConstantAction == nil {
			writeBadRequest(w, "constant_action payload is required")
			return
		}
		p := req.ConstantAction
		d := &device.ConstantActionDevice{
			Action: device.ConstantAction{
				EarliestStart: p.EarliestStart,
				LatestEnd:     p.LatestEnd,
				Duration:      time.Duration(p.DurationSeconds) * time.Second,
				Power:         units.Watt(p.PowerW),
			},
		}
		d.Name = req.Name
		id, err = s.manager.AddConstantActionDevice(ctx, d)

	case device.KindVariableAction:
		if req.VariableAction == nil {
			writeBadRequest(w, "variable_action payload is required")
			return
		}
		p := req.VariableAction
		d := &device.VariableActionDevice{
			Action: device.VariableAction{
				Start:       p.Start,
				End:         p.End,
				TotalEnergy: units.WattHour(p.TotalEnergyWh),
				MaxPower:    units.Watt(p.MaxPowerW),
			},
		}
		d.Name = req.Name
		id, err = s.manager.AddVariableActionDevice(ctx, d)

	case device.KindGenerator:
		if req.Generator == nil {
			writeBadRequest(w, "generator payload is required")
			return
		}
		p := req.Generator
		g := &device.Generator{
			MaxPower:  units.Watt(p.MaxPowerW),
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		}
		g.Name = req.Name
		id, err = s.manager.AddGenerator(ctx, g)
	}

	if err != nil {
		if errors.Is(err, device.ErrInvalidDevice) ||
			errors.Is(err, device.ErrInvalidName) ||
			errors.Is(err, device.ErrInvalidWindow) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("failed to create device", "kind", req.Kind, "error", err)
		writeInternalError(w, "failed to create device")
		return
	}

	s.writeDevice(w, r, http.StatusCreated, id)
}

// handleGetDevice returns the full per-kind record for one device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDeviceID(w, r)
	if !ok {
		return
	}
	s.writeDevice(w, r, http.StatusOK, id)
}

// handleDeleteDevice removes a device from the durable store and both
// in-memory registries. Deleting an unknown device is a no-op.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDeviceID(w, r)
	if !ok {
		return
	}
	if err := s.manager.RemoveDevice(r.Context(), id); err != nil {
		s.logger.Error("failed to remove device", "device_id", id, "error", err)
		writeInternalError(w, "failed to remove device")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetDeviceState returns the live controller state for one device.
func (s *Server) handleGetDeviceState(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDeviceID(w, r)
	if !ok {
		return
	}
	states, err := s.orch.States(r.Context())
	if err != nil {
		s.logger.Error("failed to collect device states", "error", err)
		writeInternalError(w, "failed to collect device states")
		return
	}
	state, found := states[id]
	if !found {
		writeNotFound(w, "device not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"state":     state,
	})
}

// handleStopAction aborts a running constant action. The device keeps
// its configured action and becomes plannable again on the next cycle.
func (s *Server) handleStopAction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDeviceID(w, r)
	if !ok {
		return
	}
	sim, found := s.manager.Interactors().ConstantAction(id)
	if !found {
		writeNotFound(w, "constant action device not found")
		return
	}
	sim.Stop()
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"state":     string(sim.State()),
	})
}

// overrideRequest is the body for PUT /devices/{id}/override.
type overrideRequest struct {
	PowerW float64 `json:"power_w"`
}

// handleSetOverride pins a generator's output to a fixed power,
// replacing the solar model until the override is cleared.
func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDeviceID(w, r)
	if !ok {
		return
	}
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	sim, found := s.manager.Interactors().Generator(id)
	if !found {
		writeNotFound(w, "generator not found")
		return
	}
	if err := sim.SetOverride(r.Context(), s.manager.Devices(), units.Watt(req.PowerW)); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":  id,
		"override_w": req.PowerW,
	})
}

// handleClearOverride returns a generator to its solar model.
func (s *Server) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDeviceID(w, r)
	if !ok {
		return
	}
	sim, found := s.manager.Interactors().Generator(id)
	if !found {
		writeNotFound(w, "generator not found")
		return
	}
	sim.ClearOverride()
	w.WriteHeader(http.StatusNoContent)
}

// writeDevice fetches the per-kind record for id and writes it as a
// deviceResponse with the given status.
func (s *Server) writeDevice(w http.ResponseWriter, r *http.Request, status int, id int64) {
	ctx := r.Context()
	store := s.manager.Devices()

	d, err := store.GetDevice(ctx, id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("failed to load device", "device_id", id, "error", err)
		writeInternalError(w, "failed to load device")
		return
	}

	resp := deviceResponse{
		ID:        d.ID,
		Name:      d.Name,
		Kind:      d.Kind,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	switch d.Kind {
	case device.KindBattery:
		b, err := store.GetBattery(ctx, id)
		if err != nil {
			writeInternalError(w, "failed to load device")
			return
		}
		resp.Battery = &batteryPayload{
			CapacityWh:        float64(b.Capacity),
			CurrentChargeWh:   float64(b.CurrentCharge),
			MaxChargeRateW:    float64(b.MaxChargeRate),
			MaxDischargeRateW: float64(b.MaxDischargeRate),
			Efficiency:        b.Efficiency,
		}
	case device.KindConstantAction:
		ca, err := store.GetConstantActionDevice(ctx, id)
		if err != nil {
			writeInternalError(w, "failed to load device")
			return
		}
		resp.ConstantAction = &constantActionPayload{
			EarliestStart:   ca.Action.EarliestStart,
			LatestEnd:       ca.Action.LatestEnd,
			DurationSeconds: int64(ca.Action.Duration / time.Second),
			PowerW:          float64(ca.Action.Power),
		}
	case device.KindVariableAction:
		va, err := store.GetVariableActionDevice(ctx, id)
		if err != nil {
			writeInternalError(w, "failed to load device")
			return
		}
		resp.VariableAction = &variableActionPayload{
			Start:         va.Action.Start,
			End:           va.Action.End,
			TotalEnergyWh: float64(va.Action.TotalEnergy),
			MaxPowerW:     float64(va.Action.MaxPower),
		}
	case device.KindGenerator:
		g, err := store.GetGenerator(ctx, id)
		if err != nil {
			writeInternalError(w, "failed to load device")
			return
		}
		resp.Generator = &generatorPayload{
			MaxPowerW: float64(g.MaxPower),
			Latitude:  g.Latitude,
			Longitude: g.Longitude,
		}
	}

	writeJSON(w, status, resp)
}

// parseDeviceID parses the {id} route parameter, writing a 400 on failure.
func parseDeviceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid device id")
		return 0, false
	}
	return id, true
}

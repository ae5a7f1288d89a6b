package api

import (
	"net/http"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/optimizer"
)

// handleRunCycle triggers a planning cycle immediately, outside the
// regular replanning interval.
func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	cost, err := s.orch.Run(r.Context(), now)
	if err != nil {
		s.logger.Error("planning cycle failed", "error", err)
		writeInternalError(w, "planning cycle failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"planned_at":         now.UTC(),
		"expected_cost_euro": float64(cost),
	})
}

// seriesPayload renders an assignment profile.
type seriesPayload struct {
	Start       time.Time `json:"start"`
	StepSeconds int64     `json:"step_seconds"`
	ValuesW     []float64 `json:"values_w"`
}

func renderSeries(s *optimizer.Series) *seriesPayload {
	values := make([]float64, len(s.Values))
	for i, v := range s.Values {
		values[i] = float64(v)
	}
	return &seriesPayload{
		Start:       s.Start,
		StepSeconds: int64(s.Step / time.Second),
		ValuesW:     values,
	}
}

// assignmentPayload is one device's slice of the active schedule.
type assignmentPayload struct {
	DeviceID int64       `json:"device_id"`
	Kind     device.Kind `json:"kind"`

	Profile         *seriesPayload `json:"profile,omitempty"`
	Start           *time.Time     `json:"start,omitempty"`
	DurationSeconds int64          `json:"duration_seconds,omitempty"`
	PowerW          float64        `json:"power_w,omitempty"`
}

// handleGetSchedule returns the currently active schedule: one entry
// per device that received an assignment in the last planning cycle.
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := s.orch.Schedule()
	if schedule == nil {
		writeNotFound(w, "no planning cycle has run yet")
		return
	}

	devices, err := s.manager.Devices().ListDevices(r.Context())
	if err != nil {
		s.logger.Error("failed to list devices", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	assignments := make([]assignmentPayload, 0, len(devices))
	for _, d := range devices {
		switch d.Kind {
		case device.KindBattery:
			if a := schedule.Battery(d.ID); a != nil {
				assignments = append(assignments, assignmentPayload{
					DeviceID: d.ID,
					Kind:     d.Kind,
					Profile:  renderSeries(a.Profile),
				})
			}
		case device.KindConstantAction:
			if a := schedule.ConstantAction(d.ID); a != nil {
				start := a.Start
				assignments = append(assignments, assignmentPayload{
					DeviceID:        d.ID,
					Kind:            d.Kind,
					Start:           &start,
					DurationSeconds: int64(a.Duration / time.Second),
					PowerW:          float64(a.Power),
				})
			}
		case device.KindVariableAction:
			if a := schedule.VariableAction(d.ID); a != nil {
				assignments = append(assignments, assignmentPayload{
					DeviceID: d.ID,
					Kind:     d.Kind,
					Profile:  renderSeries(a.Profile),
				})
			}
		case device.KindGenerator:
			// Generators are passive; the schedule never assigns them.
		}
	}

	plannedAt, cost := s.orch.LastRun()
	writeJSON(w, http.StatusOK, map[string]any{
		"planned_at":         plannedAt.UTC(),
		"expected_cost_euro": float64(cost),
		"assignments":        assignments,
	})
}

// handleGetStates returns the live controller state of every device.
func (s *Server) handleGetStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.orch.States(r.Context())
	if err != nil {
		s.logger.Error("failed to collect device states", "error", err)
		writeInternalError(w, "failed to collect device states")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"states": states,
		"count":  len(states),
	})
}

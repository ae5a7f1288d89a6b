package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/orchestrator"
	"github.com/voltmesh/voltmesh-core/internal/units"
)

// Telemetry publishes orchestration telemetry over MQTT: retained
// per-device state and planning cycle results.
type Telemetry struct {
	client *Client
}

var _ orchestrator.Telemetry = (*Telemetry)(nil)

// NewTelemetry creates a telemetry sink over the given client.
func NewTelemetry(client *Client) *Telemetry {
	return &Telemetry{client: client}
}

// RecordDeviceState publishes the device state as retained JSON.
func (t *Telemetry) RecordDeviceState(_ context.Context, deviceID int64, state map[string]any, at time.Time) {
	payload, err := json.Marshal(map[string]any{
		"state":     state,
		"timestamp": at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := t.client.PublishRetained(Topics{}.DeviceState(deviceID), payload); err != nil {
		t.logWarn("publishing device state failed", "device", deviceID, "error", err)
	}
}

// RecordCycle publishes the planning cycle result.
func (t *Telemetry) RecordCycle(_ context.Context, cost units.Euro, devices int, at time.Time) {
	payload, err := json.Marshal(map[string]any{
		"expected_cost": float64(cost),
		"devices":       devices,
		"timestamp":     at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := t.client.Publish(Topics{}.CycleResult(), payload, byte(t.client.cfg.QoS), false); err != nil {
		t.logWarn("publishing cycle result failed", "error", err)
	}
}

func (t *Telemetry) logWarn(msg string, args ...any) {
	t.client.loggerMu.RLock()
	logger := t.client.logger
	t.client.loggerMu.RUnlock()
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

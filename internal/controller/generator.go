package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/optimizer"
)

// Generator is the controller facade for one production device.
// Generators are passive: they contribute a prognosis and are never
// assigned anything.
type Generator struct {
	deviceID int64
}

// NewGenerator creates a generator controller for the given device id.
func NewGenerator(deviceID int64) *Generator {
	return &Generator{deviceID: deviceID}
}

// DeviceID returns the id of the controlled device.
func (c *Generator) DeviceID() int64 { return c.deviceID }

// UseSchedule is a no-op: schedules carry no generator assignments.
func (c *Generator) UseSchedule(_ context.Context, _ *optimizer.Schedule, _ Services) {}

// AddToSnapshot merges the generator's production prognosis over the
// snapshot horizon into the summed generation series.
func (c *Generator) AddToSnapshot(ctx context.Context, snap *optimizer.Snapshot, now time.Time, svc Services) error {
	sim, ok := svc.Interactors().Generator(c.deviceID)
	if !ok {
		return fmt.Errorf("generator controller %d: no interactor", c.deviceID)
	}
	end := now.Add(snap.Horizon)
	values, err := sim.Prognosis(ctx, svc.Devices(), now, end, optimizer.ProfileStep)
	if err != nil {
		return fmt.Errorf("generator controller %d: %w", c.deviceID, err)
	}
	return snap.AddGeneration(optimizer.NewSeries(now, optimizer.ProfileStep, values))
}

// UpdateDevice advances the interactor's simulated production to now.
func (c *Generator) UpdateDevice(ctx context.Context, now time.Time, svc Services) error {
	sim, ok := svc.Interactors().Generator(c.deviceID)
	if !ok {
		return nil
	}
	return sim.Update(ctx, svc.Devices(), now)
}

// State reports the current production level and configured maximum.
func (c *Generator) State(ctx context.Context, svc Services) (map[string]any, error) {
	rec, err := svc.Devices().GetGenerator(ctx, c.deviceID)
	if err != nil {
		return nil, fmt.Errorf("generator controller %d: %w", c.deviceID, err)
	}
	sim, ok := svc.Interactors().Generator(c.deviceID)
	if !ok {
		return nil, fmt.Errorf("generator controller %d: no interactor", c.deviceID)
	}
	return map[string]any{
		"id":        c.deviceID,
		"name":      rec.Name,
		"kind":      string(rec.Kind),
		"current":   float64(sim.Current()),
		"max_power": float64(rec.MaxPower),
	}, nil
}

package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/optimizer"
)

// VariableAction is the controller facade for one variable-rate load.
type VariableAction struct {
	deviceID int64
	schedule *optimizer.Schedule
}

// NewVariableAction creates a variable-action controller for the given
// device id.
func NewVariableAction(deviceID int64) *VariableAction {
	return &VariableAction{deviceID: deviceID}
}

// DeviceID returns the id of the controlled device.
func (c *VariableAction) DeviceID() int64 { return c.deviceID }

// UseSchedule stores the latest distributed schedule. Variable actions
// can be re-rated at any time, so the schedule is always accepted.
func (c *VariableAction) UseSchedule(_ context.Context, schedule *optimizer.Schedule, _ Services) {
	c.schedule = schedule
}

// AddToSnapshot contributes the remaining energy demand with the window
// start clamped to now. A satisfied action contributes nothing: its
// energy budget is spent and only deinstallation renews it.
func (c *VariableAction) AddToSnapshot(ctx context.Context, snap *optimizer.Snapshot, now time.Time, svc Services) error {
	rec, err := svc.Devices().GetVariableActionDevice(ctx, c.deviceID)
	if err != nil {
		return fmt.Errorf("variable action controller %d: %w", c.deviceID, err)
	}
	sim, ok := svc.Interactors().VariableAction(c.deviceID)
	if !ok {
		return fmt.Errorf("variable action controller %d: no interactor", c.deviceID)
	}
	done, err := sim.Satisfied(ctx, svc.Devices())
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	start := rec.Action.Start
	if start.Before(now) {
		start = now
	}
	if !start.Before(rec.Action.End) {
		return nil
	}
	remaining := rec.Action.TotalEnergy - sim.TotalConsumed()
	if remaining <= 0 {
		return nil
	}
	snap.AddVariableAction(optimizer.VariableActionDemand{
		DeviceID:    c.deviceID,
		Start:       start,
		End:         rec.Action.End,
		TotalEnergy: remaining,
		MaxPower:    rec.Action.MaxPower,
	})
	return nil
}

// UpdateDevice pushes the assigned consumption rate at now into the
// interactor. Unlike batteries, a query outside the assignment window
// forces the rate to zero: an unplanned load left running would consume
// energy no schedule accounted for.
func (c *VariableAction) UpdateDevice(ctx context.Context, now time.Time, svc Services) error {
	sim, ok := svc.Interactors().VariableAction(c.deviceID)
	if !ok {
		return nil
	}
	if c.schedule == nil {
		return sim.SetRate(ctx, svc.Devices(), 0)
	}
	assigned := c.schedule.VariableAction(c.deviceID)
	if assigned == nil {
		return sim.SetRate(ctx, svc.Devices(), 0)
	}
	rate, err := assigned.ConsumptionAt(now)
	if errors.Is(err, optimizer.ErrOutOfRange) {
		return sim.SetRate(ctx, svc.Devices(), 0)
	}
	if err != nil {
		return fmt.Errorf("variable action controller %d: %w", c.deviceID, err)
	}
	return sim.SetRate(ctx, svc.Devices(), rate)
}

// State reports consumption progress against the configured budget.
func (c *VariableAction) State(ctx context.Context, svc Services) (map[string]any, error) {
	rec, err := svc.Devices().GetVariableActionDevice(ctx, c.deviceID)
	if err != nil {
		return nil, fmt.Errorf("variable action controller %d: %w", c.deviceID, err)
	}
	sim, ok := svc.Interactors().VariableAction(c.deviceID)
	if !ok {
		return nil, fmt.Errorf("variable action controller %d: no interactor", c.deviceID)
	}
	done, err := sim.Satisfied(ctx, svc.Devices())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":             c.deviceID,
		"name":           rec.Name,
		"kind":           string(rec.Kind),
		"rate":           float64(sim.Rate()),
		"total_consumed": float64(sim.TotalConsumed()),
		"total_energy":   float64(rec.Action.TotalEnergy),
		"satisfied":      done,
		"window": map[string]any{
			"start": rec.Action.Start,
			"end":   rec.Action.End,
		},
	}, nil
}

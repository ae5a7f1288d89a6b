package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/interactor"
	"github.com/voltmesh/voltmesh-core/internal/optimizer"
)

// ConstantAction is the controller facade for one fixed-duration
// appliance action.
type ConstantAction struct {
	deviceID int64
	schedule *optimizer.Schedule
}

// NewConstantAction creates a constant-action controller for the given
// device id.
func NewConstantAction(deviceID int64) *ConstantAction {
	return &ConstantAction{deviceID: deviceID}
}

// DeviceID returns the id of the controlled device.
func (c *ConstantAction) DeviceID() int64 { return c.deviceID }

// controllable reports whether the interactor is in a state that may
// accept a new schedule (IDLE or COMPLETED). A missing interactor is
// treated as not controllable.
func (c *ConstantAction) controllable(svc Services) bool {
	sim, ok := svc.Interactors().ConstantAction(c.deviceID)
	return ok && sim.Controllable()
}

// UseSchedule stores the schedule only while the action is
// controllable. While RUNNING the new schedule is rejected and the
// prior one retained, so an in-progress action is never rescheduled
// under itself.
func (c *ConstantAction) UseSchedule(_ context.Context, schedule *optimizer.Schedule, svc Services) {
	if c.controllable(svc) {
		c.schedule = schedule
	}
}

// AddToSnapshot contributes the action's demand. A controllable action
// is offered with its window clamped to start no earlier than now, and
// omitted once the clamped window can no longer hold the configured
// duration. A running action instead injects its assignment from the
// previous schedule as a fixed past commitment the optimizer must plan
// around.
func (c *ConstantAction) AddToSnapshot(ctx context.Context, snap *optimizer.Snapshot, now time.Time, svc Services) error {
	rec, err := svc.Devices().GetConstantActionDevice(ctx, c.deviceID)
	if err != nil {
		return fmt.Errorf("constant action controller %d: %w", c.deviceID, err)
	}

	if !c.controllable(svc) {
		if c.schedule == nil {
			return nil
		}
		if assigned := c.schedule.ConstantAction(c.deviceID); assigned != nil {
			snap.AddPastConstantAction(assigned)
		}
		return nil
	}

	start := rec.Action.EarliestStart
	if start.Before(now) {
		start = now
	}
	// Omitting a device whose clamped window has emptied is expected
	// steady state, not an error.
	if start.Add(rec.Action.Duration).After(rec.Action.LatestEnd) {
		return nil
	}
	snap.AddConstantAction(optimizer.ConstantActionDemand{
		DeviceID:      c.deviceID,
		EarliestStart: start,
		LatestEnd:     rec.Action.LatestEnd,
		Duration:      rec.Action.Duration,
		Power:         rec.Action.Power,
	})
	return nil
}

// UpdateDevice starts the action once the assigned start time has been
// reached. Anything other than an idle interactor with a due
// assignment is a no-op.
func (c *ConstantAction) UpdateDevice(_ context.Context, now time.Time, svc Services) error {
	sim, ok := svc.Interactors().ConstantAction(c.deviceID)
	if !ok || sim.State() != interactor.ActionIdle || c.schedule == nil {
		return nil
	}
	assigned := c.schedule.ConstantAction(c.deviceID)
	if assigned == nil {
		return nil
	}
	if !now.Before(assigned.StartTime()) {
		sim.Start(now)
	}
	return nil
}

// State reports the action's lifecycle state and configured window.
func (c *ConstantAction) State(ctx context.Context, svc Services) (map[string]any, error) {
	rec, err := svc.Devices().GetConstantActionDevice(ctx, c.deviceID)
	if err != nil {
		return nil, fmt.Errorf("constant action controller %d: %w", c.deviceID, err)
	}
	sim, ok := svc.Interactors().ConstantAction(c.deviceID)
	if !ok {
		return nil, fmt.Errorf("constant action controller %d: no interactor", c.deviceID)
	}
	power, err := sim.Current(ctx, svc.Devices())
	if err != nil {
		return nil, err
	}
	state := map[string]any{
		"id":       c.deviceID,
		"name":     rec.Name,
		"kind":     string(rec.Kind),
		"state":    string(sim.State()),
		"power":    float64(power),
		"duration": rec.Action.Duration.String(),
		"window": map[string]any{
			"earliest_start": rec.Action.EarliestStart,
			"latest_end":     rec.Action.LatestEnd,
		},
	}
	if !sim.StartTime().IsZero() {
		state["started_at"] = sim.StartTime()
	}
	return state, nil
}

package interactor

import (
	"context"
	"fmt"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/units"
)

// ActionState is the lifecycle state of a constant action.
type ActionState string

const (
	// ActionIdle means the action has not started. Controllable.
	ActionIdle ActionState = "idle"
	// ActionRunning means the action is in progress. Not controllable:
	// a running action must not be rescheduled.
	ActionRunning ActionState = "running"
	// ActionCompleted means the action has finished. Controllable.
	ActionCompleted ActionState = "completed"
)

// ConstantAction simulates a fixed-duration appliance action via the
// state machine IDLE -> RUNNING -> COMPLETED. Starting is the only
// externally commanded transition; completion happens in Update once
// the configured duration has elapsed.
type ConstantAction struct {
	deviceID  int64
	state     ActionState
	startTime time.Time
}

// NewConstantAction creates an idle constant-action interactor.
func NewConstantAction(deviceID int64) *ConstantAction {
	return &ConstantAction{deviceID: deviceID, state: ActionIdle}
}

// DeviceID returns the id of the controlled device.
func (c *ConstantAction) DeviceID() int64 { return c.deviceID }

// State returns the current action state.
func (c *ConstantAction) State() ActionState { return c.state }

// StartTime returns when the action started. Only meaningful while
// RUNNING or COMPLETED.
func (c *ConstantAction) StartTime() time.Time { return c.startTime }

// Start transitions IDLE -> RUNNING recording now as the start time.
// Starting while RUNNING or COMPLETED is a no-op.
func (c *ConstantAction) Start(now time.Time) {
	if c.state == ActionIdle {
		c.state = ActionRunning
		c.startTime = now
	}
}

// Stop force-resets the action to IDLE. Nothing in the orchestration
// slice triggers this automatically; it exists as a manual override.
func (c *ConstantAction) Stop() {
	c.state = ActionIdle
	c.startTime = time.Time{}
}

// Update transitions RUNNING -> COMPLETED once the elapsed time since
// start has reached the configured duration, never earlier.
func (c *ConstantAction) Update(ctx context.Context, devices device.Reader, now time.Time) error {
	if c.state != ActionRunning {
		return nil
	}
	rec, err := devices.GetConstantActionDevice(ctx, c.deviceID)
	if err != nil {
		return fmt.Errorf("constant action interactor %d: %w", c.deviceID, err)
	}
	if now.Sub(c.startTime) >= rec.Action.Duration {
		c.state = ActionCompleted
	}
	return nil
}

// Current returns the configured power draw while RUNNING, else zero.
func (c *ConstantAction) Current(ctx context.Context, devices device.Reader) (units.Watt, error) {
	if c.state != ActionRunning {
		return 0, nil
	}
	rec, err := devices.GetConstantActionDevice(ctx, c.deviceID)
	if err != nil {
		return 0, fmt.Errorf("constant action interactor %d: %w", c.deviceID, err)
	}
	return rec.Action.Power, nil
}

// Controllable reports whether the action may accept a new schedule:
// true in IDLE and COMPLETED, false while RUNNING.
func (c *ConstantAction) Controllable() bool {
	return c.state == ActionIdle || c.state == ActionCompleted
}

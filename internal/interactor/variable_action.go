package interactor

import (
	"context"
	"fmt"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/units"
)

// VariableAction simulates a variable-rate load accumulating energy
// toward a configured total, such as an EV charging session. Once the
// total is reached the rate is forced to zero so the load cannot
// overshoot its budget.
type VariableAction struct {
	deviceID      int64
	rate          units.Watt
	totalConsumed units.WattHour
	lastUpdate    time.Time
}

// NewVariableAction creates a variable-action interactor. now anchors
// the first integration interval.
func NewVariableAction(deviceID int64, now time.Time) *VariableAction {
	return &VariableAction{deviceID: deviceID, lastUpdate: now}
}

// DeviceID returns the id of the controlled device.
func (v *VariableAction) DeviceID() int64 { return v.deviceID }

// Rate returns the currently commanded consumption rate.
func (v *VariableAction) Rate() units.Watt { return v.rate }

// TotalConsumed returns the energy accumulated so far.
func (v *VariableAction) TotalConsumed() units.WattHour { return v.totalConsumed }

// SetRate commands a consumption rate, clamped into [0, max power].
func (v *VariableAction) SetRate(ctx context.Context, devices device.Reader, rate units.Watt) error {
	rec, err := devices.GetVariableActionDevice(ctx, v.deviceID)
	if err != nil {
		return fmt.Errorf("variable action interactor %d: %w", v.deviceID, err)
	}
	v.rate = units.ClampWatt(rate, 0, rec.Action.MaxPower)
	return nil
}

// Update integrates the commanded rate into the accumulated total. Once
// the total reaches the configured energy budget the rate is forced to
// zero and stays zero regardless of subsequent SetRate calls between
// updates; the overshoot of the final step is bounded by one
// integration interval.
func (v *VariableAction) Update(ctx context.Context, devices device.Reader, now time.Time) error {
	elapsed := now.Sub(v.lastUpdate)
	v.lastUpdate = now

	if v.rate == 0 {
		return nil
	}
	rec, err := devices.GetVariableActionDevice(ctx, v.deviceID)
	if err != nil {
		return fmt.Errorf("variable action interactor %d: %w", v.deviceID, err)
	}
	if v.totalConsumed >= rec.Action.TotalEnergy {
		v.rate = 0
		return nil
	}

	v.totalConsumed += v.rate.Energy(elapsed)
	if v.totalConsumed >= rec.Action.TotalEnergy {
		v.rate = 0
	}
	return nil
}

// Satisfied reports whether the accumulated energy has reached the
// configured total.
func (v *VariableAction) Satisfied(ctx context.Context, devices device.Reader) (bool, error) {
	rec, err := devices.GetVariableActionDevice(ctx, v.deviceID)
	if err != nil {
		return false, fmt.Errorf("variable action interactor %d: %w", v.deviceID, err)
	}
	return v.totalConsumed >= rec.Action.TotalEnergy, nil
}

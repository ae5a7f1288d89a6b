package interactor

import (
	"context"
	"fmt"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/units"
)

// rateEpsilon is the magnitude below which a battery rate is treated as
// zero and integration is skipped.
const rateEpsilon = units.Watt(1e-9)

// Battery simulates a storage device. It owns the live charge level and
// the currently commanded rate; the durable record only sees the charge
// on periodic write-back.
type Battery struct {
	deviceID   int64
	charge     units.WattHour
	rate       units.Watt
	lastUpdate time.Time
}

// NewBattery creates a battery interactor seeded with the persisted
// charge level. now anchors the first integration interval.
func NewBattery(deviceID int64, initialCharge units.WattHour, now time.Time) *Battery {
	return &Battery{
		deviceID:   deviceID,
		charge:     initialCharge,
		lastUpdate: now,
	}
}

// DeviceID returns the id of the controlled device.
func (b *Battery) DeviceID() int64 { return b.deviceID }

// Charge returns the current simulated charge level.
func (b *Battery) Charge() units.WattHour { return b.charge }

// Rate returns the currently commanded rate (positive = charging).
func (b *Battery) Rate() units.Watt { return b.rate }

// SetRate commands a charge (positive) or discharge (negative) rate.
// The rate is clamped to the device's configured limits and stored
// without altering the charge; energy only moves in Update.
func (b *Battery) SetRate(ctx context.Context, devices device.Reader, rate units.Watt) error {
	rec, err := devices.GetBattery(ctx, b.deviceID)
	if err != nil {
		return fmt.Errorf("battery interactor %d: %w", b.deviceID, err)
	}
	if rate > 0 {
		b.rate = min(rate, rec.MaxChargeRate)
	} else {
		b.rate = max(rate, -rec.MaxDischargeRate)
	}
	return nil
}

// Update integrates the commanded rate over the time elapsed since the
// last update and clamps the resulting charge into [0, capacity]. The
// update time is recorded even when the rate is below epsilon, so an
// idle period never leaks into the next integration interval.
func (b *Battery) Update(ctx context.Context, devices device.Reader, now time.Time) error {
	elapsed := now.Sub(b.lastUpdate)
	b.lastUpdate = now

	if b.rate > -rateEpsilon && b.rate < rateEpsilon {
		return nil
	}

	rec, err := devices.GetBattery(ctx, b.deviceID)
	if err != nil {
		return fmt.Errorf("battery interactor %d: %w", b.deviceID, err)
	}
	b.charge = units.ClampWattHour(b.charge+b.rate.Energy(elapsed), 0, rec.Capacity)
	return nil
}

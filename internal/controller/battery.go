package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/optimizer"
)

// Battery is the controller facade for one battery device.
type Battery struct {
	deviceID int64
	schedule *optimizer.Schedule
}

// NewBattery creates a battery controller for the given device id.
func NewBattery(deviceID int64) *Battery {
	return &Battery{deviceID: deviceID}
}

// DeviceID returns the id of the controlled device.
func (c *Battery) DeviceID() int64 { return c.deviceID }

// UseSchedule stores the latest distributed schedule. Batteries are
// always controllable.
func (c *Battery) UseSchedule(_ context.Context, schedule *optimizer.Schedule, _ Services) {
	c.schedule = schedule
}

// AddToSnapshot emits the battery's demand descriptor, reading the live
// charge from the interactor rather than the possibly stale durable
// record.
func (c *Battery) AddToSnapshot(ctx context.Context, snap *optimizer.Snapshot, _ time.Time, svc Services) error {
	rec, err := svc.Devices().GetBattery(ctx, c.deviceID)
	if err != nil {
		return fmt.Errorf("battery controller %d: %w", c.deviceID, err)
	}
	sim, ok := svc.Interactors().Battery(c.deviceID)
	if !ok {
		return fmt.Errorf("battery controller %d: no interactor", c.deviceID)
	}
	snap.AddBattery(optimizer.BatteryDemand{
		DeviceID:         c.deviceID,
		Capacity:         rec.Capacity,
		MaxChargeRate:    rec.MaxChargeRate,
		MaxDischargeRate: rec.MaxDischargeRate,
		InitialCharge:    sim.Charge(),
	})
	return nil
}

// UpdateDevice pushes the assigned rate at now into the interactor. A
// query outside the assignment window holds the last commanded rate:
// economic battery dispatch may legitimately idle, so no reset to zero.
func (c *Battery) UpdateDevice(ctx context.Context, now time.Time, svc Services) error {
	if c.schedule == nil {
		return nil
	}
	assigned := c.schedule.Battery(c.deviceID)
	if assigned == nil {
		return nil
	}
	rate, err := assigned.RateAt(now)
	if errors.Is(err, optimizer.ErrOutOfRange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("battery controller %d: %w", c.deviceID, err)
	}
	sim, ok := svc.Interactors().Battery(c.deviceID)
	if !ok {
		return nil
	}
	return sim.SetRate(ctx, svc.Devices(), rate)
}

// State reports the battery's live charge alongside its configured
// limits.
func (c *Battery) State(ctx context.Context, svc Services) (map[string]any, error) {
	rec, err := svc.Devices().GetBattery(ctx, c.deviceID)
	if err != nil {
		return nil, fmt.Errorf("battery controller %d: %w", c.deviceID, err)
	}
	sim, ok := svc.Interactors().Battery(c.deviceID)
	if !ok {
		return nil, fmt.Errorf("battery controller %d: no interactor", c.deviceID)
	}
	return map[string]any{
		"id":                c.deviceID,
		"name":              rec.Name,
		"kind":              string(rec.Kind),
		"charge":            float64(sim.Charge()),
		"rate":              float64(sim.Rate()),
		"capacity":          float64(rec.Capacity),
		"charge_percentage": float64(sim.Charge()) / float64(rec.Capacity) * 100,
	}, nil
}

package interactor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/units"
)

// Solar production model constants. The model is deliberately crude: a
// half-sine between dawn and dusk scaled by a nominal weather factor.
const (
	dawnHour = 6.0
	duskHour = 20.0

	// weatherFactor is the nominal clear-sky reduction applied when no
	// override is set.
	weatherFactor = 0.6
)

// Generator simulates a passive production device. It is never
// actuated: output either follows a deterministic time-of-day model or
// an explicit override set for testing and what-if runs.
type Generator struct {
	deviceID int64
	current  units.Watt

	override    units.Watt
	hasOverride bool
}

// NewGenerator creates a generator interactor with zero output.
func NewGenerator(deviceID int64) *Generator {
	return &Generator{deviceID: deviceID}
}

// DeviceID returns the id of the controlled device.
func (g *Generator) DeviceID() int64 { return g.deviceID }

// Current returns the current simulated production.
func (g *Generator) Current() units.Watt { return g.current }

// SetOverride pins the output to an explicit value, clamped to the
// device's configured maximum. The override persists across updates
// until cleared.
func (g *Generator) SetOverride(ctx context.Context, devices device.Reader, power units.Watt) error {
	rec, err := devices.GetGenerator(ctx, g.deviceID)
	if err != nil {
		return fmt.Errorf("generator interactor %d: %w", g.deviceID, err)
	}
	if rec.MaxPower > 0 {
		power = units.ClampWatt(power, 0, rec.MaxPower)
	}
	g.override = power
	g.hasOverride = true
	g.current = power
	return nil
}

// ClearOverride returns output control to the production model.
func (g *Generator) ClearOverride() {
	g.hasOverride = false
	g.override = 0
}

// Update recomputes the output. An explicit override wins; otherwise the
// time-of-day model runs against the device's configured maximum.
func (g *Generator) Update(ctx context.Context, devices device.Reader, now time.Time) error {
	if g.hasOverride {
		g.current = g.override
		return nil
	}
	rec, err := devices.GetGenerator(ctx, g.deviceID)
	if err != nil {
		return fmt.Errorf("generator interactor %d: %w", g.deviceID, err)
	}
	g.current = units.Watt(float64(rec.MaxPower) * solarFactor(now) * weatherFactor)
	return nil
}

// solarFactor returns the clear-sky production fraction at t: zero at
// night, a half-sine peaking at solar noon between dawn and dusk.
func solarFactor(t time.Time) float64 {
	hour := float64(t.Hour()) + float64(t.Minute())/60
	if hour < dawnHour || hour > duskHour {
		return 0
	}
	f := math.Sin(math.Pi * (hour - dawnHour) / (duskHour - dawnHour))
	return math.Max(0, f)
}

// Prognosis builds the production prognosis the generator contributes
// to an optimizer snapshot: the model (or override) evaluated at each
// step across [start, end).
func (g *Generator) Prognosis(ctx context.Context, devices device.Reader, start, end time.Time, step time.Duration) ([]units.Watt, error) {
	rec, err := devices.GetGenerator(ctx, g.deviceID)
	if err != nil {
		return nil, fmt.Errorf("generator interactor %d: %w", g.deviceID, err)
	}
	var values []units.Watt
	for t := start; t.Before(end); t = t.Add(step) {
		if g.hasOverride {
			values = append(values, g.override)
			continue
		}
		values = append(values, units.Watt(float64(rec.MaxPower)*solarFactor(t)*weatherFactor))
	}
	return values, nil
}

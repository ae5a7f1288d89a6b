// Package units defines the typed physical and monetary quantities used
// throughout VoltMesh Core.
//
// The core consumes pre-typed quantities and performs no unit conversion:
// power is always watts, energy always watt-hours, money euros or
// euros-per-watt-hour. The defined types exist so that a watt value can
// never be handed to something expecting watt-hours without an explicit
// conversion through Energy.
package units

import "time"

// Watt is electrical power in watts. Positive values are consumption or
// charging; negative values are production or discharging, depending on
// the device kind.
type Watt float64

// WattHour is electrical energy in watt-hours.
type WattHour float64

// Euro is a monetary amount in euros.
type Euro float64

// EuroPerWattHour is an electricity price in euros per watt-hour.
type EuroPerWattHour float64

// Energy returns the energy transferred when holding this power for the
// given duration. Negative durations yield negative energy; callers are
// responsible for supplying non-decreasing timestamps.
func (w Watt) Energy(d time.Duration) WattHour {
	return WattHour(float64(w) * d.Hours())
}

// Cost returns the price of the given amount of energy at this rate.
func (p EuroPerWattHour) Cost(e WattHour) Euro {
	return Euro(float64(p) * float64(e))
}

// ClampWatt limits v to the inclusive range [lo, hi].
func ClampWatt(v, lo, hi Watt) Watt {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampWattHour limits v to the inclusive range [lo, hi].
func ClampWattHour(v, lo, hi WattHour) WattHour {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

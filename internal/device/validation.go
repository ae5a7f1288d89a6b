package device

import "fmt"

// maxNameLength is the longest permitted device name.
const maxNameLength = 100

// validateName checks the shared identity fields.
func validateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateBattery checks battery parameters against the model invariants:
// positive capacity, charge inside [0, capacity], non-negative rate
// limits, efficiency in (0, 1].
func ValidateBattery(b *Battery) error {
	if err := validateName(b.Name); err != nil {
		return err
	}
	if b.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %v", ErrInvalidDevice, b.Capacity)
	}
	if b.CurrentCharge < 0 || b.CurrentCharge > b.Capacity {
		return fmt.Errorf("%w: current charge %v outside [0, %v]", ErrInvalidDevice, b.CurrentCharge, b.Capacity)
	}
	if b.MaxChargeRate < 0 || b.MaxDischargeRate < 0 {
		return fmt.Errorf("%w: rate limits must be non-negative", ErrInvalidDevice)
	}
	if b.Efficiency <= 0 || b.Efficiency > 1 {
		return fmt.Errorf("%w: efficiency %v outside (0, 1]", ErrInvalidDevice, b.Efficiency)
	}
	return nil
}

// ValidateConstantActionDevice checks that the action window is
// non-inverted and wide enough to hold the configured duration.
func ValidateConstantActionDevice(d *ConstantActionDevice) error {
	if err := validateName(d.Name); err != nil {
		return err
	}
	a := d.Action
	if !a.EarliestStart.Before(a.LatestEnd) {
		return fmt.Errorf("%w: earliest start %v not before latest end %v", ErrInvalidWindow, a.EarliestStart, a.LatestEnd)
	}
	if a.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidDevice)
	}
	if a.Duration > a.LatestEnd.Sub(a.EarliestStart) {
		return fmt.Errorf("%w: duration %v exceeds window", ErrInvalidWindow, a.Duration)
	}
	if a.Power < 0 {
		return fmt.Errorf("%w: power must be non-negative", ErrInvalidDevice)
	}
	return nil
}

// ValidateVariableActionDevice checks the variable action invariants:
// non-inverted window, positive total energy, positive max power.
func ValidateVariableActionDevice(d *VariableActionDevice) error {
	if err := validateName(d.Name); err != nil {
		return err
	}
	a := d.Action
	if !a.Start.Before(a.End) {
		return fmt.Errorf("%w: start %v not before end %v", ErrInvalidWindow, a.Start, a.End)
	}
	if a.TotalEnergy <= 0 {
		return fmt.Errorf("%w: total energy must be positive, got %v", ErrInvalidDevice, a.TotalEnergy)
	}
	if a.MaxPower <= 0 {
		return fmt.Errorf("%w: max power must be positive, got %v", ErrInvalidDevice, a.MaxPower)
	}
	return nil
}

// ValidateGenerator checks generator parameters.
func ValidateGenerator(g *Generator) error {
	if err := validateName(g.Name); err != nil {
		return err
	}
	if g.MaxPower < 0 {
		return fmt.Errorf("%w: max power must be non-negative, got %v", ErrInvalidDevice, g.MaxPower)
	}
	if g.Latitude < -90 || g.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidDevice, g.Latitude)
	}
	if g.Longitude < -180 || g.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidDevice, g.Longitude)
	}
	return nil
}

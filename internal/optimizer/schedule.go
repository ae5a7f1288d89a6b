package optimizer

import (
	"time"

	"github.com/voltmesh/voltmesh-core/internal/units"
)

// AssignedBattery is the optimizer's dispatch profile for one battery:
// a signed rate (positive charging) over the profile window.
type AssignedBattery struct {
	DeviceID int64
	Profile  *Series
}

// RateAt returns the assigned rate at t, or ErrOutOfRange outside the
// profile window.
func (a *AssignedBattery) RateAt(t time.Time) (units.Watt, error) {
	return a.Profile.At(t)
}

// AssignedConstantAction is the optimizer's placement of a constant
// action: a concrete start time for the configured duration and power.
type AssignedConstantAction struct {
	DeviceID int64
	Start    time.Time
	Duration time.Duration
	Power    units.Watt
}

// StartTime returns the assigned start.
func (a *AssignedConstantAction) StartTime() time.Time {
	return a.Start
}

// End returns the exclusive end of the assigned run.
func (a *AssignedConstantAction) End() time.Time {
	return a.Start.Add(a.Duration)
}

// PowerAt returns the action power at t, or ErrOutOfRange outside the
// assigned run window.
func (a *AssignedConstantAction) PowerAt(t time.Time) (units.Watt, error) {
	if t.Before(a.Start) || !t.Before(a.End()) {
		return 0, ErrOutOfRange
	}
	return a.Power, nil
}

// AssignedVariableAction is the optimizer's consumption profile for one
// variable action.
type AssignedVariableAction struct {
	DeviceID int64
	Profile  *Series
}

// ConsumptionAt returns the assigned consumption at t, or ErrOutOfRange
// outside the profile window.
func (a *AssignedVariableAction) ConsumptionAt(t time.Time) (units.Watt, error) {
	return a.Profile.At(t)
}

// Schedule is the optimizer output: per-device assignments looked up by
// device id. Lookups for devices without an assignment return nil.
type Schedule struct {
	batteries map[int64]*AssignedBattery
	constants map[int64]*AssignedConstantAction
	variables map[int64]*AssignedVariableAction
}

// NewSchedule creates an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{
		batteries: make(map[int64]*AssignedBattery),
		constants: make(map[int64]*AssignedConstantAction),
		variables: make(map[int64]*AssignedVariableAction),
	}
}

// SetBattery records a battery assignment.
func (s *Schedule) SetBattery(a *AssignedBattery) {
	s.batteries[a.DeviceID] = a
}

// SetConstantAction records a constant-action assignment.
func (s *Schedule) SetConstantAction(a *AssignedConstantAction) {
	s.constants[a.DeviceID] = a
}

// SetVariableAction records a variable-action assignment.
func (s *Schedule) SetVariableAction(a *AssignedVariableAction) {
	s.variables[a.DeviceID] = a
}

// Battery returns the assignment for a battery, or nil.
func (s *Schedule) Battery(deviceID int64) *AssignedBattery {
	return s.batteries[deviceID]
}

// ConstantAction returns the assignment for a constant action, or nil.
func (s *Schedule) ConstantAction(deviceID int64) *AssignedConstantAction {
	return s.constants[deviceID]
}

// VariableAction returns the assignment for a variable action, or nil.
func (s *Schedule) VariableAction(deviceID int64) *AssignedVariableAction {
	return s.variables[deviceID]
}

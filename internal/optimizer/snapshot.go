package optimizer

import (
	"time"

	"github.com/voltmesh/voltmesh-core/internal/units"
)

// BatteryDemand describes a battery to the optimizer: its physical
// limits plus the live charge read from the interactor at collection
// time.
type BatteryDemand struct {
	DeviceID         int64
	Capacity         units.WattHour
	MaxChargeRate    units.Watt
	MaxDischargeRate units.Watt
	InitialCharge    units.WattHour
}

// ConstantActionDemand describes a schedulable fixed-duration action.
// The window is pre-clamped by the controller; an empty or inverted
// window never reaches the snapshot.
type ConstantActionDemand struct {
	DeviceID      int64
	EarliestStart time.Time
	LatestEnd     time.Time
	Duration      time.Duration
	Power         units.Watt
}

// VariableActionDemand describes remaining energy to be scheduled at a
// free rate inside a window.
type VariableActionDemand struct {
	DeviceID    int64
	Start       time.Time
	End         time.Time
	TotalEnergy units.WattHour
	MaxPower    units.Watt
}

// Snapshot is the complete optimizer input for one orchestration cycle:
// stamped with the collection time, carrying the price source and every
// controller's contribution.
type Snapshot struct {
	Now   time.Time
	Price PriceFunc

	// Horizon bounds how far ahead assignments are produced.
	Horizon time.Duration

	Batteries       []BatteryDemand
	ConstantActions []ConstantActionDemand
	VariableActions []VariableActionDemand

	// PastConstantActions are commitments from the previous schedule:
	// actions already running, injected as fixed consumption the
	// optimizer must plan around rather than reassign.
	PastConstantActions []*AssignedConstantAction

	// Generation is the pointwise sum of every generator's production
	// prognosis.
	Generation *Series
}

// NewSnapshot creates an empty snapshot stamped with now.
func NewSnapshot(now time.Time, price PriceFunc, horizon time.Duration) *Snapshot {
	return &Snapshot{
		Now:        now,
		Price:      price,
		Horizon:    horizon,
		Generation: &Series{},
	}
}

// AddBattery records a battery demand descriptor.
func (s *Snapshot) AddBattery(d BatteryDemand) {
	s.Batteries = append(s.Batteries, d)
}

// AddConstantAction records a schedulable constant action.
func (s *Snapshot) AddConstantAction(d ConstantActionDemand) {
	s.ConstantActions = append(s.ConstantActions, d)
}

// AddPastConstantAction records an already-committed assignment from the
// previous schedule as fixed consumption.
func (s *Snapshot) AddPastConstantAction(a *AssignedConstantAction) {
	s.PastConstantActions = append(s.PastConstantActions, a)
}

// AddVariableAction records a schedulable variable action.
func (s *Snapshot) AddVariableAction(d VariableActionDemand) {
	s.VariableActions = append(s.VariableActions, d)
}

// AddGeneration merges a generator's production prognosis into the
// summed generation series.
func (s *Snapshot) AddGeneration(series *Series) error {
	return s.Generation.Add(series)
}

package device

import (
	"time"

	"github.com/voltmesh/voltmesh-core/internal/units"
)

// Kind classifies a device. The set is closed: every registry, interactor
// and controller in the system is polymorphic over exactly these four.
type Kind string

const (
	KindBattery        Kind = "battery"
	KindConstantAction Kind = "constant_action"
	KindVariableAction Kind = "variable_action"
	KindGenerator      Kind = "generator"
)

// Valid reports whether k is a recognised device kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBattery, KindConstantAction, KindVariableAction, KindGenerator:
		return true
	}
	return false
}

// Device carries the identity shared by all device kinds. The integer ID
// is assigned by the durable store on insert and is the join key across
// the durable, interactor and controller registries. The kind tag is
// immutable after creation.
type Device struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Battery is a storage device. CurrentCharge is the last persisted charge
// level; the live value during simulation belongs to the interactor and
// is written back periodically.
type Battery struct {
	Device

	Capacity         units.WattHour `json:"capacity"`
	CurrentCharge    units.WattHour `json:"current_charge"`
	MaxChargeRate    units.Watt     `json:"max_charge_rate"`
	MaxDischargeRate units.Watt     `json:"max_discharge_rate"`
	Efficiency       float64        `json:"efficiency"`
}

// ConstantAction is a fixed-duration, fixed-power task that must run once
// inside its window: duration at power, started no earlier than
// EarliestStart and finished no later than LatestEnd.
type ConstantAction struct {
	EarliestStart time.Time     `json:"earliest_start"`
	LatestEnd     time.Time     `json:"latest_end"`
	Duration      time.Duration `json:"duration"`
	Power         units.Watt    `json:"power"`
}

// ConstantActionDevice is an appliance with one active constant action.
type ConstantActionDevice struct {
	Device

	Action ConstantAction `json:"action"`
}

// VariableAction is a total amount of energy to be consumed inside a
// window at a freely assignable rate up to MaxPower, such as an EV
// charging session.
type VariableAction struct {
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	TotalEnergy units.WattHour `json:"total_energy"`
	MaxPower    units.Watt     `json:"max_power"`
}

// VariableActionDevice is a load with one active variable action.
type VariableActionDevice struct {
	Device

	Action VariableAction `json:"action"`
}

// Generator is a passive production device, typically PV. It is never
// actuated; it contributes a time-parameterized production prognosis to
// the optimizer instead of stored samples.
type Generator struct {
	Device

	MaxPower  units.Watt `json:"max_power"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
}

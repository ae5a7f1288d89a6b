package orchestrator

import (
	"context"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/units"
)

// fanOut forwards telemetry to multiple sinks.
type fanOut []Telemetry

// FanOut combines telemetry sinks into one. Nil sinks are skipped, and
// a single sink is returned unwrapped.
func FanOut(sinks ...Telemetry) Telemetry {
	var active fanOut
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return active
}

func (f fanOut) RecordDeviceState(ctx context.Context, deviceID int64, state map[string]any, at time.Time) {
	for _, s := range f {
		s.RecordDeviceState(ctx, deviceID, state, at)
	}
}

func (f fanOut) RecordCycle(ctx context.Context, cost units.Euro, devices int, at time.Time) {
	for _, s := range f {
		s.RecordCycle(ctx, cost, devices, at)
	}
}

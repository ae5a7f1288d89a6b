package optimizer

import (
	"context"
	"fmt"

	"github.com/voltmesh/voltmesh-core/internal/units"
)

// Greedy is the deterministic baseline optimizer: constant actions start
// as early as their window allows, variable actions draw a flat rate
// spread over their window, batteries stay idle. It ignores price
// shifting entirely; its cost output is the price-weighted energy of the
// resulting plan.
//
// It exists so the daemon runs standalone and tests have a fixed
// reference point. Production deployments swap in the external
// optimization engine behind the same interface.
type Greedy struct{}

// NewGreedy creates the baseline optimizer.
func NewGreedy() *Greedy {
	return &Greedy{}
}

// Optimize implements Optimizer.
func (g *Greedy) Optimize(ctx context.Context, snap *Snapshot) (units.Euro, *Schedule, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	schedule := NewSchedule()
	horizonEnd := snap.Now.Add(snap.Horizon)
	var cost units.Euro

	for _, b := range snap.Batteries {
		schedule.SetBattery(&AssignedBattery{
			DeviceID: b.DeviceID,
			Profile:  FlatSeries(snap.Now, horizonEnd, ProfileStep, 0),
		})
	}

	for _, a := range snap.ConstantActions {
		if a.EarliestStart.Add(a.Duration).After(a.LatestEnd) {
			return 0, nil, fmt.Errorf("constant action %d: duration %v does not fit window", a.DeviceID, a.Duration)
		}
		assigned := &AssignedConstantAction{
			DeviceID: a.DeviceID,
			Start:    a.EarliestStart,
			Duration: a.Duration,
			Power:    a.Power,
		}
		schedule.SetConstantAction(assigned)
		energy := a.Power.Energy(a.Duration)
		cost += snap.Price(assigned.Start, assigned.End()).Cost(energy)
	}

	for _, a := range snap.VariableActions {
		window := a.End.Sub(a.Start)
		if window <= 0 {
			return 0, nil, fmt.Errorf("variable action %d: empty window", a.DeviceID)
		}
		rate := units.Watt(float64(a.TotalEnergy) / window.Hours())
		if rate > a.MaxPower {
			rate = a.MaxPower
		}
		schedule.SetVariableAction(&AssignedVariableAction{
			DeviceID: a.DeviceID,
			Profile:  FlatSeries(a.Start, a.End, ProfileStep, rate),
		})
		cost += snap.Price(a.Start, a.End).Cost(rate.Energy(window))
	}

	// Past commitments still cost money even though they are not
	// reassigned.
	for _, p := range snap.PastConstantActions {
		cost += snap.Price(p.Start, p.End()).Cost(p.Power.Energy(p.Duration))
	}

	// Self-generated electricity offsets the bill at the same price.
	if snap.Generation != nil && len(snap.Generation.Values) > 0 {
		gen := snap.Generation
		cost -= snap.Price(gen.Start, gen.End()).Cost(gen.Energy())
	}

	return cost, schedule, nil
}

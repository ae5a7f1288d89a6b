package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/interactor"
	"github.com/voltmesh/voltmesh-core/internal/manager"
	"github.com/voltmesh/voltmesh-core/internal/optimizer"
	"github.com/voltmesh/voltmesh-core/internal/units"
)

// Logger defines the logging interface used by the Orchestrator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Telemetry receives device states and cycle results for export. Both
// methods are called from the orchestration loop; implementations
// should not block.
type Telemetry interface {
	RecordDeviceState(ctx context.Context, deviceID int64, state map[string]any, at time.Time)
	RecordCycle(ctx context.Context, cost units.Euro, devices int, at time.Time)
}

// Orchestrator runs planning cycles and simulation ticks over the
// manager's device registries.
type Orchestrator struct {
	manager   *manager.Manager
	optimizer optimizer.Optimizer
	price     optimizer.PriceFunc
	horizon   time.Duration

	logger    Logger
	telemetry Telemetry

	mu       sync.Mutex
	schedule *optimizer.Schedule
	lastCost units.Euro
	lastRun  time.Time
}

// New creates an orchestrator over the given manager and optimizer.
func New(m *manager.Manager, opt optimizer.Optimizer, price optimizer.PriceFunc, horizon time.Duration) *Orchestrator {
	return &Orchestrator{
		manager:   m,
		optimizer: opt,
		price:     price,
		horizon:   horizon,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the orchestrator.
func (o *Orchestrator) SetLogger(logger Logger) {
	o.logger = logger
}

// SetTelemetry sets the telemetry sink for the orchestrator.
func (o *Orchestrator) SetTelemetry(t Telemetry) {
	o.telemetry = t
}

// Run executes one full planning cycle at now and returns the expected
// cost of the resulting schedule.
//
// Pass one collects every controller's demand into a fresh snapshot.
// Only after the last controller has contributed does pass two offer
// the optimized schedule back to each controller.
func (o *Orchestrator) Run(ctx context.Context, now time.Time) (units.Euro, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	controllers := o.manager.Controllers().All()
	snap := optimizer.NewSnapshot(now, o.price, o.horizon)
	for _, c := range controllers {
		if err := c.AddToSnapshot(ctx, snap, now, o.manager); err != nil {
			return 0, fmt.Errorf("orchestrator: collecting device %d: %w", c.DeviceID(), err)
		}
	}

	cost, schedule, err := o.optimizer.Optimize(ctx, snap)
	if err != nil {
		return 0, fmt.Errorf("orchestrator: optimize: %w", err)
	}

	for _, c := range controllers {
		c.UseSchedule(ctx, schedule, o.manager)
	}

	o.schedule = schedule
	o.lastCost = cost
	o.lastRun = now
	o.logger.Info("planning cycle complete",
		"devices", len(controllers), "cost", float64(cost))
	if o.telemetry != nil {
		o.telemetry.RecordCycle(ctx, cost, len(controllers), now)
	}
	return cost, nil
}

// Tick advances the simulated world to now: controllers push their
// current assignments into the interactors, the interactors integrate
// up to now, and battery charges are written back to the store.
func (o *Orchestrator) Tick(ctx context.Context, now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, c := range o.manager.Controllers().All() {
		if err := c.UpdateDevice(ctx, now, o.manager); err != nil {
			return fmt.Errorf("orchestrator: updating device %d: %w", c.DeviceID(), err)
		}
	}

	if err := o.updateInteractors(ctx, now); err != nil {
		return err
	}
	if err := o.manager.PersistBatteryCharges(ctx); err != nil {
		return err
	}

	if o.telemetry != nil {
		o.recordStates(ctx, now)
	}
	return nil
}

func (o *Orchestrator) updateInteractors(ctx context.Context, now time.Time) error {
	var firstErr error
	reg := o.manager.Interactors()
	devices := o.manager.Devices()
	reg.EachBattery(func(b *interactor.Battery) {
		if err := b.Update(ctx, devices, now); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("orchestrator: battery %d: %w", b.DeviceID(), err)
		}
	})
	reg.EachConstantAction(func(c *interactor.ConstantAction) {
		if err := c.Update(ctx, devices, now); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("orchestrator: constant action %d: %w", c.DeviceID(), err)
		}
	})
	reg.EachVariableAction(func(v *interactor.VariableAction) {
		if err := v.Update(ctx, devices, now); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("orchestrator: variable action %d: %w", v.DeviceID(), err)
		}
	})
	reg.EachGenerator(func(g *interactor.Generator) {
		if err := g.Update(ctx, devices, now); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("orchestrator: generator %d: %w", g.DeviceID(), err)
		}
	})
	return firstErr
}

func (o *Orchestrator) recordStates(ctx context.Context, now time.Time) {
	for _, c := range o.manager.Controllers().All() {
		state, err := c.State(ctx, o.manager)
		if err != nil {
			o.logger.Warn("reading device state for telemetry failed",
				"device", c.DeviceID(), "error", err)
			continue
		}
		o.telemetry.RecordDeviceState(ctx, c.DeviceID(), state, now)
	}
}

// Schedule returns the most recently distributed schedule, or nil
// before the first cycle.
func (o *Orchestrator) Schedule() *optimizer.Schedule {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.schedule
}

// LastRun reports the time and expected cost of the last planning
// cycle. The zero time means no cycle has run yet.
func (o *Orchestrator) LastRun() (time.Time, units.Euro) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastRun, o.lastCost
}

// States collects the live state of every device, keyed by device id.
func (o *Orchestrator) States(ctx context.Context) (map[int64]map[string]any, error) {
	out := make(map[int64]map[string]any)
	for _, c := range o.manager.Controllers().All() {
		state, err := c.State(ctx, o.manager)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: state of device %d: %w", c.DeviceID(), err)
		}
		out[c.DeviceID()] = state
	}
	return out, nil
}

// Loop ticks the simulation every tickInterval and replans every
// cycleInterval until ctx is cancelled. The first cycle runs
// immediately.
func (o *Orchestrator) Loop(ctx context.Context, tickInterval, cycleInterval time.Duration) error {
	if _, err := o.Run(ctx, time.Now()); err != nil {
		return err
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	replan := time.NewTicker(cycleInterval)
	defer replan.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := o.Tick(ctx, now); err != nil {
				o.logger.Error("simulation tick failed", "error", err)
			}
		case now := <-replan.C:
			if _, err := o.Run(ctx, now); err != nil {
				o.logger.Error("planning cycle failed", "error", err)
			}
		}
	}
}

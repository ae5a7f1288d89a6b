package manager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/controller"
	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/interactor"
)

// Logger defines the logging interface used by the Manager.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager installs and removes devices across the durable store, the
// interactor registry and the controller registry, keeping the three in
// lockstep through units of work. It also implements the read surface
// controllers use during orchestration.
type Manager struct {
	db          *sql.DB
	store       *device.SQLiteStore
	runner      *Runner
	interactors *interactor.Registry
	controllers *controller.Registry
	logger      Logger

	now func() time.Time
}

// New creates a device manager over the given database handle.
func New(db *sql.DB) *Manager {
	interactors := interactor.NewRegistry()
	controllers := controller.NewRegistry()
	return &Manager{
		db:          db,
		store:       device.NewSQLiteStore(db),
		runner:      NewRunner(db, interactors, controllers),
		interactors: interactors,
		controllers: controllers,
		logger:      noopLogger{},
		now:         time.Now,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// SetClock overrides the time source used to anchor newly created
// interactors. Callers that drive orchestration at a simulated time
// must install the same clock here, otherwise the first update
// integrates the gap between wall time and simulated time.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Manager satisfies the read surface controllers depend on.
var _ controller.Services = (*Manager)(nil)

// Devices returns the durable read surface.
func (m *Manager) Devices() device.Reader { return m.store }

// Interactors returns the live interactor registry.
func (m *Manager) Interactors() *interactor.Registry { return m.interactors }

// Controllers returns the live controller registry.
func (m *Manager) Controllers() *controller.Registry { return m.controllers }

// Restore rebuilds the interactor and controller registries from the
// durable store, seeding each interactor from its persisted record.
// It is called once on startup before the first orchestration cycle.
func (m *Manager) Restore(ctx context.Context) error {
	devices, err := m.store.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("manager: restore: %w", err)
	}
	now := m.now()
	for _, d := range devices {
		switch d.Kind {
		case device.KindBattery:
			rec, err := m.store.GetBattery(ctx, d.ID)
			if err != nil {
				return fmt.Errorf("manager: restore battery %d: %w", d.ID, err)
			}
			m.interactors.AddBattery(interactor.NewBattery(d.ID, rec.CurrentCharge, now))
			m.controllers.AddBattery(controller.NewBattery(d.ID))
		case device.KindConstantAction:
			m.interactors.AddConstantAction(interactor.NewConstantAction(d.ID))
			m.controllers.AddConstantAction(controller.NewConstantAction(d.ID))
		case device.KindVariableAction:
			m.interactors.AddVariableAction(interactor.NewVariableAction(d.ID, now))
			m.controllers.AddVariableAction(controller.NewVariableAction(d.ID))
		case device.KindGenerator:
			m.interactors.AddGenerator(interactor.NewGenerator(d.ID))
			m.controllers.AddGenerator(controller.NewGenerator(d.ID))
		}
	}
	m.interactors.Commit()
	m.controllers.Commit()
	m.logger.Info("device registries restored", "count", len(devices))
	return nil
}

// AddBattery installs a battery across all three registries and returns
// its assigned id. The interactor is seeded with the record's charge.
func (m *Manager) AddBattery(ctx context.Context, b *device.Battery) (int64, error) {
	if err := device.ValidateBattery(b); err != nil {
		return 0, err
	}
	var id int64
	err := m.runner.Execute(ctx, func(ctx context.Context, s *Session) error {
		var err error
		id, err = s.Store.InsertBattery(ctx, b)
		if err != nil {
			return err
		}
		s.Interactors.AddBattery(interactor.NewBattery(id, b.CurrentCharge, m.now()))
		s.Controllers.AddBattery(controller.NewBattery(id))
		return nil
	})
	if err != nil {
		return 0, err
	}
	m.logger.Info("battery installed", "id", id, "name", b.Name)
	return id, nil
}

// AddConstantActionDevice installs a constant-action appliance and
// returns its assigned id.
func (m *Manager) AddConstantActionDevice(ctx context.Context, d *device.ConstantActionDevice) (int64, error) {
	if err := device.ValidateConstantActionDevice(d); err != nil {
		return 0, err
	}
	var id int64
	err := m.runner.Execute(ctx, func(ctx context.Context, s *Session) error {
		var err error
		id, err = s.Store.InsertConstantActionDevice(ctx, d)
		if err != nil {
			return err
		}
		s.Interactors.AddConstantAction(interactor.NewConstantAction(id))
		s.Controllers.AddConstantAction(controller.NewConstantAction(id))
		return nil
	})
	if err != nil {
		return 0, err
	}
	m.logger.Info("constant action installed", "id", id, "name", d.Name)
	return id, nil
}

// AddVariableActionDevice installs a variable-action load and returns
// its assigned id.
func (m *Manager) AddVariableActionDevice(ctx context.Context, d *device.VariableActionDevice) (int64, error) {
	if err := device.ValidateVariableActionDevice(d); err != nil {
		return 0, err
	}
	var id int64
	err := m.runner.Execute(ctx, func(ctx context.Context, s *Session) error {
		var err error
		id, err = s.Store.InsertVariableActionDevice(ctx, d)
		if err != nil {
			return err
		}
		s.Interactors.AddVariableAction(interactor.NewVariableAction(id, m.now()))
		s.Controllers.AddVariableAction(controller.NewVariableAction(id))
		return nil
	})
	if err != nil {
		return 0, err
	}
	m.logger.Info("variable action installed", "id", id, "name", d.Name)
	return id, nil
}

// AddGenerator installs a generator and returns its assigned id.
func (m *Manager) AddGenerator(ctx context.Context, g *device.Generator) (int64, error) {
	if err := device.ValidateGenerator(g); err != nil {
		return 0, err
	}
	var id int64
	err := m.runner.Execute(ctx, func(ctx context.Context, s *Session) error {
		var err error
		id, err = s.Store.InsertGenerator(ctx, g)
		if err != nil {
			return err
		}
		s.Interactors.AddGenerator(interactor.NewGenerator(id))
		s.Controllers.AddGenerator(controller.NewGenerator(id))
		return nil
	})
	if err != nil {
		return 0, err
	}
	m.logger.Info("generator installed", "id", id, "name", g.Name)
	return id, nil
}

// RemoveDevice deinstalls a device from all three registries. Removing
// an unknown id is a no-op everywhere, so removal is idempotent.
func (m *Manager) RemoveDevice(ctx context.Context, id int64) error {
	err := m.runner.Execute(ctx, func(ctx context.Context, s *Session) error {
		if err := s.Store.DeleteDevice(ctx, id); err != nil {
			return err
		}
		s.Interactors.Remove(id)
		s.Controllers.Remove(id)
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.Info("device removed", "id", id)
	return nil
}

// PersistBatteryCharges writes every battery interactor's live charge
// back to the durable store. Called after each simulation tick so a
// restart resumes close to the live state.
func (m *Manager) PersistBatteryCharges(ctx context.Context) error {
	var firstErr error
	m.interactors.EachBattery(func(b *interactor.Battery) {
		if err := m.store.UpdateBatteryCharge(ctx, b.DeviceID(), float64(b.Charge())); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("manager: persist charge for battery %d: %w", b.DeviceID(), err)
		}
	})
	return firstErr
}

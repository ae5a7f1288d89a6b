package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/infrastructure/database"
	_ "github.com/voltmesh/voltmesh-core/migrations"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:", BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return New(db.DB)
}

func testBattery() *device.Battery {
	return &device.Battery{
		Device:           device.Device{Name: "home-battery"},
		Capacity:         10000,
		CurrentCharge:    5000,
		MaxChargeRate:    3000,
		MaxDischargeRate: 3000,
		Efficiency:       1,
	}
}

func TestAddBatteryInstallsEverywhere(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.AddBattery(ctx, testBattery())
	if err != nil {
		t.Fatalf("AddBattery: %v", err)
	}
	if id == 0 {
		t.Fatal("AddBattery assigned id 0")
	}

	// Durable record.
	rec, err := m.Devices().GetBattery(ctx, id)
	if err != nil {
		t.Fatalf("GetBattery: %v", err)
	}
	if rec.CurrentCharge != 5000 {
		t.Errorf("stored charge = %v, want 5000", rec.CurrentCharge)
	}

	// Interactor seeded with the record's charge.
	sim, ok := m.Interactors().Battery(id)
	if !ok {
		t.Fatal("no battery interactor after add")
	}
	if sim.Charge() != 5000 {
		t.Errorf("interactor charge = %v, want seeded 5000", sim.Charge())
	}

	// Controller installed.
	if _, ok := m.Controllers().Battery(id); !ok {
		t.Fatal("no battery controller after add")
	}
}

func TestAddAllKinds(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	if _, err := m.AddBattery(ctx, testBattery()); err != nil {
		t.Fatalf("AddBattery: %v", err)
	}
	caID, err := m.AddConstantActionDevice(ctx, &device.ConstantActionDevice{
		Device: device.Device{Name: "dishwasher"},
		Action: device.ConstantAction{
			EarliestStart: now,
			LatestEnd:     now.Add(8 * time.Hour),
			Duration:      90 * time.Minute,
			Power:         1800,
		},
	})
	if err != nil {
		t.Fatalf("AddConstantActionDevice: %v", err)
	}
	vaID, err := m.AddVariableActionDevice(ctx, &device.VariableActionDevice{
		Device: device.Device{Name: "ev-charger"},
		Action: device.VariableAction{
			Start:       now,
			End:         now.Add(12 * time.Hour),
			TotalEnergy: 20000,
			MaxPower:    7000,
		},
	})
	if err != nil {
		t.Fatalf("AddVariableActionDevice: %v", err)
	}
	genID, err := m.AddGenerator(ctx, &device.Generator{
		Device:   device.Device{Name: "rooftop-pv"},
		MaxPower: 5000,
	})
	if err != nil {
		t.Fatalf("AddGenerator: %v", err)
	}

	devices, err := m.Devices().ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 4 {
		t.Fatalf("got %d devices, want 4", len(devices))
	}
	if _, ok := m.Interactors().ConstantAction(caID); !ok {
		t.Error("no constant-action interactor")
	}
	if _, ok := m.Interactors().VariableAction(vaID); !ok {
		t.Error("no variable-action interactor")
	}
	if _, ok := m.Interactors().Generator(genID); !ok {
		t.Error("no generator interactor")
	}
	if got := len(m.Controllers().All()); got != 4 {
		t.Errorf("All() = %d controllers, want 4", got)
	}
}

func TestAddBatteryValidationLeavesNothingBehind(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	bad := testBattery()
	bad.Capacity = -1
	if _, err := m.AddBattery(ctx, bad); !errors.Is(err, device.ErrInvalidDevice) {
		t.Fatalf("AddBattery error = %v, want ErrInvalidDevice", err)
	}

	devices, err := m.Devices().ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("got %d devices after failed add, want 0", len(devices))
	}
	if got := len(m.Controllers().All()); got != 0 {
		t.Errorf("All() = %d controllers after failed add, want 0", got)
	}
}

func TestRemoveDevice(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.AddBattery(ctx, testBattery())
	if err != nil {
		t.Fatalf("AddBattery: %v", err)
	}
	if err := m.RemoveDevice(ctx, id); err != nil {
		t.Fatalf("RemoveDevice: %v", err)
	}

	if _, err := m.Devices().GetBattery(ctx, id); !errors.Is(err, device.ErrNotFound) {
		t.Errorf("GetBattery after remove = %v, want ErrNotFound", err)
	}
	if _, ok := m.Interactors().Battery(id); ok {
		t.Error("interactor survived remove")
	}
	if _, ok := m.Controllers().Battery(id); ok {
		t.Error("controller survived remove")
	}

	// Removal is idempotent.
	if err := m.RemoveDevice(ctx, id); err != nil {
		t.Errorf("second RemoveDevice: %v", err)
	}
	if err := m.RemoveDevice(ctx, 9999); err != nil {
		t.Errorf("RemoveDevice unknown id: %v", err)
	}
}

func TestRestoreRebuildsRegistries(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	id, err := m.AddBattery(ctx, testBattery())
	if err != nil {
		t.Fatalf("AddBattery: %v", err)
	}

	// Fresh manager over the same database, as after a restart.
	restarted := New(m.db)
	if _, ok := restarted.Interactors().Battery(id); ok {
		t.Fatal("interactor present before Restore")
	}
	if err := restarted.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	sim, ok := restarted.Interactors().Battery(id)
	if !ok {
		t.Fatal("no interactor after Restore")
	}
	if sim.Charge() != 5000 {
		t.Errorf("restored charge = %v, want 5000", sim.Charge())
	}
	if _, ok := restarted.Controllers().Battery(id); !ok {
		t.Error("no controller after Restore")
	}
}

func TestPersistBatteryCharges(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	id, err := m.AddBattery(ctx, testBattery())
	if err != nil {
		t.Fatalf("AddBattery: %v", err)
	}

	sim, _ := m.Interactors().Battery(id)
	if err := sim.SetRate(ctx, m.Devices(), 2000); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if err := sim.Update(ctx, m.Devices(), now.Add(time.Hour)); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := m.PersistBatteryCharges(ctx); err != nil {
		t.Fatalf("PersistBatteryCharges: %v", err)
	}
	rec, err := m.Devices().GetBattery(ctx, id)
	if err != nil {
		t.Fatalf("GetBattery: %v", err)
	}
	if rec.CurrentCharge != 7000 {
		t.Errorf("persisted charge = %v, want 7000", rec.CurrentCharge)
	}
}

func TestClockAnchorsNewInteractors(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// Simulated time well away from the wall clock. Without the
	// installed clock the first update would integrate the whole
	// wall-to-simulation gap instead of one hour.
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	id, err := m.AddVariableActionDevice(ctx, &device.VariableActionDevice{
		Device: device.Device{Name: "ev-charger"},
		Action: device.VariableAction{
			Start:       now,
			End:         now.Add(12 * time.Hour),
			TotalEnergy: 20000,
			MaxPower:    7000,
		},
	})
	if err != nil {
		t.Fatalf("AddVariableActionDevice: %v", err)
	}

	sim, ok := m.Interactors().VariableAction(id)
	if !ok {
		t.Fatal("no variable action interactor")
	}
	if err := sim.SetRate(ctx, m.Devices(), 2000); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if err := sim.Update(ctx, m.Devices(), now.Add(time.Hour)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := sim.TotalConsumed(); got != 2000 {
		t.Errorf("consumed = %v Wh, want 2000", got)
	}
}

func TestRunnerRollsBackOnClosureError(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := m.runner.Execute(ctx, func(ctx context.Context, s *Session) error {
		if _, err := s.Store.InsertBattery(ctx, testBattery()); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Execute error = %v, want sentinel", err)
	}

	devices, err := m.Devices().ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("got %d devices after rollback, want 0", len(devices))
	}
}

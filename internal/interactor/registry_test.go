package interactor

import (
	"testing"
	"time"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	r.AddBattery(NewBattery(1, 5000, now))
	r.AddConstantAction(NewConstantAction(2))
	r.AddVariableAction(NewVariableAction(3, now))
	r.AddGenerator(NewGenerator(4))

	// Staged entries are visible before commit.
	if _, ok := r.Battery(1); !ok {
		t.Fatal("Battery(1) not visible while staged")
	}
	if _, ok := r.ConstantAction(2); !ok {
		t.Fatal("ConstantAction(2) not visible while staged")
	}

	r.Commit()

	// Remove stages deletion across every kind map; only id 1 matches.
	r.Remove(1)
	if _, ok := r.Battery(1); ok {
		t.Error("Battery(1) still visible after staged removal")
	}
	if _, ok := r.VariableAction(3); !ok {
		t.Error("VariableAction(3) disappeared; Remove(1) must not touch it")
	}

	// Rollback restores the battery.
	r.Rollback()
	if _, ok := r.Battery(1); !ok {
		t.Error("Battery(1) not restored by rollback")
	}

	// Committed removal is permanent.
	r.Remove(1)
	r.Commit()
	if _, ok := r.Battery(1); ok {
		t.Error("Battery(1) visible after committed removal")
	}

	// Removing an absent id is tolerated.
	r.Remove(99)
	r.Commit()
}

func TestRegistryEach(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	r.AddBattery(NewBattery(1, 0, now))
	r.AddBattery(NewBattery(2, 0, now))
	r.AddGenerator(NewGenerator(3))
	r.Commit()

	var batteries, generators int
	r.EachBattery(func(*Battery) { batteries++ })
	r.EachGenerator(func(*Generator) { generators++ })

	if batteries != 2 {
		t.Errorf("EachBattery visited %d, want 2", batteries)
	}
	if generators != 1 {
		t.Errorf("EachGenerator visited %d, want 1", generators)
	}
}

package controller

import "testing"

func TestRegistryStagingLifecycle(t *testing.T) {
	r := NewRegistry()

	r.AddBattery(NewBattery(1))
	r.AddVariableAction(NewVariableAction(2))

	// Staged entries are readable before commit.
	if _, ok := r.Battery(1); !ok {
		t.Fatal("staged battery not visible")
	}
	if got := len(r.All()); got != 2 {
		t.Fatalf("All() = %d controllers, want 2", got)
	}

	r.Rollback()
	if _, ok := r.Battery(1); ok {
		t.Fatal("battery survived rollback")
	}
	if got := len(r.All()); got != 0 {
		t.Fatalf("All() = %d after rollback, want 0", got)
	}
}

func TestRegistryRemoveSpansKinds(t *testing.T) {
	r := NewRegistry()
	r.AddBattery(NewBattery(1))
	r.AddConstantAction(NewConstantAction(2))
	r.AddGenerator(NewGenerator(3))
	r.Commit()

	// Remove needs no kind hint.
	r.Remove(2)
	r.Commit()

	if _, ok := r.ConstantAction(2); ok {
		t.Fatal("removed controller still present")
	}
	if got := len(r.All()); got != 2 {
		t.Fatalf("All() = %d, want 2", got)
	}

	// Removing an unknown id is a no-op.
	r.Remove(99)
	r.Commit()
	if got := len(r.All()); got != 2 {
		t.Fatalf("All() = %d after removing unknown id, want 2", got)
	}
}

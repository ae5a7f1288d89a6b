package controller

import (
	"context"
	"testing"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/interactor"
	"github.com/voltmesh/voltmesh-core/internal/optimizer"
)

func constantActionFixture(t *testing.T, now time.Time) (*fakeServices, *interactor.ConstantAction, *ConstantAction) {
	t.Helper()
	svc := newFakeServices()
	svc.reader.constantActions[1] = testConstantActionRecord(
		1, now, now.Add(8*time.Hour), 90*time.Minute, 1800,
	)
	sim := interactor.NewConstantAction(1)
	svc.interactors.AddConstantAction(sim)
	svc.interactors.Commit()
	return svc, sim, NewConstantAction(1)
}

func TestConstantActionAddToSnapshotClampsWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, _, ctrl := constantActionFixture(t, now)

	// Query two hours into the window: the earliest start is clamped
	// forward to the query time.
	later := now.Add(2 * time.Hour)
	snap := optimizer.NewSnapshot(later, optimizer.FlatPrice(0.0003), 24*time.Hour)
	if err := ctrl.AddToSnapshot(context.Background(), snap, later, svc); err != nil {
		t.Fatalf("AddToSnapshot: %v", err)
	}
	if len(snap.ConstantActions) != 1 {
		t.Fatalf("got %d demands, want 1", len(snap.ConstantActions))
	}
	if got := snap.ConstantActions[0].EarliestStart; !got.Equal(later) {
		t.Errorf("EarliestStart = %v, want clamped %v", got, later)
	}
}

func TestConstantActionOmittedWhenWindowTooShort(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, _, ctrl := constantActionFixture(t, now)

	// 7h30m into an 8h window leaves 30m, less than the 90m duration.
	later := now.Add(7*time.Hour + 30*time.Minute)
	snap := optimizer.NewSnapshot(later, optimizer.FlatPrice(0.0003), 24*time.Hour)
	if err := ctrl.AddToSnapshot(context.Background(), snap, later, svc); err != nil {
		t.Fatalf("AddToSnapshot: %v", err)
	}
	if len(snap.ConstantActions) != 0 {
		t.Errorf("got %d demands, want 0 for unschedulable window", len(snap.ConstantActions))
	}
}

func TestConstantActionRunningInjectsPastCommitment(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, sim, ctrl := constantActionFixture(t, now)

	schedule := optimizer.NewSchedule()
	schedule.SetConstantAction(&optimizer.AssignedConstantAction{
		DeviceID: 1, Start: now, Duration: 90 * time.Minute, Power: 1800,
	})
	ctrl.UseSchedule(context.Background(), schedule, svc)
	sim.Start(now)

	snap := optimizer.NewSnapshot(now.Add(time.Hour), optimizer.FlatPrice(0.0003), 24*time.Hour)
	if err := ctrl.AddToSnapshot(context.Background(), snap, now.Add(time.Hour), svc); err != nil {
		t.Fatalf("AddToSnapshot: %v", err)
	}
	if len(snap.ConstantActions) != 0 {
		t.Errorf("running action must not be offered for scheduling, got %d", len(snap.ConstantActions))
	}
	if len(snap.PastConstantActions) != 1 {
		t.Fatalf("got %d past commitments, want 1", len(snap.PastConstantActions))
	}
	if got := snap.PastConstantActions[0].Start; !got.Equal(now) {
		t.Errorf("past commitment start = %v, want %v", got, now)
	}
}

func TestConstantActionRejectsScheduleWhileRunning(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, sim, ctrl := constantActionFixture(t, now)

	first := optimizer.NewSchedule()
	first.SetConstantAction(&optimizer.AssignedConstantAction{
		DeviceID: 1, Start: now, Duration: 90 * time.Minute, Power: 1800,
	})
	ctrl.UseSchedule(context.Background(), first, svc)
	sim.Start(now)

	second := optimizer.NewSchedule()
	second.SetConstantAction(&optimizer.AssignedConstantAction{
		DeviceID: 1, Start: now.Add(4 * time.Hour), Duration: 90 * time.Minute, Power: 1800,
	})
	ctrl.UseSchedule(context.Background(), second, svc)

	if got := ctrl.schedule.ConstantAction(1).Start; !got.Equal(now) {
		t.Errorf("schedule replaced while running: start = %v, want %v", got, now)
	}
}

func TestConstantActionUpdateDeviceStartsWhenDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, sim, ctrl := constantActionFixture(t, now)

	schedule := optimizer.NewSchedule()
	schedule.SetConstantAction(&optimizer.AssignedConstantAction{
		DeviceID: 1, Start: now.Add(2 * time.Hour), Duration: 90 * time.Minute, Power: 1800,
	})
	ctrl.UseSchedule(context.Background(), schedule, svc)

	// Before the assigned start nothing happens.
	if err := ctrl.UpdateDevice(context.Background(), now.Add(time.Hour), svc); err != nil {
		t.Fatalf("UpdateDevice early: %v", err)
	}
	if sim.State() != interactor.ActionIdle {
		t.Fatalf("state = %v, want idle before assigned start", sim.State())
	}

	// At the assigned start the action begins.
	if err := ctrl.UpdateDevice(context.Background(), now.Add(2*time.Hour), svc); err != nil {
		t.Fatalf("UpdateDevice due: %v", err)
	}
	if sim.State() != interactor.ActionRunning {
		t.Errorf("state = %v, want running at assigned start", sim.State())
	}
	if got := sim.StartTime(); !got.Equal(now.Add(2 * time.Hour)) {
		t.Errorf("start time = %v, want %v", got, now.Add(2*time.Hour))
	}
}

func TestConstantActionState(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, sim, ctrl := constantActionFixture(t, now)
	sim.Start(now)

	state, err := ctrl.State(context.Background(), svc)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if got := state["state"].(string); got != "running" {
		t.Errorf("state = %q, want running", got)
	}
	if got := state["power"].(float64); got != 1800 {
		t.Errorf("power = %v, want 1800", got)
	}
}

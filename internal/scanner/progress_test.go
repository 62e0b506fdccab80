package scanner

import (
	"errors"
	"testing"
	"time"
)

func TestProgressTracker_PhaseChangesAlwaysNotify(t *testing.T) {
	var calls []Progress
	tracker := NewProgressTracker(func(p Progress) { calls = append(calls, p) })

	tracker.SetPhase(PhaseHashing)
	tracker.SetPhase(PhaseComplete)

	if len(calls) != 2 {
		t.Fatalf("expected 2 callbacks, got %d", len(calls))
	}
	if calls[0].Phase != PhaseHashing || calls[1].Phase != PhaseComplete {
		t.Errorf("phases = %v, %v", calls[0].Phase, calls[1].Phase)
	}
	if calls[1].Current != 0 || calls[1].Total != 0 {
		t.Error("phase change should reset counters")
	}
}

func TestProgressTracker_ThrottlesIncrements(t *testing.T) {
	var calls []Progress
	tracker := NewProgressTracker(func(p Progress) { calls = append(calls, p) })

	tracker.SetTotal(50)
	for i := 0; i < 50; i++ {
		tracker.Increment("item")
	}

	// 50 instant increments cannot all clear a 100ms limiter, but the
	// final one is forced through as phase completion.
	if len(calls) >= 51 {
		t.Errorf("expected throttling to drop updates, got %d callbacks", len(calls))
	}
	last := calls[len(calls)-1]
	if last.Current != 50 {
		t.Errorf("final callback Current = %d, want 50", last.Current)
	}
}

func TestProgressTracker_FinalIncrementDelivered(t *testing.T) {
	var calls []Progress
	tracker := NewProgressTracker(func(p Progress) { calls = append(calls, p) })

	tracker.SetTotal(3)
	tracker.Increment("a")
	tracker.Increment("b")
	tracker.Increment("c")

	last := calls[len(calls)-1]
	if last.Current != 3 {
		t.Errorf("final Current = %d, want 3", last.Current)
	}
	if last.CurrentItem != "c" {
		t.Errorf("final CurrentItem = %q, want c", last.CurrentItem)
	}
}

func TestProgressTracker_AddErrorAlwaysNotifies(t *testing.T) {
	var calls []Progress
	tracker := NewProgressTracker(func(p Progress) { calls = append(calls, p) })

	tracker.AddError(ScanError{
		Path:  "/roms/bad.nes",
		Phase: PhaseHashing,
		Error: errors.New("read failed"),
		Time:  time.Now(),
	})

	if len(calls) != 1 {
		t.Fatalf("expected 1 callback, got %d", len(calls))
	}
	if len(calls[0].Errors) != 1 {
		t.Fatalf("expected 1 recorded error, got %d", len(calls[0].Errors))
	}
	if calls[0].Errors[0].Path != "/roms/bad.nes" {
		t.Errorf("error path = %q", calls[0].Errors[0].Path)
	}
}

func TestProgressTracker_Get(t *testing.T) {
	tracker := NewProgressTracker(nil)

	if got := tracker.Get(); got.Phase != PhaseWalking {
		t.Errorf("initial phase = %q, want %q", got.Phase, PhaseWalking)
	}

	tracker.SetPhase(PhaseHashing)
	tracker.SetTotal(10)
	tracker.Increment("x")

	got := tracker.Get()
	if got.Phase != PhaseHashing || got.Total != 10 || got.Current != 1 {
		t.Errorf("Get() = %+v", got)
	}
}

func TestProgressTracker_NilCallback(t *testing.T) {
	tracker := NewProgressTracker(nil)

	// None of these should panic without a callback.
	tracker.SetPhase(PhaseHashing)
	tracker.SetTotal(2)
	tracker.Increment("a")
	tracker.AddError(ScanError{Error: errors.New("boom")})
	tracker.SetPhase(PhaseComplete)
}

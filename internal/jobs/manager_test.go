package jobs

import (
	"testing"

	"offline-stenographer/internal/domain"
)

// TestManagerLifecycle verifies normal progression to completed state.
func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	if m.IsRunning() {
		t.Fatal("new manager should be idle")
	}

	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !m.IsRunning() {
		t.Fatal("expected running after start")
	}

	if err := m.Transition(domain.JobStatusCompleted); err != nil {
		t.Fatalf("transition to completed: %v", err)
	}

	current := m.Current()
	if current.Status != domain.JobStatusCompleted {
		t.Fatalf("current status = %s, want completed", current.Status)
	}
	if m.IsRunning() {
		t.Fatal("completed job should not report running")
	}
}

// TestManagerRejectsInvalidTransition checks state machine constraints.
func TestManagerRejectsInvalidTransition(t *testing.T) {
	m := NewManager()
	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Transition(domain.JobStatusCompleted); err != nil {
		t.Fatalf("transition to completed: %v", err)
	}

	if err := m.Transition(domain.JobStatusFailed); err == nil {
		t.Fatal("expected invalid transition error from completed to failed")
	}
}

// TestManagerRejectsSecondStart enforces the single-job constraint.
func TestManagerRejectsSecondStart(t *testing.T) {
	m := NewManager()
	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := m.Start("job-2"); err != ErrJobAlreadyRunning {
		t.Fatalf("second start error = %v, want %v", err, ErrJobAlreadyRunning)
	}
}

// TestManagerRestartAfterTerminal allows a fresh run once a job finished.
func TestManagerRestartAfterTerminal(t *testing.T) {
	m := NewManager()
	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Transition(domain.JobStatusFailed); err != nil {
		t.Fatalf("transition to failed: %v", err)
	}

	if err := m.Start("job-2"); err != nil {
		t.Fatalf("restart after terminal: %v", err)
	}
	if m.Current().ID != "job-2" {
		t.Fatalf("current job = %s, want job-2", m.Current().ID)
	}
}

// TestManagerCancel verifies cancel behavior and repeated cancel handling.
func TestManagerCancel(t *testing.T) {
	m := NewManager()
	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := m.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if m.Current().Status != domain.JobStatusCancelled {
		t.Fatalf("status = %s, want cancelled", m.Current().Status)
	}

	if err := m.Cancel(); err != ErrNoRunningJob {
		t.Fatalf("second cancel error = %v, want %v", err, ErrNoRunningJob)
	}
}

package circuitbreaker

import (
	"testing"
	"time"
)

func TestTripsOpenAfterConsecutiveFailures(t *testing.T) {
	cb := New(3, 1, time.Minute)

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed below the threshold, got %s", cb.GetState())
	}

	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open after threshold failures, got %s", cb.GetState())
	}
	if cb.Allow() {
		t.Fatal("open circuit should reject requests")
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(2, 1, time.Minute)

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after interleaved success, got %s", cb.GetState())
	}
}

func TestHalfOpenAfterTimeoutThenCloses(t *testing.T) {
	cb := New(1, 2, 20*time.Millisecond)

	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open, got %s", cb.GetState())
	}

	time.Sleep(30 * time.Millisecond)
	if !cb.Allow() {
		t.Fatal("expected probe to be admitted after the timeout")
	}
	if cb.GetState() != StateHalfOpen {
		t.Fatalf("expected half-open, got %s", cb.GetState())
	}

	cb.RecordSuccess()
	if cb.GetState() != StateHalfOpen {
		t.Fatalf("expected half-open below success threshold, got %s", cb.GetState())
	}
	cb.RecordSuccess()
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after success threshold, got %s", cb.GetState())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(1, 2, 20*time.Millisecond)

	cb.RecordFailure()
	time.Sleep(30 * time.Millisecond)
	if !cb.Allow() {
		t.Fatal("expected probe to be admitted")
	}

	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected failed probe to reopen the circuit, got %s", cb.GetState())
	}
}

func TestOnStateChangeCallback(t *testing.T) {
	cb := New(1, 1, time.Minute)

	var transitions []string
	cb.OnStateChange(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	cb.RecordFailure()
	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Fatalf("unexpected transitions: %v", transitions)
	}
}

package ratelimit

import (
	"testing"
	"time"
)

func TestAllowUpToLimit(t *testing.T) {
	limiter := NewLimiter(3, time.Minute)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("request over the limit should be blocked")
	}
}

func TestCallersAreIndependent(t *testing.T) {
	limiter := NewLimiter(1, time.Minute)
	defer limiter.Stop()

	if !limiter.Allow("10.0.0.1") {
		t.Fatal("first caller should be allowed")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("second caller should be unaffected by the first")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("first caller should be over its limit")
	}
}

func TestWindowSlides(t *testing.T) {
	limiter := NewLimiter(1, 50*time.Millisecond)
	defer limiter.Stop()

	if !limiter.Allow("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("second request should be blocked inside the window")
	}

	time.Sleep(60 * time.Millisecond)
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("request after the window expired should be allowed")
	}
}

func TestStopTerminatesCleanup(t *testing.T) {
	limiter := NewLimiter(1, time.Minute)
	limiter.Stop()

	select {
	case <-limiter.done:
	default:
		t.Fatal("expected Stop to signal the cleanup goroutine")
	}

	// The limiter still answers after Stop; only the janitor is gone.
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("stopped limiter should still serve Allow")
	}
}

func TestEmptyCallerAlwaysAllowed(t *testing.T) {
	limiter := NewLimiter(1, time.Minute)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		if !limiter.Allow("") {
			t.Fatal("unidentified callers are not limited")
		}
	}
}

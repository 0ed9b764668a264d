package security

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestGuard() (*BruteForceGuard, *fakeClock) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return newGuard(log, clock.now), clock
}

func TestBruteForce_SuccessfulAuthResetsCount(t *testing.T) {
	guard, _ := newTestGuard()

	guard.RecordFailure("10.0.0.1")
	guard.RecordFailure("10.0.0.1")
	guard.Reset("10.0.0.1")

	if guard.IsBlocked("10.0.0.1") {
		t.Fatal("client should not be blocked after reset")
	}
	if guard.Len() != 0 {
		t.Errorf("expected no tracked clients, got %d", guard.Len())
	}
}

func TestBruteForce_FailureIncrementsAndBlocks(t *testing.T) {
	guard, _ := newTestGuard()

	for range BruteForceMaxAttempts {
		guard.RecordFailure("10.0.0.2")
	}

	if !guard.IsBlocked("10.0.0.2") {
		t.Fatal("client should be blocked after max failures")
	}
	if guard.IsBlocked("10.0.0.3") {
		t.Fatal("other clients must not be affected")
	}
}

func TestBruteForce_NotBlockedBeforeMax(t *testing.T) {
	guard, _ := newTestGuard()

	for range BruteForceMaxAttempts - 1 {
		guard.RecordFailure("10.0.0.4")
	}

	if guard.IsBlocked("10.0.0.4") {
		t.Fatal("client should not be blocked before max failures")
	}
}

func TestBruteForce_LockoutExpires(t *testing.T) {
	guard, clock := newTestGuard()

	for range BruteForceMaxAttempts {
		guard.RecordFailure("10.0.0.5")
	}

	clock.advance(BruteForceLockout)

	if guard.IsBlocked("10.0.0.5") {
		t.Fatal("lockout should expire")
	}

	guard.sweep()
	if guard.Len() != 0 {
		t.Errorf("expected expired lockout swept, got %d records", guard.Len())
	}
}

func TestBruteForce_WindowResets(t *testing.T) {
	guard, clock := newTestGuard()

	for range BruteForceMaxAttempts - 1 {
		guard.RecordFailure("10.0.0.6")
	}

	clock.advance(BruteForceWindow + time.Second)
	guard.RecordFailure("10.0.0.6")

	if guard.IsBlocked("10.0.0.6") {
		t.Fatal("failures outside the window should not accumulate")
	}
}

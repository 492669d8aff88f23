package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func testConfig() Config {
	return Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             25 * time.Millisecond,
		HalfOpenMaxRequests: 2,
	}
}

func fail(cb *CircuitBreaker) error {
	return cb.Execute(func() error { return errBoom })
}

func succeed(cb *CircuitBreaker) error {
	return cb.Execute(func() error { return nil })
}

func TestOpensAfterFailureThreshold(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 2; i++ {
		if err := fail(cb); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: want errBoom, got %v", i, err)
		}
	}
	if err := succeed(cb); !errors.Is(err, ErrOpen) {
		t.Fatalf("breaker should refuse after threshold, got %v", err)
	}
	if cb.State() != StateOpen {
		t.Fatalf("want open, got %s", cb.State())
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(testConfig())

	if err := fail(cb); !errors.Is(err, errBoom) {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := succeed(cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fail(cb); !errors.Is(err, errBoom) {
		t.Fatalf("breaker must stay closed below threshold, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("want closed, got %s", cb.State())
	}
}

func TestHalfOpenAfterTimeout(t *testing.T) {
	cb := New(testConfig())
	fail(cb)
	fail(cb)
	if err := succeed(cb); !errors.Is(err, ErrOpen) {
		t.Fatalf("want ErrOpen, got %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if err := succeed(cb); err != nil {
		t.Fatalf("probe should pass after timeout, got %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("want half-open, got %s", cb.State())
	}
}

func TestClosesAfterSuccessThreshold(t *testing.T) {
	cb := New(testConfig())
	fail(cb)
	fail(cb)
	succeed(cb) // trips to open
	time.Sleep(40 * time.Millisecond)

	if err := succeed(cb); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if err := succeed(cb); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if err := succeed(cb); err != nil {
		t.Fatalf("call after recovery failed: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("want closed, got %s", cb.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(testConfig())
	fail(cb)
	fail(cb)
	succeed(cb) // trips to open
	time.Sleep(40 * time.Millisecond)

	if err := fail(cb); !errors.Is(err, errBoom) {
		t.Fatalf("probe should run, got %v", err)
	}
	if cb.State() != StateOpen {
		t.Fatalf("failed probe should reopen, got %s", cb.State())
	}
	if err := succeed(cb); !errors.Is(err, ErrOpen) {
		t.Fatalf("reopened breaker should refuse, got %v", err)
	}
}

func TestReset(t *testing.T) {
	cb := New(testConfig())
	fail(cb)
	fail(cb)
	succeed(cb) // trips to open
	cb.Reset()

	if cb.State() != StateClosed {
		t.Fatalf("want closed after reset, got %s", cb.State())
	}
	if err := succeed(cb); err != nil {
		t.Fatalf("call after reset failed: %v", err)
	}
}

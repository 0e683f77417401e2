// Copyright 2025 MA-ISA Protocol

package runtime

import (
	"testing"
	"time"
)

func TestClockNonDecreasing(t *testing.T) {
	c := NewMonotonicClock()

	t1, err := c.Now()
	if err != nil {
		t.Fatalf("now: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	t2, err := c.Now()
	if err != nil {
		t.Fatalf("now: %v", err)
	}

	if t2 < t1 {
		t.Errorf("clock went backwards: %d then %d", t1, t2)
	}
}

func TestClockDelta(t *testing.T) {
	c := NewMonotonicClock()

	t1, err := c.Now()
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	delta, err := c.Delta(t1)
	if err != nil {
		t.Fatal(err)
	}

	if delta < 10 {
		t.Errorf("delta = %d ms, want >= 10", delta)
	}
}

func TestClockRegressionDetected(t *testing.T) {
	c := NewMonotonicClock()
	c.lastTimestamp = 1<<63 - 1 // far future

	if _, err := c.Now(); err != ErrTimeSourceFailed {
		t.Errorf("err = %v, want ErrTimeSourceFailed", err)
	}
}

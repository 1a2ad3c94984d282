package client

import (
	"errors"
	"testing"
)

func TestControlRejectsConcurrentBegin(t *testing.T) {
	var c control
	if err := c.begin(); err != nil {
		t.Fatalf("first begin: %v", err)
	}
	if err := c.begin(); !errors.Is(err, ErrBusy) {
		t.Fatalf("second begin = %v, want ErrBusy", err)
	}
	if got := c.Phase(); got != PhaseInFlight {
		t.Errorf("phase = %v, want %v", got, PhaseInFlight)
	}
}

func TestControlFinishAlwaysReleases(t *testing.T) {
	var c control

	run := func(fail bool) (err error) {
		if berr := c.begin(); berr != nil {
			return berr
		}
		defer c.finish(&err)
		if fail {
			return errors.New("boom")
		}
		return nil
	}

	if err := run(true); err == nil {
		t.Fatal("expected failure")
	}
	if got := c.Phase(); got != PhaseFailed {
		t.Errorf("phase after failure = %v, want %v", got, PhaseFailed)
	}
	// A failed run must not leave the control stuck.
	if err := run(false); err != nil {
		t.Fatalf("rerun after failure: %v", err)
	}
	if got := c.Phase(); got != PhaseSucceeded {
		t.Errorf("phase after success = %v, want %v", got, PhaseSucceeded)
	}
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		PhaseIdle:      "idle",
		PhaseInFlight:  "in-flight",
		PhaseSucceeded: "succeeded",
		PhaseFailed:    "failed",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", p, got, want)
		}
	}
}

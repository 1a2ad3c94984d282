package client

import "sync/atomic"

// Phase is the explicit request-lifecycle state of one submit control.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseInFlight
	PhaseSucceeded
	PhaseFailed
)

// String returns the phase name for status display.
func (p Phase) String() string {
	switch p {
	case PhaseInFlight:
		return "in-flight"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// control guards one logical submit control: at most one request in flight,
// and the terminal transition always runs so the control can never stay stuck
// disabled after an unexpected exit path.
type control struct {
	phase atomic.Int32
}

// begin transitions to in-flight. It fails with ErrBusy when a request is
// already outstanding for this control.
func (c *control) begin() error {
	cur := c.phase.Load()
	if Phase(cur) == PhaseInFlight {
		return ErrBusy
	}
	if !c.phase.CompareAndSwap(cur, int32(PhaseInFlight)) {
		return ErrBusy
	}
	return nil
}

// finish records the terminal phase. Called via defer on every exit path.
func (c *control) finish(err *error) {
	if *err != nil {
		c.phase.Store(int32(PhaseFailed))
		return
	}
	c.phase.Store(int32(PhaseSucceeded))
}

// Phase returns the control's current phase.
func (c *control) Phase() Phase { return Phase(c.phase.Load()) }

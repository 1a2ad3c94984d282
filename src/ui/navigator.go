package ui

import (
	"sync"
	"time"
)

// RedirectDelay is the pause between a successful login/registration and the
// follow-up navigation, mirroring the service's web front end.
const RedirectDelay = 1500 * time.Millisecond

// Navigation targets.
const (
	TargetDashboard = "dashboard"
	TargetLogin     = "login"
)

// Navigator schedules the single post-action navigation. Navigate is
// injectable so tests can observe the call without waiting on wall-clock
// delays.
type Navigator struct {
	Delay    time.Duration
	Navigate func(target string)

	mu    sync.Mutex
	timer *time.Timer
}

// ScheduleRedirect arms exactly one pending navigation to target after the
// configured delay (RedirectDelay when unset). A second call before the timer
// fires replaces the pending navigation rather than stacking another.
func (n *Navigator) ScheduleRedirect(target string) {
	delay := n.Delay
	if delay <= 0 {
		delay = RedirectDelay
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(delay, func() {
		if n.Navigate != nil {
			n.Navigate(target)
		}
	})
}

// Wait blocks until a pending navigation has had time to fire. Used by the
// CLI before exiting so the redirect is not lost with the process.
func (n *Navigator) Wait() {
	n.mu.Lock()
	t := n.timer
	delay := n.Delay
	n.mu.Unlock()
	if t == nil {
		return
	}
	if delay <= 0 {
		delay = RedirectDelay
	}
	time.Sleep(delay + 50*time.Millisecond)
}

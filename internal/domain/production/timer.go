package production

import (
	"fmt"
	"math"
)

// TimerStatus is the lifecycle state of a ProductionTimer
type TimerStatus string

const (
	TimerIdle      TimerStatus = "IDLE"
	TimerRunning   TimerStatus = "RUNNING"
	TimerCompleted TimerStatus = "COMPLETED"
	TimerCancelled TimerStatus = "CANCELLED"
)

// ProgressFunc receives the fraction of the full duration still remaining
// and a human readable countdown label.
type ProgressFunc func(fractionRemaining float64, label string)

// ProductionTimer is a resumable countdown advanced in discrete steps.
//
// Invariants:
// - remaining is in [0, duration]
// - remaining is updated on every Advance, so it is always current
// - a cancel request takes effect on the next Advance, never mid-step
type ProductionTimer struct {
	status          TimerStatus
	duration        float64
	remaining       float64
	cancelRequested bool
	onProgress      ProgressFunc
}

// NewProductionTimer creates an idle timer. onProgress may be nil.
func NewProductionTimer(onProgress ProgressFunc) *ProductionTimer {
	return &ProductionTimer{
		status:     TimerIdle,
		onProgress: onProgress,
	}
}

// Start runs the timer for residual seconds when residual > 0, otherwise
// for the full duration.
func (t *ProductionTimer) Start(duration, residual float64) error {
	if duration <= 0 {
		return fmt.Errorf("timer duration must be positive, got %v", duration)
	}
	if residual < 0 || residual > duration {
		return fmt.Errorf("timer residual %v outside [0, %v]", residual, duration)
	}

	t.duration = duration
	t.remaining = duration
	if residual > 0 {
		t.remaining = residual
	}
	t.cancelRequested = false
	t.status = TimerRunning
	t.report()
	return nil
}

// Advance moves the timer forward by at most dt seconds. It returns how much
// of dt was used and whether the countdown completed during this step.
// A pending cancel request is observed first and consumes nothing.
func (t *ProductionTimer) Advance(dt float64) (used float64, completed bool) {
	if t.status != TimerRunning {
		return 0, false
	}
	if t.cancelRequested {
		t.cancelRequested = false
		t.status = TimerCancelled
		return 0, false
	}
	if dt <= 0 {
		return 0, false
	}

	if dt >= t.remaining {
		used = t.remaining
		t.remaining = 0
		t.status = TimerCompleted
		t.report()
		return used, true
	}

	t.remaining -= dt
	t.report()
	return dt, false
}

// Cancel requests a stop at the next Advance. The residual at that moment
// stays readable through Remaining.
func (t *ProductionTimer) Cancel() {
	if t.status == TimerRunning {
		t.cancelRequested = true
	}
}

// Pause stops a running timer immediately, keeping its residual
func (t *ProductionTimer) Pause() {
	if t.status == TimerRunning {
		t.status = TimerIdle
		t.cancelRequested = false
	}
}

// Reset returns the timer to idle with no residual
func (t *ProductionTimer) Reset() {
	t.status = TimerIdle
	t.remaining = 0
	t.duration = 0
	t.cancelRequested = false
}

func (t *ProductionTimer) Status() TimerStatus {
	return t.status
}

func (t *ProductionTimer) Remaining() float64 {
	return t.remaining
}

func (t *ProductionTimer) Duration() float64 {
	return t.duration
}

func (t *ProductionTimer) CancelRequested() bool {
	return t.cancelRequested
}

// FractionRemaining returns remaining/duration, 0 for an unstarted timer
func (t *ProductionTimer) FractionRemaining() float64 {
	if t.duration <= 0 {
		return 0
	}
	return t.remaining / t.duration
}

// Label formats the remaining time as whole seconds rounded up
func (t *ProductionTimer) Label() string {
	return FormatRemaining(t.remaining)
}

// FormatRemaining renders seconds as "Ns", rounding up and never negative
func FormatRemaining(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%ds", int(math.Ceil(seconds)))
}

func (t *ProductionTimer) report() {
	if t.onProgress != nil {
		t.onProgress(t.FractionRemaining(), t.Label())
	}
}

package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/makifarslan/Mini-Farm/internal/application/logging"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/savegame"
	"github.com/makifarslan/Mini-Farm/internal/domain/shared"
)

// ErrSchedulerStopped is returned by Do once the loop has exited
var ErrSchedulerStopped = errors.New("simulation scheduler stopped")

// Config controls the loop cadence
type Config struct {
	TickInterval     time.Duration
	AutosaveInterval time.Duration // 0 disables autosave
	SaveOnQuit       bool
}

// Saver persists the current game state
type Saver interface {
	Save(ctx context.Context) (*savegame.Snapshot, error)
}

type request struct {
	fn     func() error
	result chan error
}

// Scheduler owns the simulation state. One goroutine runs Run; every tick it
// steps each registered factory by the wall-clock time since the previous
// tick. Work from other goroutines is marshalled onto the loop with Do, so
// the domain needs no locking.
type Scheduler struct {
	registry *production.Registry
	saver    Saver
	clock    shared.Clock
	cfg      Config

	requests chan request
	done     chan struct{}
	lastTick time.Time
	autosave *rate.Limiter
}

// NewScheduler creates a scheduler. saver may be nil when nothing is persisted.
func NewScheduler(registry *production.Registry, saver Saver, clock shared.Clock, cfg Config) *Scheduler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 50 * time.Millisecond
	}

	s := &Scheduler{
		registry: registry,
		saver:    saver,
		clock:    clock,
		cfg:      cfg,
		requests: make(chan request),
		done:     make(chan struct{}),
		lastTick: clock.Now(),
	}
	if saver != nil && cfg.AutosaveInterval > 0 {
		s.autosave = rate.NewLimiter(rate.Every(cfg.AutosaveInterval), 1)
		// spend the initial burst so the first autosave waits a full interval
		s.autosave.AllowN(s.lastTick, 1)
	}
	return s
}

// Run drives the loop until ctx is cancelled, then shuts every factory down
// and saves if configured. Run must be called at most once.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := logging.LoggerFromContext(ctx)
	defer close(s.done)

	s.lastTick = s.clock.Now()
	s.registry.ResumeAll()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	logger.Log(logging.LevelInfo, "Simulation started", map[string]interface{}{
		"action":        "run_simulation",
		"tick_interval": s.cfg.TickInterval.String(),
		"factories":     s.registry.Len(),
	})

	for {
		select {
		case <-ctx.Done():
			return s.shutdown(ctx)
		case <-ticker.C:
			s.Tick(ctx)
		case req := <-s.requests:
			req.result <- req.fn()
		}
	}
}

// Tick steps every factory to the current clock time and runs a due
// autosave. It must be called from the loop goroutine.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()
	s.advanceTo(now)

	if s.autosave != nil && s.autosave.AllowN(now, 1) {
		if _, err := s.saver.Save(ctx); err != nil {
			logging.LoggerFromContext(ctx).Log(logging.LevelError, "Autosave failed", map[string]interface{}{
				"action": "autosave",
				"error":  err.Error(),
			})
		}
	}
}

// Do runs fn on the loop goroutine and waits for its result
func (s *Scheduler) Do(ctx context.Context, fn func() error) error {
	req := request{fn: fn, result: make(chan error, 1)}

	select {
	case s.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrSchedulerStopped
	}

	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) advanceTo(now time.Time) {
	dt := now.Sub(s.lastTick).Seconds()
	s.lastTick = now
	if dt > 0 {
		s.registry.StepAll(dt)
	}
}

func (s *Scheduler) shutdown(ctx context.Context) error {
	logger := logging.LoggerFromContext(ctx)

	s.advanceTo(s.clock.Now())
	s.registry.ShutdownAll()

	if !s.cfg.SaveOnQuit || s.saver == nil {
		logger.Log(logging.LevelInfo, "Simulation stopped", map[string]interface{}{
			"action": "run_simulation",
		})
		return nil
	}

	if _, err := s.saver.Save(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("save on quit failed: %w", err)
	}
	logger.Log(logging.LevelInfo, "Simulation stopped and saved", map[string]interface{}{
		"action": "run_simulation",
	})
	return nil
}

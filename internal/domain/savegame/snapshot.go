package savegame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

var (
	// ErrNoSnapshot means no save exists yet
	ErrNoSnapshot = errors.New("no saved game")

	// ErrCorruptSnapshot means a save exists but cannot be decoded
	ErrCorruptSnapshot = errors.New("saved game is corrupt")
)

// ResourceAmount is one persisted resource quantity
type ResourceAmount struct {
	Kind   resource.Kind `json:"kind"`
	Amount int           `json:"amount"`
}

// FactoryState is one persisted factory
type FactoryState struct {
	FactoryID      production.FactoryID `json:"factoryId"`
	CurrentStored  int                  `json:"currentStored"`
	QueueLength    int                  `json:"queueLength"`
	TimerRemaining float64              `json:"timerRemaining"`
}

// Snapshot is the logical save file. It is built on save and consumed once
// on load.
type Snapshot struct {
	LastSaveTimestamp int64            `json:"lastSaveTimestamp"`
	Resources         []ResourceAmount `json:"resources"`
	Factories         []FactoryState   `json:"factories"`
}

// SavedAt returns the save time
func (s *Snapshot) SavedAt() time.Time {
	return time.Unix(s.LastSaveTimestamp, 0).UTC()
}

// ElapsedSince returns whole seconds between the save and now, never negative
func (s *Snapshot) ElapsedSince(now time.Time) float64 {
	elapsed := now.Unix() - s.LastSaveTimestamp
	if elapsed < 0 {
		return 0
	}
	return float64(elapsed)
}

// Validate rejects snapshots that cannot have been written by a save.
// Per-factory problems, repeated ids included, are left to the loader so
// one bad entry does not cost the rest of the save.
func (s *Snapshot) Validate() error {
	if s.LastSaveTimestamp < 0 {
		return fmt.Errorf("%w: negative timestamp %d", ErrCorruptSnapshot, s.LastSaveTimestamp)
	}
	for _, r := range s.Resources {
		if r.Kind == "" {
			return fmt.Errorf("%w: resource entry without kind", ErrCorruptSnapshot)
		}
	}
	return nil
}

// ToProductionState converts a persisted factory to the domain state
func (f FactoryState) ToProductionState() production.State {
	return production.State{
		ID:             f.FactoryID,
		CurrentStored:  f.CurrentStored,
		QueueLength:    f.QueueLength,
		TimerRemaining: f.TimerRemaining,
	}
}

// FromProductionState converts a domain state for persistence
func FromProductionState(s production.State) FactoryState {
	return FactoryState{
		FactoryID:      s.ID,
		CurrentStored:  s.CurrentStored,
		QueueLength:    s.QueueLength,
		TimerRemaining: s.TimerRemaining,
	}
}

// Repository stores snapshots. Latest returns ErrNoSnapshot when nothing has
// been saved and ErrCorruptSnapshot when the stored data cannot be read.
type Repository interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Latest(ctx context.Context) (*Snapshot, error)
}

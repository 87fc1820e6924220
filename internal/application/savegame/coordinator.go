package savegame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/makifarslan/Mini-Farm/internal/application/logging"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
	domain "github.com/makifarslan/Mini-Farm/internal/domain/savegame"
	"github.com/makifarslan/Mini-Farm/internal/domain/shared"
)

// LoadReport summarizes what a load restored
type LoadReport struct {
	Found          bool
	SavedAt        time.Time
	ElapsedSeconds float64
	Resources      int
	Restored       []production.FactoryID
	Skipped        []production.FactoryID
	Duplicates     []production.FactoryID
	Produced       map[production.FactoryID]int
	// Orders that no longer fit the factory, refunded to the store
	Refunded map[production.FactoryID]int
}

// Coordinator saves and loads the resource store and every registered
// factory. It must run on the goroutine that owns the simulation state.
type Coordinator struct {
	store    *resource.Store
	registry *production.Registry
	repo     domain.Repository
	clock    shared.Clock
}

// NewCoordinator creates a coordinator. A nil clock uses the system clock.
func NewCoordinator(
	store *resource.Store,
	registry *production.Registry,
	repo domain.Repository,
	clock shared.Clock,
) *Coordinator {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Coordinator{
		store:    store,
		registry: registry,
		repo:     repo,
		clock:    clock,
	}
}

// Capture builds a snapshot of the current state stamped with the clock
func (c *Coordinator) Capture() *domain.Snapshot {
	snap := &domain.Snapshot{
		LastSaveTimestamp: c.clock.Now().Unix(),
	}
	for _, kind := range c.store.Kinds() {
		snap.Resources = append(snap.Resources, domain.ResourceAmount{
			Kind:   kind,
			Amount: c.store.Get(kind),
		})
	}
	for _, state := range c.registry.States() {
		snap.Factories = append(snap.Factories, domain.FromProductionState(state))
	}
	return snap
}

// Save captures and persists a snapshot
func (c *Coordinator) Save(ctx context.Context) (*domain.Snapshot, error) {
	logger := logging.LoggerFromContext(ctx)

	snap := c.Capture()
	if err := c.repo.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	logger.Log(logging.LevelInfo, "Game saved", map[string]interface{}{
		"action":    "save_game",
		"timestamp": snap.LastSaveTimestamp,
		"resources": len(snap.Resources),
		"factories": len(snap.Factories),
	})
	return snap, nil
}

// Load reads the latest snapshot and applies it with offline catch-up.
// A missing or corrupt save is reported as not found, never as an error.
func (c *Coordinator) Load(ctx context.Context) (*LoadReport, error) {
	logger := logging.LoggerFromContext(ctx)

	snap, err := c.repo.Latest(ctx)
	switch {
	case errors.Is(err, domain.ErrNoSnapshot):
		logger.Log(logging.LevelInfo, "No saved game found, starting fresh", map[string]interface{}{
			"action": "load_game",
		})
		return &LoadReport{}, nil
	case errors.Is(err, domain.ErrCorruptSnapshot):
		logger.Log(logging.LevelWarning, "Saved game is corrupt, starting fresh", map[string]interface{}{
			"action": "load_game",
			"error":  err.Error(),
		})
		return &LoadReport{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read saved game: %w", err)
	}

	if err := snap.Validate(); err != nil {
		logger.Log(logging.LevelWarning, "Saved game failed validation, starting fresh", map[string]interface{}{
			"action": "load_game",
			"error":  err.Error(),
		})
		return &LoadReport{}, nil
	}

	return c.Apply(ctx, snap), nil
}

// Apply restores resources and fast-forwards every known factory by the
// time since the snapshot was taken. Unknown factory ids are skipped, as is
// every entry after the first for a repeated id.
func (c *Coordinator) Apply(ctx context.Context, snap *domain.Snapshot) *LoadReport {
	logger := logging.LoggerFromContext(ctx)
	now := c.clock.Now()

	report := &LoadReport{
		Found:          true,
		SavedAt:        snap.SavedAt(),
		ElapsedSeconds: snap.ElapsedSince(now),
		Produced:       make(map[production.FactoryID]int),
		Refunded:       make(map[production.FactoryID]int),
	}
	seen := make(map[production.FactoryID]bool, len(snap.Factories))

	for _, r := range snap.Resources {
		c.store.Restore(r.Kind, r.Amount)
		report.Resources++
	}

	for _, fs := range snap.Factories {
		if seen[fs.FactoryID] {
			logger.Log(logging.LevelWarning, "Saved factory appears twice, keeping the first entry", map[string]interface{}{
				"action":     "load_game",
				"factory_id": int(fs.FactoryID),
			})
			report.Skipped = append(report.Skipped, fs.FactoryID)
			report.Duplicates = append(report.Duplicates, fs.FactoryID)
			continue
		}
		seen[fs.FactoryID] = true

		factory, ok := c.registry.Lookup(fs.FactoryID)
		if !ok {
			logger.Log(logging.LevelWarning, "Saved factory is not registered, skipping", map[string]interface{}{
				"action":     "load_game",
				"factory_id": int(fs.FactoryID),
			})
			report.Skipped = append(report.Skipped, fs.FactoryID)
			continue
		}

		result := factory.LoadFromSnapshot(fs.ToProductionState(), report.ElapsedSeconds)
		report.Restored = append(report.Restored, fs.FactoryID)
		report.Produced[fs.FactoryID] = result.Produced
		if result.DroppedOrders > 0 {
			def := factory.Definition()
			logger.Log(logging.LevelWarning, "Saved queue exceeds factory capacity, refunding orders", map[string]interface{}{
				"action":     "load_game",
				"factory_id": int(fs.FactoryID),
				"orders":     result.DroppedOrders,
				"resource":   string(def.Required),
				"refunded":   result.DroppedOrders * def.RequiredAmount,
			})
			report.Refunded[fs.FactoryID] = result.DroppedOrders
		}
	}

	logger.Log(logging.LevelInfo, "Game loaded", map[string]interface{}{
		"action":          "load_game",
		"saved_at":        report.SavedAt.Format(time.RFC3339),
		"elapsed_seconds": report.ElapsedSeconds,
		"restored":        len(report.Restored),
		"skipped":         len(report.Skipped),
		"duplicates":      len(report.Duplicates),
	})
	return report
}

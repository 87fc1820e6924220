package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
	"github.com/makifarslan/Mini-Farm/internal/domain/savegame"
)

// GormSnapshotRepository implements savegame.Repository using GORM.
// Each save is a new row; only the newest retain saves are kept.
type GormSnapshotRepository struct {
	db     *gorm.DB
	retain int
}

// NewGormSnapshotRepository creates a new GORM snapshot repository
func NewGormSnapshotRepository(db *gorm.DB, retain int) *GormSnapshotRepository {
	if retain < 1 {
		retain = 1
	}
	return &GormSnapshotRepository{db: db, retain: retain}
}

// Save writes the snapshot and prunes older saves in one transaction
func (r *GormSnapshotRepository) Save(ctx context.Context, snapshot *savegame.Snapshot) error {
	model := snapshotToModel(snapshot)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		return r.prune(tx)
	})
	if err != nil {
		return err
	}
	return nil
}

// Latest returns the most recent save
func (r *GormSnapshotRepository) Latest(ctx context.Context) (*savegame.Snapshot, error) {
	var model SaveSnapshotModel
	err := r.db.WithContext(ctx).
		Preload("Resources", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Factories", func(db *gorm.DB) *gorm.DB { return db.Order("factory_id ASC") }).
		Order("last_save_timestamp DESC").
		Order("created_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, savegame.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return modelToSnapshot(&model), nil
}

// Count returns the number of stored saves
func (r *GormSnapshotRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&SaveSnapshotModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

func (r *GormSnapshotRepository) prune(tx *gorm.DB) error {
	var ids []string
	err := tx.Model(&SaveSnapshotModel{}).
		Order("last_save_timestamp DESC").
		Order("created_at DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("failed to find old snapshots: %w", err)
	}
	if len(ids) <= r.retain {
		return nil
	}
	stale := ids[r.retain:]

	// Children first; sqlite does not enforce cascades unless foreign keys are enabled
	if err := tx.Where("snapshot_id IN ?", stale).Delete(&SaveResourceModel{}).Error; err != nil {
		return fmt.Errorf("failed to prune resources: %w", err)
	}
	if err := tx.Where("snapshot_id IN ?", stale).Delete(&SaveFactoryModel{}).Error; err != nil {
		return fmt.Errorf("failed to prune factories: %w", err)
	}
	if err := tx.Where("id IN ?", stale).Delete(&SaveSnapshotModel{}).Error; err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return nil
}

func snapshotToModel(snapshot *savegame.Snapshot) *SaveSnapshotModel {
	id := uuid.New().String()
	model := &SaveSnapshotModel{
		ID:                id,
		LastSaveTimestamp: snapshot.LastSaveTimestamp,
		CreatedAt:         time.Now().UTC(),
		Resources:         make([]SaveResourceModel, 0, len(snapshot.Resources)),
		Factories:         make([]SaveFactoryModel, 0, len(snapshot.Factories)),
	}
	for i, r := range snapshot.Resources {
		model.Resources = append(model.Resources, SaveResourceModel{
			SnapshotID: id,
			Position:   i,
			Kind:       string(r.Kind),
			Amount:     r.Amount,
		})
	}
	for _, f := range snapshot.Factories {
		model.Factories = append(model.Factories, SaveFactoryModel{
			SnapshotID:     id,
			FactoryID:      int(f.FactoryID),
			CurrentStored:  f.CurrentStored,
			QueueLength:    f.QueueLength,
			TimerRemaining: f.TimerRemaining,
		})
	}
	return model
}

func modelToSnapshot(model *SaveSnapshotModel) *savegame.Snapshot {
	snapshot := &savegame.Snapshot{
		LastSaveTimestamp: model.LastSaveTimestamp,
		Resources:         make([]savegame.ResourceAmount, 0, len(model.Resources)),
		Factories:         make([]savegame.FactoryState, 0, len(model.Factories)),
	}
	for _, r := range model.Resources {
		snapshot.Resources = append(snapshot.Resources, savegame.ResourceAmount{
			Kind:   resource.Kind(r.Kind),
			Amount: r.Amount,
		})
	}
	for _, f := range model.Factories {
		snapshot.Factories = append(snapshot.Factories, savegame.FactoryState{
			FactoryID:      production.FactoryID(f.FactoryID),
			CurrentStored:  f.CurrentStored,
			QueueLength:    f.QueueLength,
			TimerRemaining: f.TimerRemaining,
		})
	}
	return snapshot
}

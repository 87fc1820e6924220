package persistence

import (
	"time"
)

// SaveSnapshotModel represents the save_snapshots table
type SaveSnapshotModel struct {
	ID                string              `gorm:"column:id;primaryKey;type:varchar(36)"`
	LastSaveTimestamp int64               `gorm:"column:last_save_timestamp;not null;index"`
	CreatedAt         time.Time           `gorm:"column:created_at;not null"`
	Resources         []SaveResourceModel `gorm:"foreignKey:SnapshotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Factories         []SaveFactoryModel  `gorm:"foreignKey:SnapshotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (SaveSnapshotModel) TableName() string {
	return "save_snapshots"
}

// SaveResourceModel represents the save_resources table
type SaveResourceModel struct {
	ID         int    `gorm:"column:id;primaryKey;autoIncrement"`
	SnapshotID string `gorm:"column:snapshot_id;not null;index"`
	Position   int    `gorm:"column:position;not null"`
	Kind       string `gorm:"column:kind;not null"`
	Amount     int    `gorm:"column:amount;not null;default:0"`
}

func (SaveResourceModel) TableName() string {
	return "save_resources"
}

// SaveFactoryModel represents the save_factories table
type SaveFactoryModel struct {
	ID             int     `gorm:"column:id;primaryKey;autoIncrement"`
	SnapshotID     string  `gorm:"column:snapshot_id;not null;index"`
	FactoryID      int     `gorm:"column:factory_id;not null"`
	CurrentStored  int     `gorm:"column:current_stored;not null;default:0"`
	QueueLength    int     `gorm:"column:queue_length;not null;default:0"`
	TimerRemaining float64 `gorm:"column:timer_remaining;not null;default:0"`
}

func (SaveFactoryModel) TableName() string {
	return "save_factories"
}

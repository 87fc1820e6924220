package config

// SaveConfig selects where snapshots are stored
type SaveConfig struct {
	// Backend: "file" (JSON on disk) or "database" (gorm)
	Backend string `mapstructure:"backend" validate:"required,oneof=file database"`

	// Save file location for the file backend. A ".zst" suffix enables compression.
	Path string `mapstructure:"path" validate:"required_if=Backend file"`

	// Compress the save file with zstd
	Compress bool `mapstructure:"compress"`

	// Number of snapshots kept by the database backend
	Retain int `mapstructure:"retain" validate:"min=1"`
}

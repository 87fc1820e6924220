package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/makifarslan/Mini-Farm/internal/domain/savegame"
)

// zstd frame magic number, little endian
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// FileSnapshotRepository keeps a single save as JSON on disk, optionally
// zstd compressed. Writes go through a temp file and rename so a crash
// never leaves a half-written save behind.
type FileSnapshotRepository struct {
	path     string
	compress bool
}

// NewFileSnapshotRepository creates a file repository. Paths ending in .zst
// are always compressed.
func NewFileSnapshotRepository(path string, compress bool) *FileSnapshotRepository {
	return &FileSnapshotRepository{
		path:     path,
		compress: compress || strings.HasSuffix(path, ".zst"),
	}
}

// Path returns the save file location
func (r *FileSnapshotRepository) Path() string {
	return r.path
}

// Save replaces the save file with snapshot
func (r *FileSnapshotRepository) Save(ctx context.Context, snapshot *savegame.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if r.compress {
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("failed to create encoder: %w", err)
		}
		data = encoder.EncodeAll(data, nil)
		_ = encoder.Close()
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write save: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close save: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace save: %w", err)
	}
	return nil
}

// Latest reads the save file. Compressed and plain saves are both accepted
// regardless of how the repository is configured.
func (r *FileSnapshotRepository) Latest(ctx context.Context) (*savegame.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, savegame.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save: %w", err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		defer decoder.Close()
		data, err = decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", savegame.ErrCorruptSnapshot, err)
		}
	}

	var snapshot savegame.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", savegame.ErrCorruptSnapshot, err)
	}
	return &snapshot, nil
}

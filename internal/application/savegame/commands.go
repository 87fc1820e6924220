package savegame

import (
	"context"
	"fmt"

	"github.com/makifarslan/Mini-Farm/internal/application/common"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	domain "github.com/makifarslan/Mini-Farm/internal/domain/savegame"
)

// SaveGameCommand - Command to persist the current game state
type SaveGameCommand struct{}

// SaveGameResponse - Response from save game command
type SaveGameResponse struct {
	Snapshot *domain.Snapshot
}

// LoadGameCommand - Command to restore the latest save with offline catch-up
type LoadGameCommand struct{}

// LoadGameResponse - Response from load game command
type LoadGameResponse struct {
	Report *LoadReport
}

// SaveGameHandler - Handles save and load game commands
type SaveGameHandler struct {
	coordinator *Coordinator
	executor    common.Executor
}

// NewSaveGameHandler creates a new save game handler. Register it for both
// SaveGameCommand and LoadGameCommand.
func NewSaveGameHandler(coordinator *Coordinator, executor common.Executor) *SaveGameHandler {
	return &SaveGameHandler{
		coordinator: coordinator,
		executor:    executor,
	}
}

// Handle executes the save or load command on the simulation goroutine
func (h *SaveGameHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	switch request.(type) {
	case *SaveGameCommand:
		var snap *domain.Snapshot
		err := h.executor.Do(ctx, func() error {
			var err error
			snap, err = h.coordinator.Save(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		return &SaveGameResponse{Snapshot: snap}, nil

	case *LoadGameCommand:
		var report *LoadReport
		err := h.executor.Do(ctx, func() error {
			var err error
			report, err = h.coordinator.Load(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		return &LoadGameResponse{Report: report}, nil

	default:
		return nil, fmt.Errorf("invalid request type")
	}
}

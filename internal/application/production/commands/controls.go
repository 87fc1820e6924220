package commands

import (
	"context"
	"fmt"

	"github.com/makifarslan/Mini-Farm/internal/application/common"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	"github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
)

// ControlsHandler - Handles open and close controls commands
type ControlsHandler struct {
	registry *production.Registry
	executor common.Executor
}

// NewControlsHandler creates a new controls handler. Register it for both
// OpenControlsCommand and CloseControlsCommand.
func NewControlsHandler(
	registry *production.Registry,
	executor common.Executor,
) *ControlsHandler {
	return &ControlsHandler{
		registry: registry,
		executor: executor,
	}
}

// Handle opens or closes factory controls
func (h *ControlsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	response := &types.ControlsResponse{}

	var apply func() error
	switch cmd := request.(type) {
	case *types.OpenControlsCommand:
		apply = func() error {
			factory, err := h.registry.Get(cmd.FactoryID)
			if err != nil {
				return err
			}
			h.registry.SetActive(factory)
			return nil
		}
	case *types.CloseControlsCommand:
		apply = func() error {
			h.registry.Close()
			return nil
		}
	default:
		return nil, fmt.Errorf("invalid request type")
	}

	err := h.executor.Do(ctx, func() error {
		if err := apply(); err != nil {
			return err
		}
		if active, ok := h.registry.Active(); ok {
			view := active.View()
			response.Active = &view
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

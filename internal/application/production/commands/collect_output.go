package commands

import (
	"context"
	"fmt"

	"github.com/makifarslan/Mini-Farm/internal/application/common"
	"github.com/makifarslan/Mini-Farm/internal/application/logging"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	"github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
)

// CollectOutputHandler - Handles collect output commands
type CollectOutputHandler struct {
	registry *production.Registry
	executor common.Executor
}

// NewCollectOutputHandler creates a new collect output handler
func NewCollectOutputHandler(
	registry *production.Registry,
	executor common.Executor,
) *CollectOutputHandler {
	return &CollectOutputHandler{
		registry: registry,
		executor: executor,
	}
}

// Handle executes the collect output command
func (h *CollectOutputHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.CollectOutputCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var response *types.CollectOutputResponse
	err := h.executor.Do(ctx, func() error {
		factory, err := h.registry.Get(cmd.FactoryID)
		if err != nil {
			return err
		}

		var collected int
		if cmd.OpenControls {
			collected = h.registry.CollectAndOpen(factory)
		} else {
			collected = factory.CollectOutput()
		}
		response = &types.CollectOutputResponse{
			Collected: collected,
			Factory:   factory.View(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if response.Collected > 0 {
		logging.LoggerFromContext(ctx).Log(logging.LevelInfo, "Output collected", map[string]interface{}{
			"action":     "collect_output",
			"factory_id": int(cmd.FactoryID),
			"resource":   response.Factory.Produced,
			"amount":     response.Collected,
		})
	}
	return response, nil
}

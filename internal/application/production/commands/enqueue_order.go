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

// EnqueueOrderHandler - Handles enqueue order commands
type EnqueueOrderHandler struct {
	registry *production.Registry
	executor common.Executor
}

// NewEnqueueOrderHandler creates a new enqueue order handler
func NewEnqueueOrderHandler(
	registry *production.Registry,
	executor common.Executor,
) *EnqueueOrderHandler {
	return &EnqueueOrderHandler{
		registry: registry,
		executor: executor,
	}
}

// Handle executes the enqueue order command. A rejected order is a normal
// response, not an error.
func (h *EnqueueOrderHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.EnqueueOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var response *types.EnqueueOrderResponse
	err := h.executor.Do(ctx, func() error {
		factory, err := h.registry.Get(cmd.FactoryID)
		if err != nil {
			return err
		}

		result := factory.EnqueueOrder()
		response = &types.EnqueueOrderResponse{
			Accepted: result.Accepted,
			Reason:   result.Reason,
			Factory:  factory.View(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger := logging.LoggerFromContext(ctx)
	if response.Accepted {
		logger.Log(logging.LevelInfo, "Order queued", map[string]interface{}{
			"action":     "enqueue_order",
			"factory_id": int(cmd.FactoryID),
			"queue":      response.Factory.Queue,
		})
	} else {
		logger.Log(logging.LevelInfo, "Order rejected", map[string]interface{}{
			"action":     "enqueue_order",
			"factory_id": int(cmd.FactoryID),
			"reason":     string(response.Reason),
		})
	}
	return response, nil
}

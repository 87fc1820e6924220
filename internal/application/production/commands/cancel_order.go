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

// CancelOrderHandler - Handles cancel order commands
type CancelOrderHandler struct {
	registry *production.Registry
	executor common.Executor
}

// NewCancelOrderHandler creates a new cancel order handler
func NewCancelOrderHandler(
	registry *production.Registry,
	executor common.Executor,
) *CancelOrderHandler {
	return &CancelOrderHandler{
		registry: registry,
		executor: executor,
	}
}

// Handle executes the cancel order command
func (h *CancelOrderHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.CancelOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var response *types.CancelOrderResponse
	err := h.executor.Do(ctx, func() error {
		factory, err := h.registry.Get(cmd.FactoryID)
		if err != nil {
			return err
		}

		response = &types.CancelOrderResponse{}
		if factory.CancelOrder() {
			response.Cancelled = true
			response.Refunded = factory.Definition().RequiredAmount
		}
		response.Factory = factory.View()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if response.Cancelled {
		logging.LoggerFromContext(ctx).Log(logging.LevelInfo, "Order cancelled", map[string]interface{}{
			"action":     "cancel_order",
			"factory_id": int(cmd.FactoryID),
			"refunded":   response.Refunded,
			"queue":      response.Factory.Queue,
		})
	}
	return response, nil
}

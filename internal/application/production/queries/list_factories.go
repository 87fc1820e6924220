package queries

import (
	"context"
	"fmt"

	"github.com/makifarslan/Mini-Farm/internal/application/common"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	"github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
)

// ListFactoriesHandler handles the ListFactories query
type ListFactoriesHandler struct {
	registry *production.Registry
	executor common.Executor
}

// NewListFactoriesHandler creates a new ListFactoriesHandler
func NewListFactoriesHandler(registry *production.Registry, executor common.Executor) *ListFactoriesHandler {
	return &ListFactoriesHandler{registry: registry, executor: executor}
}

// Handle executes the ListFactories query
func (h *ListFactoriesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*types.ListFactoriesQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListFactoriesQuery")
	}

	response := &types.ListFactoriesResponse{}
	err := h.executor.Do(ctx, func() error {
		for _, f := range h.registry.All() {
			response.Factories = append(response.Factories, f.View())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

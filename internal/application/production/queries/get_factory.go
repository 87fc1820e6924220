package queries

import (
	"context"
	"fmt"

	"github.com/makifarslan/Mini-Farm/internal/application/common"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	"github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
)

// GetFactoryHandler handles the GetFactory query
type GetFactoryHandler struct {
	registry *production.Registry
	executor common.Executor
}

// NewGetFactoryHandler creates a new GetFactoryHandler
func NewGetFactoryHandler(registry *production.Registry, executor common.Executor) *GetFactoryHandler {
	return &GetFactoryHandler{registry: registry, executor: executor}
}

// Handle executes the GetFactory query
func (h *GetFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*types.GetFactoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetFactoryQuery")
	}

	response := &types.GetFactoryResponse{}
	err := h.executor.Do(ctx, func() error {
		factory, err := h.registry.Get(query.FactoryID)
		if err != nil {
			return err
		}
		response.Factory = factory.View()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

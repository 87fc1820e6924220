package queries

import (
	"context"
	"fmt"

	"github.com/makifarslan/Mini-Farm/internal/application/common"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	"github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

// ListResourcesHandler handles the ListResources query
type ListResourcesHandler struct {
	store    *resource.Store
	executor common.Executor
}

// NewListResourcesHandler creates a new ListResourcesHandler
func NewListResourcesHandler(store *resource.Store, executor common.Executor) *ListResourcesHandler {
	return &ListResourcesHandler{store: store, executor: executor}
}

// Handle executes the ListResources query
func (h *ListResourcesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*types.ListResourcesQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListResourcesQuery")
	}

	response := &types.ListResourcesResponse{}
	err := h.executor.Do(ctx, func() error {
		for _, kind := range h.store.Kinds() {
			response.Resources = append(response.Resources, types.ResourceDTO{
				Kind:   kind,
				Amount: h.store.Get(kind),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

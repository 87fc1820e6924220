package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makifarslan/Mini-Farm/internal/application/common"
	"github.com/makifarslan/Mini-Farm/internal/application/production/queries"
	"github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

func TestQueries(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.Kind("EGGS"), 4)
	registry := production.NewRegistry()
	f, err := production.NewFactory(production.Definition{
		ID: 3, Name: "Bakery", Variant: production.VariantQueued,
		Produced: resource.KindBread, Required: resource.KindFlour, RequiredAmount: 1,
		Capacity: 5, CycleDuration: 15,
	}, store)
	require.NoError(t, err)
	require.NoError(t, registry.Register(f))
	exec := common.InlineExecutor{}
	ctx := context.Background()

	// Act
	getResp, err := queries.NewGetFactoryHandler(registry, exec).Handle(ctx, &types.GetFactoryQuery{FactoryID: 3})
	require.NoError(t, err)
	listResp, err := queries.NewListFactoriesHandler(registry, exec).Handle(ctx, &types.ListFactoriesQuery{})
	require.NoError(t, err)
	resResp, err := queries.NewListResourcesHandler(store, exec).Handle(ctx, &types.ListResourcesQuery{})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "Bakery", getResp.(*types.GetFactoryResponse).Factory.Name)
	assert.Len(t, listResp.(*types.ListFactoriesResponse).Factories, 1)
	assert.Equal(t, []types.ResourceDTO{
		{Kind: resource.KindWheat},
		{Kind: resource.KindFlour},
		{Kind: resource.KindBread},
		{Kind: resource.Kind("EGGS"), Amount: 4},
	}, resResp.(*types.ListResourcesResponse).Resources)

	_, err = queries.NewGetFactoryHandler(registry, exec).Handle(ctx, &types.GetFactoryQuery{FactoryID: 1})
	assert.ErrorIs(t, err, production.ErrFactoryNotFound)

	_, err = queries.NewListResourcesHandler(store, exec).Handle(ctx, &types.ListFactoriesQuery{})
	assert.Error(t, err)
}

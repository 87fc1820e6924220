package types

import (
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

// GetFactoryQuery - Query for one factory's projection
type GetFactoryQuery struct {
	FactoryID production.FactoryID
}

// GetFactoryResponse - Response from get factory query
type GetFactoryResponse struct {
	Factory production.View
}

// ListFactoriesQuery - Query for every factory ordered by id
type ListFactoriesQuery struct{}

// ListFactoriesResponse - Response from list factories query
type ListFactoriesResponse struct {
	Factories []production.View
}

// ListResourcesQuery - Query for every known resource quantity
type ListResourcesQuery struct{}

// ResourceDTO - One resource quantity
type ResourceDTO struct {
	Kind   resource.Kind
	Amount int
}

// ListResourcesResponse - Response from list resources query
type ListResourcesResponse struct {
	Resources []ResourceDTO
}

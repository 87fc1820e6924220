package config

import (
	"fmt"
	"time"

	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

// FactoryConfig describes one factory in the farm
type FactoryConfig struct {
	// Stable id used as the save file join key. Never reuse an id.
	ID int `mapstructure:"id" validate:"required,min=1"`

	Name string `mapstructure:"name"`

	// Variant: "queued" (paid orders) or "continuous" (free, runs while below capacity)
	Variant string `mapstructure:"variant" validate:"required,oneof=queued continuous"`

	Produces string `mapstructure:"produces" validate:"required"`

	// Required input, queued factories only
	Requires       string `mapstructure:"requires" validate:"required_if=Variant queued"`
	RequiredAmount int    `mapstructure:"required_amount" validate:"min=0"`

	Capacity int `mapstructure:"capacity" validate:"min=0"`

	CycleDuration time.Duration `mapstructure:"cycle_duration" validate:"required"`
}

// Definition converts the configuration into a factory definition
func (f FactoryConfig) Definition() (production.Definition, error) {
	variant, err := production.ParseVariant(f.Variant)
	if err != nil {
		return production.Definition{}, err
	}
	produced, err := resource.ParseKind(f.Produces)
	if err != nil {
		return production.Definition{}, fmt.Errorf("factory %d: %w", f.ID, err)
	}

	def := production.Definition{
		ID:             production.FactoryID(f.ID),
		Name:           f.Name,
		Variant:        variant,
		Produced:       produced,
		RequiredAmount: f.RequiredAmount,
		Capacity:       f.Capacity,
		CycleDuration:  f.CycleDuration.Seconds(),
	}
	if variant == production.VariantQueued {
		required, err := resource.ParseKind(f.Requires)
		if err != nil {
			return production.Definition{}, fmt.Errorf("factory %d: %w", f.ID, err)
		}
		def.Required = required
	}
	return def, def.Validate()
}

// DefaultFactories is the starting farm: a hay field feeding a mill feeding a bakery
func DefaultFactories() []FactoryConfig {
	return []FactoryConfig{
		{ID: 1, Name: "Hay Field", Variant: "continuous", Produces: "WHEAT", Capacity: 5, CycleDuration: 5 * time.Second},
		{ID: 2, Name: "Mill", Variant: "queued", Produces: "FLOUR", Requires: "WHEAT", RequiredAmount: 1, Capacity: 5, CycleDuration: 10 * time.Second},
		{ID: 3, Name: "Bakery", Variant: "queued", Produces: "BREAD", Requires: "FLOUR", RequiredAmount: 1, Capacity: 5, CycleDuration: 15 * time.Second},
	}
}

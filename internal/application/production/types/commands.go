package types

import "github.com/makifarslan/Mini-Farm/internal/domain/production"

// Production command types - shared between handlers and the CLI

// EnqueueOrderCommand - Command to pay for and queue one unit at a factory
type EnqueueOrderCommand struct {
	FactoryID production.FactoryID
}

// EnqueueOrderResponse - Response from enqueue order command
type EnqueueOrderResponse struct {
	Accepted bool
	Reason   production.RejectReason // empty when accepted
	Factory  production.View
}

// CancelOrderCommand - Command to cancel the most recent queued order
type CancelOrderCommand struct {
	FactoryID production.FactoryID
}

// CancelOrderResponse - Response from cancel order command
type CancelOrderResponse struct {
	Cancelled bool
	Refunded  int
	Factory   production.View
}

// CollectOutputCommand - Command to move a factory's stored output into the store.
// OpenControls mirrors clicking the factory: collect then show its controls.
type CollectOutputCommand struct {
	FactoryID    production.FactoryID
	OpenControls bool
}

// CollectOutputResponse - Response from collect output command
type CollectOutputResponse struct {
	Collected int
	Factory   production.View
}

// OpenControlsCommand - Command to show one factory's controls, closing any other
type OpenControlsCommand struct {
	FactoryID production.FactoryID
}

// CloseControlsCommand - Command to close whichever controls are open
type CloseControlsCommand struct{}

// ControlsResponse - Response from open/close controls commands
type ControlsResponse struct {
	Active *production.View // nil when nothing is open
}

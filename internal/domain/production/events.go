package production

import "github.com/makifarslan/Mini-Farm/internal/domain/resource"

// EventType names a factory notification
type EventType string

const (
	EventOrderAccepted     EventType = "ORDER_ACCEPTED"
	EventOrderRejected     EventType = "ORDER_REJECTED"
	EventOrderCancelled    EventType = "ORDER_CANCELLED"
	EventOrdersRefunded    EventType = "ORDERS_REFUNDED"
	EventUnitProduced      EventType = "UNIT_PRODUCED"
	EventOutputCollected   EventType = "OUTPUT_COLLECTED"
	EventProductionStarted EventType = "PRODUCTION_STARTED"
	EventProductionStopped EventType = "PRODUCTION_STOPPED"
	EventCatchUpApplied    EventType = "CATCH_UP_APPLIED"
	EventControlsOpened    EventType = "CONTROLS_OPENED"
	EventControlsClosed    EventType = "CONTROLS_CLOSED"
	EventProgress          EventType = "PROGRESS"
)

// Event is emitted synchronously to factory subscribers
type Event struct {
	Type      EventType
	FactoryID FactoryID
	Resource  resource.Kind
	Amount    int
	Reason    RejectReason
	Label     string
	Fraction  float64
}

// Listener receives factory events
type Listener func(Event)

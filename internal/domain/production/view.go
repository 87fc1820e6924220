package production

import "fmt"

// View is the read-only projection shown by a factory control panel
type View struct {
	ID                FactoryID
	Name              string
	Variant           Variant
	Produced          string
	Required          string
	RequiredAmount    int
	Stored            int
	Queue             int
	Capacity          int
	QueueLabel        string
	StatusLabel       string
	RemainingLabel    string
	FractionRemaining float64
	Producing         bool
	CanEnqueue        bool
	CanCancel         bool
	CanCollect        bool
	ControlsOpen      bool
}

// View builds the projection from current state
func (f *Factory) View() View {
	v := View{
		ID:             f.def.ID,
		Name:           f.def.Name,
		Variant:        f.def.Variant,
		Produced:       string(f.def.Produced),
		Required:       string(f.def.Required),
		RequiredAmount: f.def.RequiredAmount,
		Stored:         f.currentStored,
		Queue:          f.queueLength,
		Capacity:       f.def.Capacity,
		QueueLabel:     fmt.Sprintf("%d/%d", f.queueLength, f.def.Capacity),
		Producing:      f.IsProducing(),
		CanCancel:      f.queueLength > 0,
		CanCollect:     f.currentStored > 0,
		ControlsOpen:   f.controlsOpen,
	}

	switch {
	case f.currentStored >= f.def.Capacity:
		v.StatusLabel = "Full"
	case f.queueLength > 0:
		v.StatusLabel = fmt.Sprintf("Queue: %d", f.queueLength)
	case v.Producing:
		v.StatusLabel = "Producing"
	default:
		v.StatusLabel = "Idle"
	}

	if v.Producing {
		v.RemainingLabel = f.timer.Label()
		v.FractionRemaining = f.timer.FractionRemaining()
	}

	v.CanEnqueue = f.behavior.acceptsOrders() &&
		f.queueLength < f.def.Capacity &&
		f.queueLength+f.currentStored < f.def.Capacity &&
		f.store.Has(f.def.Required, f.def.RequiredAmount)

	return v
}

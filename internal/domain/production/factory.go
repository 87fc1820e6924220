package production

import (
	"math"

	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
	"github.com/makifarslan/Mini-Farm/internal/domain/shared"
)

// FactoryID is the stable identity of a factory, used as the save join key
type FactoryID int

// Definition is the static configuration of a factory
type Definition struct {
	ID             FactoryID
	Name           string
	Variant        Variant
	Produced       resource.Kind
	Required       resource.Kind
	RequiredAmount int
	Capacity       int
	CycleDuration  float64
}

// Validate checks the definition for values the state machine cannot run with
func (d Definition) Validate() error {
	id := int(d.ID)
	if d.ID <= 0 {
		return shared.NewFactoryDefinitionError(id, "id must be positive")
	}
	if d.Variant != VariantQueued && d.Variant != VariantContinuous {
		return shared.NewFactoryDefinitionError(id, "unknown variant "+string(d.Variant))
	}
	if d.Produced == "" {
		return shared.NewFactoryDefinitionError(id, "produced resource is required")
	}
	if d.Variant == VariantQueued {
		if d.Required == "" {
			return shared.NewFactoryDefinitionError(id, "required resource is required for queued factories")
		}
		if d.RequiredAmount < 1 {
			return shared.NewFactoryDefinitionError(id, "required amount must be at least 1")
		}
	}
	if d.Capacity < 0 {
		return shared.NewFactoryDefinitionError(id, "capacity must not be negative")
	}
	if d.CycleDuration <= 0 || math.IsNaN(d.CycleDuration) || math.IsInf(d.CycleDuration, 0) {
		return shared.NewFactoryDefinitionError(id, "cycle duration must be a positive number of seconds")
	}
	return nil
}

// RejectReason explains why an order was not accepted
type RejectReason string

const (
	RejectNone                 RejectReason = ""
	RejectQueueFull            RejectReason = "QUEUE_FULL"
	RejectInsufficientResource RejectReason = "INSUFFICIENT_RESOURCE"
	RejectNotSupported         RejectReason = "NOT_SUPPORTED"
)

// OrderResult reports the outcome of EnqueueOrder
type OrderResult struct {
	Accepted    bool
	Reason      RejectReason
	QueueLength int
}

// State is the persisted part of a factory. TimerRemaining holds the
// seconds already spent on the in-flight cycle, 0 at a cycle boundary.
type State struct {
	ID             FactoryID
	CurrentStored  int
	QueueLength    int
	TimerRemaining float64
}

// Factory converts a required resource into a produced resource over time.
//
// The production loop is a suspendable task advanced by Step once per
// scheduler tick. Suspension points are exactly the timer steps; a cancel
// request is observed at the top of the next Step.
//
// Invariants:
// - 0 <= currentStored <= capacity
// - 0 <= queueLength and currentStored + queueLength <= capacity
// - progress is in [0, cycleDuration) and is 0 when no work remains
//
// Not safe for concurrent use.
type Factory struct {
	def      Definition
	behavior behavior
	store    *resource.Store
	timer    *ProductionTimer

	currentStored int
	queueLength   int
	progress      float64

	running      bool
	idleWait     float64
	controlsOpen bool

	listeners      map[int]Listener
	nextListenerID int
	lastLabel      string
}

// NewFactory creates an idle factory bound to store
func NewFactory(def Definition, store *resource.Store) (*Factory, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, shared.NewFactoryDefinitionError(int(def.ID), "resource store is required")
	}

	f := &Factory{
		def:       def,
		behavior:  behaviorFor(def.Variant),
		store:     store,
		listeners: make(map[int]Listener),
	}
	f.timer = NewProductionTimer(f.onTimerProgress)
	return f, nil
}

func (f *Factory) ID() FactoryID {
	return f.def.ID
}

func (f *Factory) Name() string {
	return f.def.Name
}

func (f *Factory) Definition() Definition {
	return f.def
}

func (f *Factory) Variant() Variant {
	return f.def.Variant
}

func (f *Factory) Capacity() int {
	return f.def.Capacity
}

func (f *Factory) CurrentStored() int {
	return f.currentStored
}

func (f *Factory) QueueLength() int {
	return f.queueLength
}

func (f *Factory) TimerRemaining() float64 {
	return f.progress
}

func (f *Factory) ControlsOpen() bool {
	return f.controlsOpen
}

func (f *Factory) Timer() *ProductionTimer {
	return f.timer
}

func (f *Factory) ProducedResource() resource.Kind {
	return f.def.Produced
}

// IsRunning reports whether the production loop task is alive
func (f *Factory) IsRunning() bool {
	return f.running
}

// IsProducing reports whether a cycle is in flight and not being cancelled
func (f *Factory) IsProducing() bool {
	return f.running && f.timer.Status() == TimerRunning && !f.timer.CancelRequested()
}

// State returns the persisted view of the factory
func (f *Factory) State() State {
	return State{
		ID:             f.def.ID,
		CurrentStored:  f.currentStored,
		QueueLength:    f.queueLength,
		TimerRemaining: f.progress,
	}
}

// EnqueueOrder pays for one unit and queues it. Rejections leave every
// piece of state untouched.
func (f *Factory) EnqueueOrder() OrderResult {
	if !f.behavior.acceptsOrders() {
		return f.reject(RejectNotSupported)
	}
	if f.queueLength >= f.def.Capacity || f.currentStored+f.queueLength >= f.def.Capacity {
		return f.reject(RejectQueueFull)
	}
	if !f.store.Consume(f.def.Required, f.def.RequiredAmount) {
		return f.reject(RejectInsufficientResource)
	}

	f.queueLength++
	f.emit(Event{Type: EventOrderAccepted, Resource: f.def.Required, Amount: f.def.RequiredAmount})

	if f.queueLength == 1 {
		f.startLoop()
	}
	return OrderResult{Accepted: true, QueueLength: f.queueLength}
}

// CancelOrder removes one queued order and refunds its cost. Cancelling the
// last order stops the loop and discards the partial cycle.
func (f *Factory) CancelOrder() bool {
	if f.queueLength <= 0 {
		return false
	}

	f.queueLength--
	f.store.Add(f.def.Required, f.def.RequiredAmount)
	f.emit(Event{Type: EventOrderCancelled, Resource: f.def.Required, Amount: f.def.RequiredAmount})

	if f.queueLength == 0 {
		f.timer.Cancel()
		f.progress = 0
	}
	return true
}

// CollectOutput moves every stored unit into the resource store and returns
// how many were moved. Returns 0 when nothing is stored.
func (f *Factory) CollectOutput() int {
	if f.currentStored <= 0 {
		return 0
	}

	amount := f.currentStored
	f.currentStored = 0
	f.store.Add(f.def.Produced, amount)
	f.emit(Event{Type: EventOutputCollected, Resource: f.def.Produced, Amount: amount})

	// wake an idle continuous loop so freed capacity is used immediately
	if f.running && f.timer.Status() != TimerRunning {
		f.idleWait = 0
	}
	return amount
}

// Step advances the production loop by dt seconds. Time left over after a
// cycle completes carries into the next cycle.
func (f *Factory) Step(dt float64) {
	if !f.running {
		return
	}
	if f.timer.CancelRequested() {
		f.timer.Advance(0)
		f.stopLoop()
		return
	}

	budget := math.Max(dt, 0)
	for f.running && budget > 0 {
		if f.timer.Status() != TimerRunning {
			if budget < f.idleWait {
				f.idleWait -= budget
				return
			}
			budget -= f.idleWait
			f.idleWait = 0
			if !f.behavior.hasWork(f) {
				f.idleWait = IdlePollInterval - math.Mod(budget, IdlePollInterval)
				return
			}
			f.startCycle()
			continue
		}

		used, completed := f.timer.Advance(budget)
		f.progress += used
		budget -= used
		if !completed {
			return
		}
		f.finishCycle()
	}
}

// Shutdown stops the loop immediately. Progress on the in-flight cycle is
// kept so it can be saved and resumed.
func (f *Factory) Shutdown() {
	if !f.running {
		return
	}
	f.timer.Pause()
	f.running = false
	f.idleWait = 0
	f.emit(Event{Type: EventProductionStopped})
}

// Resume restarts the loop if there is work, or idles a continuous factory
// until capacity frees up.
func (f *Factory) Resume() {
	if f.running {
		return
	}
	if f.behavior.hasWork(f) {
		f.startLoop()
		return
	}
	if f.behavior.idlesWhenBlocked() {
		f.running = true
		f.idleWait = 0
		f.timer.Reset()
		f.emit(Event{Type: EventProductionStarted})
	}
}

// LoadFromSnapshot replaces the factory state with a saved one fast-forwarded
// by elapsedSeconds, then restarts the loop when work remains.
func (f *Factory) LoadFromSnapshot(state State, elapsedSeconds float64) CatchUpResult {
	if f.running {
		f.timer.Reset()
		f.running = false
		f.idleWait = 0
	}

	res := CatchUp(CatchUpInput{
		Variant:        f.def.Variant,
		CycleDuration:  f.def.CycleDuration,
		Capacity:       f.def.Capacity,
		CurrentStored:  state.CurrentStored,
		QueueLength:    state.QueueLength,
		TimerRemaining: state.TimerRemaining,
		ElapsedSeconds: elapsedSeconds,
	})

	f.currentStored = res.CurrentStored
	f.queueLength = res.QueueLength
	f.progress = res.TimerRemaining
	if res.DroppedOrders > 0 {
		refund := res.DroppedOrders * f.def.RequiredAmount
		f.store.Add(f.def.Required, refund)
		f.emit(Event{Type: EventOrdersRefunded, Resource: f.def.Required, Amount: refund})
	}
	f.emit(Event{Type: EventCatchUpApplied, Resource: f.def.Produced, Amount: res.Produced})

	f.Resume()
	return res
}

// Subscribe registers a listener for factory events. The returned func
// removes it.
func (f *Factory) Subscribe(l Listener) func() {
	id := f.nextListenerID
	f.nextListenerID++
	f.listeners[id] = l
	return func() {
		delete(f.listeners, id)
	}
}

func (f *Factory) startLoop() {
	f.running = true
	f.idleWait = 0
	f.startCycle()
	f.emit(Event{Type: EventProductionStarted})
}

func (f *Factory) startCycle() {
	if f.progress >= f.def.CycleDuration {
		f.progress = 0
	}
	residual := 0.0
	if f.progress > 0 {
		residual = f.def.CycleDuration - f.progress
	}
	// duration and residual are in range for a validated definition
	_ = f.timer.Start(f.def.CycleDuration, residual)
}

func (f *Factory) finishCycle() {
	f.progress = 0
	f.behavior.completeCycle(f)
	f.emit(Event{Type: EventUnitProduced, Resource: f.def.Produced, Amount: 1})

	if f.behavior.hasWork(f) {
		f.startCycle()
		return
	}
	if f.behavior.idlesWhenBlocked() {
		f.timer.Reset()
		f.idleWait = IdlePollInterval
		return
	}
	f.stopLoop()
}

func (f *Factory) stopLoop() {
	f.running = false
	f.idleWait = 0
	f.timer.Reset()
	f.emit(Event{Type: EventProductionStopped})
}

func (f *Factory) reject(reason RejectReason) OrderResult {
	f.emit(Event{Type: EventOrderRejected, Reason: reason})
	return OrderResult{Accepted: false, Reason: reason, QueueLength: f.queueLength}
}

func (f *Factory) openControls() {
	if f.controlsOpen {
		return
	}
	f.controlsOpen = true
	f.emit(Event{Type: EventControlsOpened})
}

func (f *Factory) closeControls() {
	if !f.controlsOpen {
		return
	}
	f.controlsOpen = false
	f.emit(Event{Type: EventControlsClosed})
}

func (f *Factory) onTimerProgress(fraction float64, label string) {
	if label == f.lastLabel {
		return
	}
	f.lastLabel = label
	f.emit(Event{Type: EventProgress, Label: label, Fraction: fraction})
}

func (f *Factory) emit(e Event) {
	if len(f.listeners) == 0 {
		return
	}
	e.FactoryID = f.def.ID
	for id := 0; id < f.nextListenerID; id++ {
		if l, ok := f.listeners[id]; ok {
			l(e)
		}
	}
}

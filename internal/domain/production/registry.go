package production

import (
	"fmt"
	"sort"
)

// Registry tracks every live factory by stable id and enforces that at most
// one factory has its controls open. It holds references only; each factory
// owns its own state.
type Registry struct {
	factories map[FactoryID]*Factory
	active    *Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[FactoryID]*Factory),
	}
}

// Register adds f. Registering the same factory twice is a no-op; a
// different factory under a taken id is rejected.
func (r *Registry) Register(f *Factory) error {
	if f == nil {
		return fmt.Errorf("cannot register nil factory")
	}
	if existing, ok := r.factories[f.ID()]; ok {
		if existing == f {
			return nil
		}
		return fmt.Errorf("%w: %d", ErrDuplicateFactoryID, f.ID())
	}
	r.factories[f.ID()] = f
	return nil
}

// Lookup returns the factory registered under id
func (r *Registry) Lookup(id FactoryID) (*Factory, bool) {
	f, ok := r.factories[id]
	return f, ok
}

// Get is Lookup returning ErrFactoryNotFound for unknown ids
func (r *Registry) Get(id FactoryID) (*Factory, error) {
	f, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrFactoryNotFound, id)
	}
	return f, nil
}

// All returns every factory ordered by id
func (r *Registry) All() []*Factory {
	out := make([]*Factory, 0, len(r.factories))
	for _, f := range r.factories {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r *Registry) Len() int {
	return len(r.factories)
}

// SetActive opens f's controls, closing the previously active factory first
func (r *Registry) SetActive(f *Factory) {
	if f == nil {
		r.Close()
		return
	}
	if r.active != nil && r.active != f {
		r.active.closeControls()
	}
	r.active = f
	f.openControls()
}

// Close closes the active factory's controls, if any
func (r *Registry) Close() {
	if r.active == nil {
		return
	}
	r.active.closeControls()
	r.active = nil
}

// Active returns the factory whose controls are open
func (r *Registry) Active() (*Factory, bool) {
	return r.active, r.active != nil
}

// CollectAndOpen collects f's output and then shows its controls, the
// behaviour of clicking a factory.
func (r *Registry) CollectAndOpen(f *Factory) int {
	collected := f.CollectOutput()
	r.SetActive(f)
	return collected
}

// StepAll advances every factory by dt in id order
func (r *Registry) StepAll(dt float64) {
	for _, f := range r.All() {
		f.Step(dt)
	}
}

// ShutdownAll stops every production loop, keeping residual progress
func (r *Registry) ShutdownAll() {
	for _, f := range r.All() {
		f.Shutdown()
	}
}

// ResumeAll restarts every loop that has work
func (r *Registry) ResumeAll() {
	for _, f := range r.All() {
		f.Resume()
	}
}

// States returns the persisted state of every factory ordered by id
func (r *Registry) States() []State {
	all := r.All()
	out := make([]State, 0, len(all))
	for _, f := range all {
		out = append(out, f.State())
	}
	return out
}

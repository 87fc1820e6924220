package production_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
	"github.com/makifarslan/Mini-Farm/internal/domain/shared"
)

func millDefinition() production.Definition {
	return production.Definition{
		ID:             2,
		Name:           "Mill",
		Variant:        production.VariantQueued,
		Produced:       resource.KindFlour,
		Required:       resource.KindWheat,
		RequiredAmount: 1,
		Capacity:       5,
		CycleDuration:  10,
	}
}

func hayFieldDefinition() production.Definition {
	return production.Definition{
		ID:            1,
		Name:          "Hay Field",
		Variant:       production.VariantContinuous,
		Produced:      resource.KindWheat,
		Capacity:      5,
		CycleDuration: 5,
	}
}

func newFactory(t *testing.T, def production.Definition, store *resource.Store) *production.Factory {
	t.Helper()
	f, err := production.NewFactory(def, store)
	require.NoError(t, err)
	return f
}

func assertInvariants(t *testing.T, f *production.Factory) {
	t.Helper()
	assert.GreaterOrEqual(t, f.CurrentStored(), 0)
	assert.LessOrEqual(t, f.CurrentStored(), f.Capacity())
	assert.GreaterOrEqual(t, f.QueueLength(), 0)
	assert.LessOrEqual(t, f.CurrentStored()+f.QueueLength(), f.Capacity())
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *production.Definition)
	}{
		{name: "zero id", mutate: func(d *production.Definition) { d.ID = 0 }},
		{name: "unknown variant", mutate: func(d *production.Definition) { d.Variant = "BATCH" }},
		{name: "missing produced", mutate: func(d *production.Definition) { d.Produced = "" }},
		{name: "missing required", mutate: func(d *production.Definition) { d.Required = "" }},
		{name: "required amount below one", mutate: func(d *production.Definition) { d.RequiredAmount = 0 }},
		{name: "negative capacity", mutate: func(d *production.Definition) { d.Capacity = -1 }},
		{name: "zero cycle", mutate: func(d *production.Definition) { d.CycleDuration = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := millDefinition()
			tt.mutate(&def)

			_, err := production.NewFactory(def, resource.NewStore())

			require.Error(t, err)
			var defErr *shared.FactoryDefinitionError
			assert.ErrorAs(t, err, &defErr)
		})
	}

	assert.NoError(t, hayFieldDefinition().Validate())
}

func TestFactory_EnqueueOrderConsumesAndStarts(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.KindWheat, 3)
	mill := newFactory(t, millDefinition(), store)

	// Act
	result := mill.EnqueueOrder()

	// Assert
	assert.True(t, result.Accepted)
	assert.Equal(t, 1, result.QueueLength)
	assert.Equal(t, 2, store.Get(resource.KindWheat))
	assert.True(t, mill.IsProducing())
	assert.Equal(t, 10.0, mill.Timer().Remaining())
}

func TestFactory_EnqueueOrderRejectsInsufficientResource(t *testing.T) {
	store := resource.NewStore()
	def := millDefinition()
	def.RequiredAmount = 3
	store.Add(resource.KindWheat, 2)
	mill := newFactory(t, def, store)

	result := mill.EnqueueOrder()

	assert.False(t, result.Accepted)
	assert.Equal(t, production.RejectInsufficientResource, result.Reason)
	assert.Equal(t, 2, store.Get(resource.KindWheat))
	assert.Zero(t, mill.QueueLength())
	assert.False(t, mill.IsRunning())
}

func TestFactory_EnqueueOrderRejectsFullQueue(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.KindWheat, 10)
	def := millDefinition()
	def.Capacity = 2
	mill := newFactory(t, def, store)
	require.True(t, mill.EnqueueOrder().Accepted)
	require.True(t, mill.EnqueueOrder().Accepted)
	before := mill.State()

	// Act
	result := mill.EnqueueOrder()

	// Assert
	assert.False(t, result.Accepted)
	assert.Equal(t, production.RejectQueueFull, result.Reason)
	assert.Equal(t, before, mill.State())
	assert.Equal(t, 8, store.Get(resource.KindWheat))
}

func TestFactory_EnqueueOrderCountsStoredOutput(t *testing.T) {
	store := resource.NewStore()
	store.Add(resource.KindWheat, 10)
	def := millDefinition()
	def.Capacity = 2
	mill := newFactory(t, def, store)
	mill.LoadFromSnapshot(production.State{ID: def.ID, CurrentStored: 1}, 0)
	require.True(t, mill.EnqueueOrder().Accepted)

	result := mill.EnqueueOrder()

	assert.False(t, result.Accepted)
	assert.Equal(t, production.RejectQueueFull, result.Reason)
	assertInvariants(t, mill)
}

func TestFactory_StepCompletesCyclesInOrder(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.KindWheat, 2)
	mill := newFactory(t, millDefinition(), store)
	mill.EnqueueOrder()
	mill.EnqueueOrder()

	// Act
	mill.Step(10)

	// Assert
	assert.Equal(t, 1, mill.CurrentStored())
	assert.Equal(t, 1, mill.QueueLength())
	assert.Zero(t, mill.TimerRemaining())
	assert.True(t, mill.IsProducing())

	mill.Step(25)
	assert.Equal(t, 2, mill.CurrentStored())
	assert.Zero(t, mill.QueueLength())
	assert.Zero(t, mill.TimerRemaining())
	assert.False(t, mill.IsRunning())
	assertInvariants(t, mill)
}

func TestFactory_StepCarriesOvershootIntoNextCycle(t *testing.T) {
	store := resource.NewStore()
	store.Add(resource.KindWheat, 3)
	mill := newFactory(t, millDefinition(), store)
	for i := 0; i < 3; i++ {
		mill.EnqueueOrder()
	}

	mill.Step(14)

	assert.Equal(t, 1, mill.CurrentStored())
	assert.Equal(t, 2, mill.QueueLength())
	assert.Equal(t, 4.0, mill.TimerRemaining())
	assert.Equal(t, 6.0, mill.Timer().Remaining())
}

func TestFactory_CancelOrderRefundsExactAmount(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	def := millDefinition()
	def.RequiredAmount = 2
	store.Add(resource.KindWheat, 4)
	mill := newFactory(t, def, store)
	mill.EnqueueOrder()
	mill.EnqueueOrder()
	mill.Step(4)
	require.Equal(t, 0, store.Get(resource.KindWheat))

	// Act
	ok := mill.CancelOrder()

	// Assert - another order still pending keeps the cycle progress
	assert.True(t, ok)
	assert.Equal(t, 2, store.Get(resource.KindWheat))
	assert.Equal(t, 1, mill.QueueLength())
	assert.Equal(t, 4.0, mill.TimerRemaining())
	assert.True(t, mill.IsProducing())
}

func TestFactory_CancelLastOrderDiscardsPartialCycle(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.KindWheat, 1)
	mill := newFactory(t, millDefinition(), store)
	mill.EnqueueOrder()
	mill.Step(4)

	// Act
	ok := mill.CancelOrder()

	// Assert
	assert.True(t, ok)
	assert.Zero(t, mill.QueueLength())
	assert.Zero(t, mill.TimerRemaining())
	assert.Equal(t, 1, store.Get(resource.KindWheat))
	assert.False(t, mill.IsProducing())
	assert.True(t, mill.IsRunning(), "stop is observed on the next step")

	mill.Step(20)
	assert.False(t, mill.IsRunning())
	assert.Zero(t, mill.CurrentStored())
}

func TestFactory_CancelWithEmptyQueueIsRejected(t *testing.T) {
	store := resource.NewStore()
	mill := newFactory(t, millDefinition(), store)

	assert.False(t, mill.CancelOrder())
	assert.Zero(t, store.Get(resource.KindWheat))
}

func TestFactory_ReorderAfterCancelStartsFreshCycle(t *testing.T) {
	store := resource.NewStore()
	store.Add(resource.KindWheat, 1)
	mill := newFactory(t, millDefinition(), store)
	mill.EnqueueOrder()
	mill.Step(7)
	mill.CancelOrder()

	result := mill.EnqueueOrder()
	mill.Step(5)

	assert.True(t, result.Accepted)
	assert.True(t, mill.IsProducing())
	assert.Equal(t, 5.0, mill.TimerRemaining())
	assert.Zero(t, mill.CurrentStored())
}

func TestFactory_CollectOutputIsIdempotent(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.KindWheat, 2)
	mill := newFactory(t, millDefinition(), store)
	mill.EnqueueOrder()
	mill.EnqueueOrder()
	mill.Step(20)

	// Act
	first := mill.CollectOutput()
	second := mill.CollectOutput()

	// Assert
	assert.Equal(t, 2, first)
	assert.Zero(t, second)
	assert.Equal(t, 2, store.Get(resource.KindFlour))
	assert.Zero(t, mill.CurrentStored())
}

func TestFactory_ContinuousProducesUntilFull(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	field := newFactory(t, hayFieldDefinition(), store)
	field.Resume()

	// Act
	field.Step(5)
	require.Equal(t, 1, field.CurrentStored())
	field.Step(100)

	// Assert
	assert.Equal(t, 5, field.CurrentStored())
	assert.False(t, field.IsProducing())
	assert.True(t, field.IsRunning())
	assert.Zero(t, field.TimerRemaining())
	assert.Equal(t, "Full", field.View().StatusLabel)
}

func TestFactory_ContinuousRestartsAfterCollect(t *testing.T) {
	store := resource.NewStore()
	field := newFactory(t, hayFieldDefinition(), store)
	field.Resume()
	field.Step(30)
	require.Equal(t, 5, field.CurrentStored())

	collected := field.CollectOutput()
	field.Step(5)

	assert.Equal(t, 5, collected)
	assert.Equal(t, 5, store.Get(resource.KindWheat))
	assert.Equal(t, 1, field.CurrentStored())
}

func TestFactory_ContinuousRejectsOrders(t *testing.T) {
	store := resource.NewStore()
	field := newFactory(t, hayFieldDefinition(), store)

	result := field.EnqueueOrder()

	assert.False(t, result.Accepted)
	assert.Equal(t, production.RejectNotSupported, result.Reason)
	assert.False(t, field.CancelOrder())
}

func TestFactory_ShutdownKeepsResidualForResume(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.KindWheat, 1)
	mill := newFactory(t, millDefinition(), store)
	mill.EnqueueOrder()
	mill.Step(4)

	// Act
	mill.Shutdown()
	mill.Step(100)

	// Assert
	assert.False(t, mill.IsRunning())
	assert.Equal(t, 4.0, mill.TimerRemaining())
	assert.Equal(t, 1, mill.QueueLength())

	mill.Resume()
	assert.Equal(t, 6.0, mill.Timer().Remaining())
	mill.Step(6)
	assert.Equal(t, 1, mill.CurrentStored())
	assert.False(t, mill.IsRunning())
}

func TestFactory_SnapshotRoundTripWithZeroElapsed(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.KindWheat, 4)
	mill := newFactory(t, millDefinition(), store)
	for i := 0; i < 4; i++ {
		mill.EnqueueOrder()
	}
	mill.Step(13.5)
	saved := mill.State()

	twin := newFactory(t, millDefinition(), resource.NewStore())

	// Act
	result := twin.LoadFromSnapshot(saved, 0)

	// Assert
	assert.Equal(t, saved, twin.State())
	assert.Zero(t, result.Produced)
	assert.True(t, twin.IsProducing())
	assert.Equal(t, mill.Timer().Remaining(), twin.Timer().Remaining())
}

func TestFactory_LoadFromSnapshotMatchesDocumentedExample(t *testing.T) {
	mill := newFactory(t, millDefinition(), resource.NewStore())

	result := mill.LoadFromSnapshot(production.State{ID: 2, QueueLength: 3, TimerRemaining: 4}, 21)

	assert.Equal(t, 2, result.Produced)
	assert.Equal(t, 2, mill.CurrentStored())
	assert.Equal(t, 1, mill.QueueLength())
	assert.Equal(t, 5.0, mill.TimerRemaining())
	assert.True(t, mill.IsProducing())
	assert.Equal(t, 5.0, mill.Timer().Remaining())
}

func TestFactory_LiveSimulationMatchesCatchUp(t *testing.T) {
	tests := []struct {
		name    string
		def     production.Definition
		state   production.State
		elapsed float64
	}{
		{name: "queued partial", def: millDefinition(), state: production.State{QueueLength: 3, TimerRemaining: 4}, elapsed: 21},
		{name: "queued drained", def: millDefinition(), state: production.State{CurrentStored: 1, QueueLength: 2}, elapsed: 60},
		{name: "queued boundary", def: millDefinition(), state: production.State{QueueLength: 2, TimerRemaining: 5}, elapsed: 5},
		{name: "continuous below capacity", def: hayFieldDefinition(), state: production.State{CurrentStored: 1, TimerRemaining: 2}, elapsed: 9},
		{name: "continuous clipped", def: hayFieldDefinition(), state: production.State{CurrentStored: 3}, elapsed: 40},
	}

	const tick = 0.25

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.state.ID = tt.def.ID

			live := newFactory(t, tt.def, resource.NewStore())
			live.LoadFromSnapshot(tt.state, 0)
			for elapsed := 0.0; elapsed < tt.elapsed; elapsed += tick {
				live.Step(tick)
				assertInvariants(t, live)
			}

			offline := newFactory(t, tt.def, resource.NewStore())
			offline.LoadFromSnapshot(tt.state, tt.elapsed)

			assert.Equal(t, offline.CurrentStored(), live.CurrentStored())
			assert.Equal(t, offline.QueueLength(), live.QueueLength())
			assert.InDelta(t, offline.TimerRemaining(), live.TimerRemaining(), 1e-9)
			assertInvariants(t, offline)
		})
	}
}

func TestFactory_ViewProjection(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.KindWheat, 2)
	mill := newFactory(t, millDefinition(), store)

	// Assert - idle
	v := mill.View()
	assert.Equal(t, "Idle", v.StatusLabel)
	assert.Equal(t, "0/5", v.QueueLabel)
	assert.True(t, v.CanEnqueue)
	assert.False(t, v.CanCancel)
	assert.Empty(t, v.RemainingLabel)

	// Act
	mill.EnqueueOrder()
	mill.Step(2.5)

	// Assert - producing
	v = mill.View()
	assert.Equal(t, "Queue: 1", v.StatusLabel)
	assert.Equal(t, "1/5", v.QueueLabel)
	assert.Equal(t, "8s", v.RemainingLabel)
	assert.Equal(t, 0.75, v.FractionRemaining)
	assert.True(t, v.CanCancel)
	assert.True(t, v.Producing)

	store.Consume(resource.KindWheat, 1)
	assert.False(t, mill.View().CanEnqueue)
}

func TestFactory_EmitsLifecycleEvents(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	store.Add(resource.KindWheat, 1)
	mill := newFactory(t, millDefinition(), store)
	var types []production.EventType
	mill.Subscribe(func(e production.Event) {
		if e.Type != production.EventProgress {
			types = append(types, e.Type)
		}
		assert.Equal(t, production.FactoryID(2), e.FactoryID)
	})

	// Act
	mill.EnqueueOrder()
	mill.EnqueueOrder()
	mill.Step(10)
	mill.CollectOutput()

	// Assert
	assert.Equal(t, []production.EventType{
		production.EventOrderAccepted,
		production.EventProductionStarted,
		production.EventOrderRejected,
		production.EventUnitProduced,
		production.EventProductionStopped,
		production.EventOutputCollected,
	}, types)
}

func TestFactory_ProgressEventsOnlyOnLabelChange(t *testing.T) {
	store := resource.NewStore()
	store.Add(resource.KindWheat, 1)
	mill := newFactory(t, millDefinition(), store)
	var labels []string
	mill.Subscribe(func(e production.Event) {
		if e.Type == production.EventProgress {
			labels = append(labels, e.Label)
		}
	})

	mill.EnqueueOrder()
	for i := 0; i < 8; i++ {
		mill.Step(0.25)
	}

	assert.Equal(t, []string{"10s", "9s", "8s"}, labels)
}

func TestFactory_RandomWalkKeepsInvariants(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 2024, 99991} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			// Arrange
			rng := rand.New(rand.NewSource(seed))
			store := resource.NewStore()
			store.Add(resource.KindWheat, 3)
			field := newFactory(t, hayFieldDefinition(), store)
			mill := newFactory(t, millDefinition(), store)
			field.Resume()

			// wheat and flour anywhere in the farm, plus what the field has
			// handed over so far
			units := func() int {
				return store.Get(resource.KindWheat) + store.Get(resource.KindFlour) +
					mill.QueueLength() + mill.CurrentStored()
			}
			expected := units()

			for i := 0; i < 500; i++ {
				// Act
				var op string
				switch rng.Intn(7) {
				case 0, 1:
					op = "enqueue"
					mill.EnqueueOrder()
				case 2:
					op = "cancel"
					mill.CancelOrder()
				case 3:
					op = "collect"
					expected += field.CollectOutput()
					mill.CollectOutput()
				case 4, 5:
					op = "step"
					dt := rng.Float64() * 12
					field.Step(dt)
					mill.Step(dt)
				case 6:
					op = "save-load"
					elapsed := float64(rng.Intn(40))
					field.LoadFromSnapshot(field.State(), elapsed)
					mill.LoadFromSnapshot(mill.State(), elapsed)
				}

				// Assert
				msg := fmt.Sprintf("step %d (%s)", i, op)
				for _, f := range []*production.Factory{field, mill} {
					require.GreaterOrEqual(t, f.CurrentStored(), 0, msg)
					require.LessOrEqual(t, f.CurrentStored(), f.Capacity(), msg)
					require.GreaterOrEqual(t, f.QueueLength(), 0, msg)
					require.LessOrEqual(t, f.CurrentStored()+f.QueueLength(), f.Capacity(), msg)
					require.GreaterOrEqual(t, f.TimerRemaining(), 0.0, msg)
					require.Less(t, f.TimerRemaining(), f.Definition().CycleDuration, msg)
				}
				for _, kind := range store.Kinds() {
					require.GreaterOrEqual(t, store.Get(kind), 0, msg)
				}
				require.Equal(t, expected, units(), msg)
			}
		})
	}
}

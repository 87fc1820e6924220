package resource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
	"github.com/makifarslan/Mini-Farm/internal/domain/shared"
)

func TestStore_NewStoreSeedsBuiltinKinds(t *testing.T) {
	store := resource.NewStore()

	for _, k := range resource.AllKinds() {
		assert.Equal(t, 0, store.Get(k))
	}
	assert.Equal(t, resource.AllKinds(), store.Kinds())
}

func TestStore_UnknownKindReadsZero(t *testing.T) {
	store := resource.NewStore()

	assert.Equal(t, 0, store.Get(resource.Kind("EGGS")))
}

func TestStore_AddEmitsChange(t *testing.T) {
	// Arrange
	store := resource.NewStore()
	var changes []resource.Change
	store.Subscribe(func(c resource.Change) { changes = append(changes, c) })

	// Act
	store.Add(resource.KindWheat, 3)
	store.Add(resource.KindWheat, 2)

	// Assert
	assert.Equal(t, 5, store.Get(resource.KindWheat))
	require.Len(t, changes, 2)
	assert.Equal(t, resource.Change{Kind: resource.KindWheat, Previous: 3, Current: 5}, changes[1])
	assert.Equal(t, 2, changes[1].Delta())
}

func TestStore_AddIgnoresNegativeAmount(t *testing.T) {
	store := resource.NewStore()
	store.Add(resource.KindFlour, 2)

	store.Add(resource.KindFlour, -10)

	assert.Equal(t, 2, store.Get(resource.KindFlour))
}

func TestStore_ConsumeIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name      string
		available int
		consume   int
		wantOK    bool
		wantLeft  int
	}{
		{name: "exact amount", available: 3, consume: 3, wantOK: true, wantLeft: 0},
		{name: "partial amount", available: 5, consume: 2, wantOK: true, wantLeft: 3},
		{name: "insufficient", available: 1, consume: 2, wantOK: false, wantLeft: 1},
		{name: "zero request", available: 0, consume: 0, wantOK: true, wantLeft: 0},
		{name: "negative request", available: 4, consume: -1, wantOK: false, wantLeft: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := resource.NewStore()
			store.Add(resource.KindWheat, tt.available)

			ok := store.Consume(resource.KindWheat, tt.consume)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLeft, store.Get(resource.KindWheat))
			assert.GreaterOrEqual(t, store.Get(resource.KindWheat), 0)
		})
	}
}

func TestStore_FailedConsumeDoesNotEmit(t *testing.T) {
	store := resource.NewStore()
	emitted := 0
	store.Subscribe(func(resource.Change) { emitted++ })

	ok := store.Consume(resource.KindBread, 1)

	assert.False(t, ok)
	assert.Zero(t, emitted)
}

func TestStore_RestoreClampsNegative(t *testing.T) {
	store := resource.NewStore()
	store.Add(resource.KindBread, 4)

	store.Restore(resource.KindBread, -3)

	assert.Equal(t, 0, store.Get(resource.KindBread))
}

func TestStore_UnsubscribeStopsNotifications(t *testing.T) {
	store := resource.NewStore()
	calls := 0
	unsubscribe := store.Subscribe(func(resource.Change) { calls++ })

	store.Add(resource.KindWheat, 1)
	unsubscribe()
	store.Add(resource.KindWheat, 1)

	assert.Equal(t, 1, calls)
}

func TestStore_KindsIncludesExtrasSorted(t *testing.T) {
	store := resource.NewStore()
	store.Add(resource.Kind("MILK"), 1)
	store.Add(resource.Kind("EGGS"), 1)

	kinds := store.Kinds()

	assert.Equal(t, []resource.Kind{
		resource.KindWheat, resource.KindFlour, resource.KindBread,
		resource.Kind("EGGS"), resource.Kind("MILK"),
	}, kinds)
	assert.Len(t, store.Snapshot(), 5)
}

func TestParseKind(t *testing.T) {
	k, err := resource.ParseKind("  flour ")
	require.NoError(t, err)
	assert.Equal(t, resource.KindFlour, k)
	assert.True(t, k.IsBuiltin())

	_, err = resource.ParseKind("  ")
	var validationErr *shared.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "kind", validationErr.Field)
}

package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	"github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

type pingCommand struct{}

func newFarm(t *testing.T) (*production.Registry, *resource.Store, *production.Factory, *production.Factory) {
	t.Helper()
	store := resource.NewStore()
	registry := production.NewRegistry()

	field, err := production.NewFactory(production.Definition{
		ID:            1,
		Variant:       production.VariantContinuous,
		Produced:      resource.KindWheat,
		Capacity:      5,
		CycleDuration: 5,
	}, store)
	require.NoError(t, err)
	mill, err := production.NewFactory(production.Definition{
		ID:             2,
		Variant:        production.VariantQueued,
		Produced:       resource.KindFlour,
		Required:       resource.KindWheat,
		RequiredAmount: 1,
		Capacity:       2,
		CycleDuration:  10,
	}, store)
	require.NoError(t, err)

	require.NoError(t, registry.Register(field))
	require.NoError(t, registry.Register(mill))
	return registry, store, field, mill
}

func TestProductionMetrics_TracksOrdersAndOutput(t *testing.T) {
	// Arrange
	InitRegistry()
	t.Cleanup(func() { Registry = nil })
	collector := NewProductionMetricsCollector()
	require.NoError(t, collector.Register())
	registry, store, field, mill := newFarm(t)
	store.Add(resource.KindWheat, 2)
	detach := collector.Attach(registry, store)
	defer detach()

	// Act
	mill.EnqueueOrder()
	mill.EnqueueOrder()
	mill.EnqueueOrder()
	registry.ResumeAll()
	registry.StepAll(10)
	field.CollectOutput()

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.ordersTotal.WithLabelValues("2", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.ordersTotal.WithLabelValues("2", "rejected_QUEUE_FULL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.unitsProducedTotal.WithLabelValues("2", "FLOUR")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.outputCollectedTotal.WithLabelValues("1", "WHEAT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.factoryStored.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.factoryQueued.WithLabelValues("2")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.factoryStored.WithLabelValues("1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.resourceQuantity.WithLabelValues("WHEAT")))
}

func TestProductionMetrics_DetachStopsUpdates(t *testing.T) {
	collector := NewProductionMetricsCollector()
	registry, store, _, _ := newFarm(t)
	detach := collector.Attach(registry, store)

	detach()
	store.Add(resource.KindBread, 3)

	assert.Equal(t, 0.0, testutil.ToFloat64(collector.resourceQuantity.WithLabelValues("BREAD")))
}

func TestPrometheusMiddleware_RecordsCommandOutcome(t *testing.T) {
	// Arrange
	collector := NewCommandMetricsCollector()
	middleware := PrometheusMiddleware(collector)
	ok := func(ctx context.Context, request mediator.Request) (mediator.Response, error) { return nil, nil }
	fail := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, assert.AnError
	}

	// Act
	_, err := middleware(context.Background(), &pingCommand{}, ok)
	require.NoError(t, err)
	_, err = middleware(context.Background(), &pingCommand{}, fail)
	require.Error(t, err)

	// Assert
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.handled.WithLabelValues("pingCommand", "command", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.handled.WithLabelValues("pingCommand", "command", outcomeError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.inFlight))
}

func TestPrometheusMiddleware_CountsRefusedOrdersAsRejected(t *testing.T) {
	// Arrange
	collector := NewCommandMetricsCollector()
	middleware := PrometheusMiddleware(collector)
	refuse := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return &types.EnqueueOrderResponse{Accepted: false, Reason: production.RejectInsufficientResource}, nil
	}
	list := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return &types.ListFactoriesResponse{}, nil
	}

	// Act
	_, err := middleware(context.Background(), &types.EnqueueOrderCommand{FactoryID: 2}, refuse)
	require.NoError(t, err)
	_, err = middleware(context.Background(), &types.ListFactoriesQuery{}, list)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1.0, testutil.ToFloat64(
		collector.handled.WithLabelValues("EnqueueOrderCommand", "command", outcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		collector.handled.WithLabelValues("ListFactoriesQuery", "query", outcomeOK)))
}

func TestPrometheusMiddleware_TracksInFlightRequests(t *testing.T) {
	collector := NewCommandMetricsCollector()
	middleware := PrometheusMiddleware(collector)
	var during float64
	observe := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		during = testutil.ToFloat64(collector.inFlight)
		return nil, nil
	}

	_, err := middleware(context.Background(), &pingCommand{}, observe)

	require.NoError(t, err)
	assert.Equal(t, 1.0, during)
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.inFlight))
}

func TestExtractCommandName(t *testing.T) {
	assert.Equal(t, "pingCommand", extractCommandName(&pingCommand{}))
	assert.Equal(t, "UnknownCommand", extractCommandName(nil))
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	InitRegistry()
	t.Cleanup(func() { Registry = nil })
	collector := NewProductionMetricsCollector()
	require.NoError(t, collector.Register())
	collector.RecordResourceChange(resource.Change{Kind: resource.KindBread, Current: 4})

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `minifarm_farm_resource_quantity{resource="BREAD"} 4`)
}

func TestRegister_NoopWhenDisabled(t *testing.T) {
	Registry = nil

	assert.NoError(t, NewCommandMetricsCollector().Register())
	assert.False(t, IsEnabled())
}

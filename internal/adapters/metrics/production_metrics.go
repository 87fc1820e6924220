package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

// ProductionMetricsCollector turns factory and store notifications into
// Prometheus series. Listeners run on the simulation goroutine; the vectors
// themselves are safe for concurrent scrapes.
type ProductionMetricsCollector struct {
	ordersTotal          *prometheus.CounterVec
	unitsProducedTotal   *prometheus.CounterVec
	outputCollectedTotal *prometheus.CounterVec
	catchUpUnitsTotal    *prometheus.CounterVec
	factoryStored        *prometheus.GaugeVec
	factoryQueued        *prometheus.GaugeVec
	factoryProducing     *prometheus.GaugeVec
	resourceQuantity     *prometheus.GaugeVec
}

// NewProductionMetricsCollector creates a new production metrics collector
func NewProductionMetricsCollector() *ProductionMetricsCollector {
	return &ProductionMetricsCollector{
		ordersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_total",
				Help:      "Production orders by factory and outcome",
			},
			[]string{"factory_id", "outcome"},
		),
		unitsProducedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "units_produced_total",
				Help:      "Units produced while the simulation was running",
			},
			[]string{"factory_id", "resource"},
		),
		outputCollectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "output_collected_total",
				Help:      "Units moved from factory storage into the store",
			},
			[]string{"factory_id", "resource"},
		),
		catchUpUnitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catch_up_units_total",
				Help:      "Units produced by offline catch-up on load",
			},
			[]string{"factory_id", "resource"},
		),
		factoryStored: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "factory_stored_units",
				Help:      "Finished units waiting in factory storage",
			},
			[]string{"factory_id"},
		),
		factoryQueued: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "factory_queued_orders",
				Help:      "Pending orders per factory",
			},
			[]string{"factory_id"},
		),
		factoryProducing: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "factory_producing",
				Help:      "1 while the factory has a cycle in flight",
			},
			[]string{"factory_id"},
		),
		resourceQuantity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resource_quantity",
				Help:      "Current quantity of each resource in the store",
			},
			[]string{"resource"},
		),
	}
}

// Register registers all production metrics with the Prometheus registry
func (c *ProductionMetricsCollector) Register() error {
	return register(
		c.ordersTotal,
		c.unitsProducedTotal,
		c.outputCollectedTotal,
		c.catchUpUnitsTotal,
		c.factoryStored,
		c.factoryQueued,
		c.factoryProducing,
		c.resourceQuantity,
	)
}

// Attach subscribes to every registered factory and to the store, and seeds
// the gauges with their current values. The returned func detaches.
func (c *ProductionMetricsCollector) Attach(registry *production.Registry, store *resource.Store) func() {
	var detach []func()

	for _, f := range registry.All() {
		c.observeFactory(f)
		factory := f
		detach = append(detach, f.Subscribe(func(e production.Event) {
			c.RecordFactoryEvent(factory, e)
		}))
	}

	for kind, amount := range store.Snapshot() {
		c.resourceQuantity.WithLabelValues(string(kind)).Set(float64(amount))
	}
	detach = append(detach, store.Subscribe(c.RecordResourceChange))

	return func() {
		for _, d := range detach {
			d()
		}
	}
}

// RecordFactoryEvent updates counters for e and refreshes the factory gauges
func (c *ProductionMetricsCollector) RecordFactoryEvent(f *production.Factory, e production.Event) {
	id := factoryLabel(e.FactoryID)

	switch e.Type {
	case production.EventProgress:
		return
	case production.EventOrderAccepted:
		c.ordersTotal.WithLabelValues(id, "accepted").Inc()
	case production.EventOrderRejected:
		c.ordersTotal.WithLabelValues(id, "rejected_"+string(e.Reason)).Inc()
	case production.EventOrderCancelled:
		c.ordersTotal.WithLabelValues(id, "cancelled").Inc()
	case production.EventUnitProduced:
		c.unitsProducedTotal.WithLabelValues(id, string(e.Resource)).Add(float64(e.Amount))
	case production.EventOutputCollected:
		c.outputCollectedTotal.WithLabelValues(id, string(e.Resource)).Add(float64(e.Amount))
	case production.EventCatchUpApplied:
		c.catchUpUnitsTotal.WithLabelValues(id, string(e.Resource)).Add(float64(e.Amount))
	}

	c.observeFactory(f)
}

// RecordResourceChange mirrors a store change into the quantity gauge
func (c *ProductionMetricsCollector) RecordResourceChange(change resource.Change) {
	c.resourceQuantity.WithLabelValues(string(change.Kind)).Set(float64(change.Current))
}

func (c *ProductionMetricsCollector) observeFactory(f *production.Factory) {
	id := factoryLabel(f.ID())
	c.factoryStored.WithLabelValues(id).Set(float64(f.CurrentStored()))
	c.factoryQueued.WithLabelValues(id).Set(float64(f.QueueLength()))
	producing := 0.0
	if f.IsProducing() {
		producing = 1
	}
	c.factoryProducing.WithLabelValues(id).Set(producing)
}

func factoryLabel(id production.FactoryID) string {
	return strconv.Itoa(int(id))
}

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций и синхронизации для label "result".
const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
	ResultInvalid = "invalid"
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ReconcileMetrics содержит метрики слоя согласования заказов.
type ReconcileMetrics struct {
	// Счётчики операций
	operations *prometheus.CounterVec
	syncs      *prometheus.CounterVec

	// Гистограмма времени синхронизации с хранилищем
	syncDuration prometheus.Histogram

	// Gauge для кэша и очереди синхронизации
	cachedOrders prometheus.Gauge
	pendingSyncs prometheus.Gauge

	// Заказы, у которых сумма разошлась с позициями
	driftedTotals prometheus.Counter
	droppedEvents prometheus.Counter
}

// NewReconcileMetrics создаёт метрики в DefaultRegisterer.
func NewReconcileMetrics() *ReconcileMetrics {
	return NewReconcileMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewReconcileMetricsWithRegisterer создаёт метрики в заданном registerer (для тестов).
func NewReconcileMetricsWithRegisterer(registerer prometheus.Registerer) *ReconcileMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ReconcileMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "backoffice_order_operations_total",
			Help: "Total number of order operations grouped by operation and result",
		}, []string{"operation", "result"}),
		syncs: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "backoffice_order_sync_total",
			Help: "Total number of order store synchronisations grouped by method and result",
		}, []string{"method", "result"}),
		syncDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "backoffice_order_sync_duration_seconds",
			Help:    "Duration of order store requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),
		cachedOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "backoffice_cached_orders",
			Help: "Number of orders in the local order cache",
		}),
		pendingSyncs: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "backoffice_pending_order_syncs",
			Help: "Number of order store updates not yet sent",
		}),
		driftedTotals: registerCounter(registerer, prometheus.CounterOpts{
			Name: "backoffice_order_total_drift_total",
			Help: "Number of times an order total did not match its items before a rejection",
		}),
		droppedEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "backoffice_event_bus_dropped_total",
			Help: "Number of events dropped because a subscriber was not keeping up",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOperation учитывает пользовательскую операцию над заказом.
func (m *ReconcileMetrics) RecordOperation(operation, result string) {
	m.operations.WithLabelValues(operation, result).Inc()
}

// RecordSync учитывает запрос к хранилищу и его длительность.
func (m *ReconcileMetrics) RecordSync(method, result string, duration time.Duration) {
	m.syncs.WithLabelValues(method, result).Inc()
	m.syncDuration.Observe(duration.Seconds())
}

// SetCachedOrders выставляет размер локального кэша.
func (m *ReconcileMetrics) SetCachedOrders(n int) {
	m.cachedOrders.Set(float64(n))
}

// SyncEnqueued увеличивает число ожидающих синхронизаций.
func (m *ReconcileMetrics) SyncEnqueued() {
	m.pendingSyncs.Inc()
}

// SyncFinished уменьшает число ожидающих синхронизаций.
func (m *ReconcileMetrics) SyncFinished() {
	m.pendingSyncs.Dec()
}

// RecordTotalDrift учитывает заказ с разошедшейся суммой.
func (m *ReconcileMetrics) RecordTotalDrift() {
	m.driftedTotals.Inc()
}

// RecordDroppedEvent учитывает событие, не доставленное подписчику шины.
func (m *ReconcileMetrics) RecordDroppedEvent() {
	m.droppedEvents.Inc()
}

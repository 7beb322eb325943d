package wallet

import (
	"time"

	"spark/internal/models"
	"spark/internal/money"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration)          {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)                   {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                                  {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                                 {}
func (n *NoopMetricsCollector) RecordError(string, string)                             {}
func (n *NoopMetricsCollector) RecordTransaction(models.TransactionType, money.Amount) {}

// PrometheusMetrics exports wallet metrics under the spark_wallet prefix.
type PrometheusMetrics struct {
	operationDuration *prometheus.HistogramVec
	operationsTotal   *prometheus.CounterVec
	cacheRequests     *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	transactionsTotal *prometheus.CounterVec
	volumeTotal       *prometheus.CounterVec
}

// NewPrometheusMetrics registers the wallet collectors with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "spark",
				Subsystem: "wallet",
				Name:      "operation_duration_seconds",
				Help:      "Wallet operation latency partitioned by operation.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spark",
				Subsystem: "wallet",
				Name:      "operations_total",
				Help:      "Wallet operations partitioned by operation and result.",
			},
			[]string{"operation", "result"},
		),
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spark",
				Subsystem: "wallet",
				Name:      "cache_requests_total",
				Help:      "Balance cache lookups partitioned by result.",
			},
			[]string{"operation", "result"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spark",
				Subsystem: "wallet",
				Name:      "errors_total",
				Help:      "Failed wallet operations partitioned by error kind.",
			},
			[]string{"operation", "kind"},
		),
		transactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spark",
				Subsystem: "ledger",
				Name:      "transactions_total",
				Help:      "Committed ledger entries partitioned by type.",
			},
			[]string{"type"},
		),
		volumeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spark",
				Subsystem: "ledger",
				Name:      "volume_total",
				Help:      "Committed ledger volume in whole units partitioned by type.",
			},
			[]string{"type"},
		),
	}
}

func (m *PrometheusMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordOperationResult(operation, result string) {
	m.operationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *PrometheusMetrics) RecordCacheHit(operation string) {
	m.cacheRequests.WithLabelValues(operation, "hit").Inc()
}

func (m *PrometheusMetrics) RecordCacheMiss(operation string) {
	m.cacheRequests.WithLabelValues(operation, "miss").Inc()
}

func (m *PrometheusMetrics) RecordError(operation, errKind string) {
	m.errorsTotal.WithLabelValues(operation, errKind).Inc()
}

// RecordTransaction adds amount to the volume counter. The float conversion
// is for reporting only.
func (m *PrometheusMetrics) RecordTransaction(txType models.TransactionType, amount money.Amount) {
	m.transactionsTotal.WithLabelValues(string(txType)).Inc()
	m.volumeTotal.WithLabelValues(string(txType)).Add(amount.Decimal().InexactFloat64())
}

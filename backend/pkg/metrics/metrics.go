package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 批量导入单条结果标签
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Metrics 课程同步相关指标
// 所有方法对 nil 接收者安全，未启用指标时直接传 nil
type Metrics struct {
	ingestItems  *prometheus.CounterVec
	operations   *prometheus.CounterVec
	opLatency    *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// New 在给定 Registerer 上注册指标
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ingestItems: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "queaula",
			Name:      "ingest_items_total",
			Help:      "Subjects processed by batch ingestion, by outcome.",
		}, []string{"outcome"}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "queaula",
			Name:      "operations_total",
			Help:      "Class operations executed, by operation and result.",
		}, []string{"operation", "result"}),
		opLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "queaula",
			Name:      "operation_duration_seconds",
			Help:      "Latency of class operations including the storage transaction.",
			Buckets: []float64{
				0.005, 0.01, 0.025, 0.05,
				0.1, 0.25, 0.5,
				1, 2.5, 5, 10,
			},
		}, []string{"operation"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "queaula",
			Name:      "list_cache_lookups_total",
			Help:      "Class list cache lookups, by result (hit/miss/error).",
		}, []string{"result"}),
	}
}

// IngestItem 记录一条导入结果
func (m *Metrics) IngestItem(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ingestItems.WithLabelValues(outcome).Add(float64(n))
}

// ObserveOperation 记录一次操作的结果与耗时
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.opLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// CacheLookup 记录一次列表缓存查询
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "onestop"

// Источники и исходы, используемые в метках.
const (
	SourceCache    = "cache"
	SourceLLM      = "llm"
	SourceFallback = "fallback"
	SourceLocal    = "local"
	OutcomeFailed  = "failed"
	OutcomeQuota   = "quota_exceeded"
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type Metrics struct {
	Plans            *prometheus.CounterVec
	Regenerations    *prometheus.CounterVec
	LLMRequests      *prometheus.CounterVec
	DroppedRecords   prometheus.Counter
	CatalogAdditions prometheus.Counter
}

// New регистрирует счетчики в reg. nil означает незарегистрированные счетчики (для тестов и CLI).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Plans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Outing plans served, by source.",
		}, []string{"source"}),
		Regenerations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regenerations_total",
			Help:      "Single event regenerations, by outcome.",
		}, []string{"outcome"}),
		LLMRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Generation service calls, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		DroppedRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_dropped_records_total",
			Help:      "Generated records dropped during parsing.",
		}),
		CatalogAdditions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_additions_total",
			Help:      "Generated events appended to the local catalog.",
		}),
	}
}

// NewRegistry создает реестр с метриками процесса и Go runtime.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CacheLookups    *prometheus.CounterVec   // labels: cache, result (hit/miss)
	ProviderSeconds *prometheus.HistogramVec // label: operation (geocode/distance)
	ProviderErrors  prometheus.Counter
	Reconciliations *prometheus.CounterVec // label: outcome
	Quotes          *prometheus.CounterVec // label: result (accepted/rejected)
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rota_cache_lookups_total",
			Help: "Total number of cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		ProviderSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rota_provider_request_duration_seconds",
			Help:    "Duration of requests to external geocoding/distance providers.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ProviderErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rota_provider_errors_total",
			Help: "Total number of errors received from external providers.",
		}),
		Reconciliations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rota_distance_reconciliations_total",
			Help: "Outcomes of local-vs-provider distance reconciliation.",
		}, []string{"outcome"}),
		Quotes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rota_delivery_quotes_total",
			Help: "Total number of delivery quotes by result.",
		}, []string{"result"}),
	}
}

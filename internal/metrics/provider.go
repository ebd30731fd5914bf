package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "ragchat"

// Provider and corpus Prometheus metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of embedding and completion requests",
		},
		[]string{"operation", "model", "status"}, // operation: embedding | completion
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "model"},
	)

	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_total",
			Help:      "Total provider tokens consumed",
		},
		[]string{"operation", "model", "type"},
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total provider errors",
		},
		[]string{"operation", "model", "error_type"},
	)

	CorpusLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_loads_total",
			Help:      "Corpus loads by source kind and outcome",
		},
		[]string{"kind", "status"}, // kind: pdf | url
	)

	CorpusChunks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_chunks",
			Help:      "Number of chunks in the loaded corpus",
		},
	)

	AsksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asks_total",
			Help:      "Questions answered, by outcome",
		},
		[]string{"outcome"}, // answered | no_content | error
	)
)

var registered bool

// Register registers all service metrics with the default registry. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderTokensTotal)
	prometheus.MustRegister(ProviderErrorsTotal)
	prometheus.MustRegister(CorpusLoadsTotal)
	prometheus.MustRegister(CorpusChunks)
	prometheus.MustRegister(AsksTotal)
	registered = true
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "voicenote"

// Provider Prometheus metrics. The operation label is "transcription" or "embedding".
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of speech and embedding provider requests",
		},
		[]string{"operation", "model", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "model"},
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total provider errors",
		},
		[]string{"operation", "model", "error_type"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"model", "type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)

	TranscribedAudioSeconds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcribed_audio_seconds_total",
			Help:      "Total duration of transcribed audio reported by the provider",
		},
		[]string{"model"},
	)
)

// Note store and session metrics.
var (
	StoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total note store operations",
		},
		[]string{"operation", "status"},
	)

	NotesSavedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notes_saved_total",
			Help:      "Total notes written to the vector store",
		},
	)

	IDConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "note_id_conflicts_total",
			Help:      "Candidate note ids found already taken during id assignment",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live sessions held by the server",
		},
	)
)

var registerOnce sync.Once

// Register registers every voicenote collector with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ProviderRequestsTotal,
			ProviderRequestDuration,
			ProviderErrorsTotal,
			EmbeddingTokensTotal,
			EmbeddingCacheTotal,
			TranscribedAudioSeconds,
			StoreOperationsTotal,
			NotesSavedTotal,
			IDConflictsTotal,
			ActiveSessions,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}

// StoreStatus maps an error to the status label of StoreOperationsTotal.
func StoreStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

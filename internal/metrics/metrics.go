package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, path, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productai_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// CompletionDuration tracks the full stream duration per provider and
	// prompt type, from the provider call to the last chunk.
	CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "productai_completion_duration_seconds",
		Help:    "Time spent streaming a completion.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"model", "type"})

	// FirstChunk tracks time to first chunk, which is what users perceive.
	FirstChunk = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "productai_first_chunk_seconds",
		Help:    "Time until the first completion chunk is relayed.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"model"})

	// ChunksTotal counts relayed chunks per provider.
	ChunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productai_completion_chunks_total",
		Help: "Completion chunks relayed to clients.",
	}, []string{"model"})

	// ErrorsTotal counts provider failures by stage: "start" when nothing
	// was relayed yet, "stream" when the response had to be aborted.
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productai_completion_errors_total",
		Help: "Provider failures during completion.",
	}, []string{"model", "stage"})

	// DescriptionChars tracks the distribution of input description lengths.
	DescriptionChars = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "productai_description_chars",
		Help:    "Number of characters in the product description sent for completion.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	// AdapterAvailable tracks whether each adapter is reachable.
	AdapterAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "productai_adapter_available",
		Help: "Whether a completion adapter is available (1) or not (0).",
	}, []string{"adapter"})
)

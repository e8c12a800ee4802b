// Package metrics provides Prometheus metrics for ingestion, retrieval and the HTTP relay
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "checkprioritizer"

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Ingestion metrics
	IngestRuns        *prometheus.CounterVec
	IngestDuration    prometheus.Histogram
	RecordsLoaded     prometheus.Counter
	SourcesSkipped    *prometheus.CounterVec
	ChunksCreated     prometheus.Counter
	EntriesAdded      prometheus.Counter
	EmbeddingDuration prometheus.Histogram

	// Search metrics
	SearchRequests    *prometheus.CounterVec
	SearchDuration    *prometheus.HistogramVec
	SearchResultCount prometheus.Histogram

	// Answer metrics
	AnswerRequests *prometheus.CounterVec
	AnswerDuration prometheus.Histogram

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
}

// New creates and registers all collectors with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IngestRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Ingestion runs by outcome",
		}, []string{"status"}),
		IngestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of ingestion runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7min
		}),
		RecordsLoaded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Total number of source records loaded",
		}),
		SourcesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sources_skipped_total",
			Help:      "Skipped source files and rows",
		}, []string{"kind"}),
		ChunksCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_created_total",
			Help:      "Total number of chunks created",
		}),
		EntriesAdded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_entries_added_total",
			Help:      "Total number of index entries written",
		}),
		EmbeddingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_batch_duration_seconds",
			Help:      "Duration of one embedding batch in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		}),

		SearchRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by mode and outcome",
		}, []string{"mode", "status"}),
		SearchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of search operations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		}, []string{"mode"}),
		SearchResultCount: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_count",
			Help:      "Number of results returned per search",
			Buckets:   prometheus.LinearBuckets(0, 2, 11),
		}),

		AnswerRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_requests_total",
			Help:      "Answer requests by outcome",
		}, []string{"status"}),
		AnswerDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_duration_seconds",
			Help:      "Duration of answer synthesis in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveIngest records the outcome of one ingestion run
func (m *Metrics) ObserveIngest(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.IngestRuns.WithLabelValues(status(err)).Inc()
	m.IngestDuration.Observe(d.Seconds())
}

// AddIngestCounts records loaded and skipped sources for one run
func (m *Metrics) AddIngestCounts(records, chunks, added, filesSkipped, rowsSkipped int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.Add(float64(records))
	m.ChunksCreated.Add(float64(chunks))
	m.EntriesAdded.Add(float64(added))
	m.SourcesSkipped.WithLabelValues("file").Add(float64(filesSkipped))
	m.SourcesSkipped.WithLabelValues("row").Add(float64(rowsSkipped))
}

// ObserveEmbeddingBatch records one embedding batch
func (m *Metrics) ObserveEmbeddingBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.EmbeddingDuration.Observe(d.Seconds())
}

// ObserveSearch records one search
func (m *Metrics) ObserveSearch(mode string, d time.Duration, results int, err error) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(mode, status(err)).Inc()
	if err != nil {
		return
	}
	m.SearchDuration.WithLabelValues(mode).Observe(d.Seconds())
	m.SearchResultCount.Observe(float64(results))
}

// ObserveAnswer records one answer synthesis
func (m *Metrics) ObserveAnswer(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.AnswerRequests.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.AnswerDuration.Observe(d.Seconds())
	}
}

// ObserveHTTP records one HTTP response
func (m *Metrics) ObserveHTTP(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, httpCode(code)).Inc()
}

func httpCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeNoValidData = "no_valid_data"
	OutcomeParseError  = "parse_error"
	OutcomeError       = "error"
)

// Recorder holds the service's collectors on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	UploadsProcessed   *prometheus.CounterVec
	RowsRejected       prometheus.Counter
	MatchedTrades      prometheus.Counter
	AnalysisRequests   *prometheus.CounterVec
	PipelineDuration   prometheus.Histogram
	MarketDataFailures prometheus.Counter
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		UploadsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradelens",
			Name:      "uploads_processed_total",
			Help:      "Trade history uploads processed, by outcome.",
		}, []string{"outcome"}),
		RowsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradelens",
			Name:      "rows_rejected_total",
			Help:      "Rows dropped during normalization.",
		}),
		MatchedTrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradelens",
			Name:      "matched_trades_total",
			Help:      "Matched buy/sell slices produced by the ledger.",
		}),
		AnalysisRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradelens",
			Name:      "analysis_requests_total",
			Help:      "Calls to the external analysis service, by outcome.",
		}, []string{"outcome"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tradelens",
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent turning one upload into an analysis result.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		MarketDataFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradelens",
			Name:      "market_data_failures_total",
			Help:      "Candle feed requests that failed.",
		}),
	}
	reg.MustRegister(
		r.UploadsProcessed,
		r.RowsRejected,
		r.MatchedTrades,
		r.AnalysisRequests,
		r.PipelineDuration,
		r.MarketDataFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry is exposed for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

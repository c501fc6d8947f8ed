package contentsync

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/contentsync/contentsync/platform"
)

// Generation outcomes used as the "outcome" label.
const (
	outcomeSuccess      = "success"
	outcomeFailure      = "failure"
	outcomeRateLimited  = "rate_limited"
	outcomeUnconfigured = "unconfigured"
	outcomeInvalid      = "invalid"
)

// metrics holds the collectors of one App. Each App owns its registry so
// several instances can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	classifications   *prometheus.CounterVec
	generations       *prometheus.CounterVec
	generationSeconds prometheus.Histogram
	platformWrites    *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &metrics{
		registry: reg,
		classifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contentsync_platform_classifications_total",
			Help: "URLs classified, by detected platform type",
		}, []string{"platform_type", "detected"}),
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contentsync_generations_total",
			Help: "Repurposing requests, by outcome",
		}, []string{"outcome"}),
		generationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "contentsync_generation_duration_seconds",
			Help:    "Language model latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		platformWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contentsync_platform_writes_total",
			Help: "Platform create, update and delete operations",
		}, []string{"op"}),
	}
}

func (m *metrics) observeClassification(info platform.Info) {
	m.classifications.WithLabelValues(string(info.Type), strconv.FormatBool(info.Detected)).Inc()
}

func (m *metrics) observeGeneration(outcome string, d time.Duration) {
	m.generations.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.generationSeconds.Observe(d.Seconds())
	}
}

func (m *metrics) observePlatformWrite(op string) {
	m.platformWrites.WithLabelValues(op).Inc()
}

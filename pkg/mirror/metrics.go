package mirror

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "emoji_mirror"

// Metrics exposes Prometheus collectors that report synchronization
// activity.
type Metrics struct {
	passes            *prometheus.CounterVec
	passDuration      prometheus.Histogram
	droppedTriggers   prometheus.Counter
	downloads         prometheus.Counter
	downloadedBytes   prometheus.Counter
	deletions         prometheus.Counter
	mirrored          prometheus.Gauge
	unresolvedAliases prometheus.Gauge
}

// MustNewMetrics constructs the collectors and registers them with reg. A
// nil reg leaves them unregistered. Registration errors panic, like the
// promauto helpers.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "passes_total",
			Help:      "Synchronization passes that ran, by result.",
		}, []string{"result"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of synchronization passes.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		droppedTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dropped_triggers_total",
			Help:      "Triggers dropped because a pass was already running.",
		}),
		downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "downloads_total",
			Help:      "Emoji images downloaded.",
		}),
		downloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "downloaded_bytes_total",
			Help:      "Bytes of emoji images downloaded.",
		}),
		deletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "deletions_total",
			Help:      "Stale emoji images deleted.",
		}),
		mirrored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "emoji",
			Help:      "Emoji in the last successfully mirrored index.",
		}),
		unresolvedAliases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "unresolved_aliases",
			Help:      "Aliases in the last fetched index that didn't resolve to an image.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.passes, m.passDuration, m.droppedTriggers, m.downloads,
			m.downloadedBytes, m.deletions, m.mirrored, m.unresolvedAliases)
	}
	return m
}

func (m *Metrics) observePass(res Result, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.passes.WithLabelValues(result).Inc()
	m.passDuration.Observe(res.Duration.Seconds())
	m.unresolvedAliases.Set(float64(res.Unresolved))
	if err == nil {
		m.mirrored.Set(float64(res.Mirrored))
	}
}

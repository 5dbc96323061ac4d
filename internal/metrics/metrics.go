// Package metrics exposes search progress as Prometheus metrics.
package metrics

import (
	"math"
	"strconv"
	"sync"

	"edge-tuner/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "edge_tuner"
	subsystem = "search"
)

// Recorder implements search.Observer on a private registry, so several
// runs in one process never collide.
type Recorder struct {
	registry *prometheus.Registry

	trials       *prometheus.CounterVec
	cost         prometheus.Histogram
	evalDuration prometheus.Histogram
	bestCost     prometheus.Gauge
	blurSize     *prometheus.CounterVec

	mu   sync.Mutex
	best float64
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		best:     math.Inf(1),

		// Labels: status (completed, failed)
		trials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "trials_total",
			Help:      "Trials run by status",
		}, []string{"status"}),

		cost: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "trial_cost",
			Help:      "Distribution of trial costs",
			Buckets:   []float64{-100, -50, -20, -10, -5, -2, -1, -0.5, 0, 0.5, 1, 5, 10},
		}),

		evalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evaluation_duration_seconds",
			Help:      "Time to evaluate one parameter set",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),

		bestCost: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "best_cost",
			Help:      "Lowest cost seen so far",
		}),

		// Labels: size (gaussian kernel size)
		blurSize: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sampled_blur_size_total",
			Help:      "Sampled Gaussian kernel sizes",
		}, []string{"size"}),
	}
}

func (r *Recorder) TrialCompleted(trial int, params models.ParameterSet, report models.CostReport) {
	r.trials.WithLabelValues("completed").Inc()
	r.blurSize.WithLabelValues(strconv.Itoa(params.GaussianBlurSize)).Inc()
	r.cost.Observe(report.Cost)
	r.evalDuration.Observe(report.Duration.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()
	if report.Cost < r.best {
		r.best = report.Cost
		r.bestCost.Set(report.Cost)
	}
}

func (r *Recorder) TrialFailed(trial int, params models.ParameterSet, err error) {
	r.trials.WithLabelValues("failed").Inc()
	r.blurSize.WithLabelValues(strconv.Itoa(params.GaussianBlurSize)).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the current metrics in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

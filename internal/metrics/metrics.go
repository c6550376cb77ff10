package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "laundry"

var (
	cyclesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Count of finished wash cycles by result and error code.",
		},
		[]string{"result", "error_code"},
	)
	programCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "programs_run_total",
			Help:      "Count of wash cycles by requested and resolved program.",
		},
		[]string{"requested", "resolved"},
	)
	busyCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "busy_rejections_total",
			Help:      "Count of cycle requests rejected because a cycle was already running.",
		},
	)
	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock duration of wash cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
	cycleRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_running",
			Help:      "1 while a wash cycle is running.",
		},
	)
)

var registerMetrics sync.Once

// Register all metrics with the given registerer. Only the first call registers.
func Register(reg prometheus.Registerer) {
	registerMetrics.Do(func() {
		reg.MustRegister(cyclesCounter)
		reg.MustRegister(programCounter)
		reg.MustRegister(busyCounter)
		reg.MustRegister(cycleDuration)
		reg.MustRegister(cycleRunning)
	})
}

// RecordCycle records a finished cycle.
func RecordCycle(result, errorCode, requested, resolved string, took time.Duration) {
	cyclesCounter.WithLabelValues(result, errorCode).Inc()
	if resolved != "" {
		programCounter.WithLabelValues(requested, resolved).Inc()
	}
	cycleDuration.Observe(took.Seconds())
}

func RecordBusyRejection() {
	busyCounter.Inc()
}

func SetCycleRunning(running bool) {
	if running {
		cycleRunning.Set(1)
		return
	}
	cycleRunning.Set(0)
}

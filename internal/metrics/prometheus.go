// Package metrics provides Prometheus-based metrics collection for portsweep.
// PrometheusMetrics observes the scan pipeline and can be exposed over HTTP
// for the duration of a run.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all portsweep metrics
	namespace = "portsweep"

	// Subsystems
	subsystemScan    = "scan"
	subsystemConnect = "connect"
	subsystemTargets = "targets"
	subsystemSystem  = "system"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	// Scan metrics
	scansTotal   *prometheus.CounterVec
	scanDuration prometheus.Histogram

	// Connection attempt metrics
	attemptsTotal   *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	// Target metrics
	targetsTotal *prometheus.CounterVec

	// System metrics
	uptime prometheus.GaugeFunc

	startTime time.Time
	registry  *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		startTime: time.Now(),
		registry:  registry,
	}

	pm.initScanMetrics()
	pm.initConnectMetrics()
	pm.initTargetMetrics()
	pm.initSystemMetrics()

	pm.registerMetrics()

	// Register standard Go and process collectors for runtime visibility
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

// initScanMetrics initializes whole-run metrics
func (pm *PrometheusMetrics) initScanMetrics() {
	pm.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "total",
			Help:      "Total number of scans by completion status",
		},
		[]string{"status"},
	)

	pm.scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "duration_seconds",
			Help:      "Duration of scan runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0, 600.0, 1800.0},
		},
	)
}

// initConnectMetrics initializes per-attempt metrics
func (pm *PrometheusMetrics) initConnectMetrics() {
	pm.attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemConnect,
			Name:      "attempts_total",
			Help:      "Total number of TCP connection attempts by outcome",
		},
		[]string{"outcome"},
	)

	pm.attemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemConnect,
			Name:      "duration_seconds",
			Help:      "Duration of TCP connection attempts in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 3.0, 5.0},
		},
		[]string{"outcome"},
	)

	pm.inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemConnect,
			Name:      "in_flight",
			Help:      "Number of connection attempts currently in progress",
		},
	)
}

// initTargetMetrics initializes address resolution metrics
func (pm *PrometheusMetrics) initTargetMetrics() {
	pm.targetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTargets,
			Name:      "total",
			Help:      "Total number of targets by resolution result",
		},
		[]string{"result"},
	)
}

// initSystemMetrics initializes system-related metrics
func (pm *PrometheusMetrics) initSystemMetrics() {
	pm.uptime = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "uptime_seconds",
			Help:      "Application uptime in seconds",
		},
		func() float64 { return time.Since(pm.startTime).Seconds() },
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() {
	pm.registry.MustRegister(pm.scansTotal)
	pm.registry.MustRegister(pm.scanDuration)
	pm.registry.MustRegister(pm.attemptsTotal)
	pm.registry.MustRegister(pm.attemptDuration)
	pm.registry.MustRegister(pm.inFlight)
	pm.registry.MustRegister(pm.targetsTotal)
	pm.registry.MustRegister(pm.uptime)
}

// GetRegistry returns the Prometheus registry for HTTP handler
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// GetUptime returns the application uptime
func (pm *PrometheusMetrics) GetUptime() time.Duration {
	return time.Since(pm.startTime)
}

// AttemptStarted marks a connection attempt as in flight.
func (pm *PrometheusMetrics) AttemptStarted() {
	pm.inFlight.Inc()
}

// AttemptFinished records the outcome and latency of a connection attempt.
func (pm *PrometheusMetrics) AttemptFinished(outcome string, elapsed time.Duration) {
	pm.inFlight.Dec()
	pm.attemptsTotal.WithLabelValues(outcome).Inc()
	pm.attemptDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// TargetsResolved records how many address tokens produced targets.
func (pm *PrometheusMetrics) TargetsResolved(resolved, unresolved int) {
	pm.targetsTotal.WithLabelValues("resolved").Add(float64(resolved))
	pm.targetsTotal.WithLabelValues("unresolved").Add(float64(unresolved))
}

// ScanCompleted records the end of a scan run.
func (pm *PrometheusMetrics) ScanCompleted(status string, elapsed time.Duration) {
	pm.scansTotal.WithLabelValues(status).Inc()
	pm.scanDuration.Observe(elapsed.Seconds())
}

// Global instance for easy access
var globalMetrics *PrometheusMetrics
var metricsOnce sync.Once

// GetGlobalMetrics returns the global Prometheus metrics instance
func GetGlobalMetrics() *PrometheusMetrics {
	metricsOnce.Do(func() {
		globalMetrics = NewPrometheusMetrics()
	})
	return globalMetrics
}

// Package metrics exposes control loop counters and gauges to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "thermoclient"

// Cycle outcomes used as the "outcome" label.
const (
	OutcomeOK            = "ok"
	OutcomeConfigFailed  = "config_failed"
	OutcomeProgramFailed = "program_failed"
	OutcomeSensorFailed  = "sensor_failed"
	OutcomeInterrupted   = "interrupted"
)

// Metrics groups the collectors updated by the control loop. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	cycles         *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	currentTemp    prometheus.Gauge
	targetTemp     prometheus.Gauge
	heaterOn       prometheus.Gauge
	reportFailures prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg. When reg is nil a
// private registry is used.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Control cycles by outcome.",
		}, []string{"outcome"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent in one control cycle, excluding the wait.",
			Buckets:   prometheus.DefBuckets,
		}),
		currentTemp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_temperature_celsius",
			Help:      "Last valid sensor reading.",
		}),
		targetTemp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_temperature_celsius",
			Help:      "Setpoint resolved in the last cycle.",
		}),
		heaterOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heater_on",
			Help:      "1 when the heater is commanded ON.",
		}),
		reportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_failures_total",
			Help:      "Status posts to the server that failed.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.cycles,
		m.cycleDuration,
		m.currentTemp,
		m.targetTemp,
		m.heaterOn,
		m.reportFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveCycle counts a finished cycle and its duration.
func (m *Metrics) ObserveCycle(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(d.Seconds())
}

// SetCurrentTemp records a valid sensor reading.
func (m *Metrics) SetCurrentTemp(c float64) {
	if m == nil {
		return
	}
	m.currentTemp.Set(c)
}

// SetTarget records the resolved setpoint.
func (m *Metrics) SetTarget(c float64) {
	if m == nil {
		return
	}
	m.targetTemp.Set(c)
}

// SetHeater records the commanded heater state.
func (m *Metrics) SetHeater(on bool) {
	if m == nil {
		return
	}
	if on {
		m.heaterOn.Set(1)
		return
	}
	m.heaterOn.Set(0)
}

// ReportFailed counts a failed upstream status post.
func (m *Metrics) ReportFailed() {
	if m == nil {
		return
	}
	m.reportFailures.Inc()
}

package httpapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sugarbeard/sugarbeardd/internal/battery"
	"github.com/sugarbeard/sugarbeardd/internal/orchestrator"
)

// Metrics exposes the battery/RTC daemon's Prometheus surface, grounded in
// the teacher's internal/core/metrics/prometheus.go (PrometheusCollector)
// pattern but trimmed to the gauges/histogram/counter this daemon actually
// produces: no HTTP/websocket/database metrics of its own, since those are
// the teacher's domain, not this one's.
type Metrics struct {
	voltage     prometheus.Gauge
	voltageAvg  prometheus.Gauge
	current     prometheus.Gauge
	currentAvg  prometheus.Gauge
	level       prometheus.Gauge
	charging    prometheus.Gauge
	plugged     prometheus.Gauge
	pollLatency prometheus.Histogram
	taps        *prometheus.CounterVec
}

// NewMetrics registers the daemon's gauges/histogram/counter against the
// default Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		voltage: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "sugarbeard", Subsystem: "battery", Name: "voltage_volts",
			Help: "Instantaneous battery voltage.",
		}),
		voltageAvg: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "sugarbeard", Subsystem: "battery", Name: "voltage_avg_volts",
			Help: "30-sample rolling average battery voltage.",
		}),
		current: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "sugarbeard", Subsystem: "battery", Name: "current_amps",
			Help: "Instantaneous (signed) battery current.",
		}),
		currentAvg: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "sugarbeard", Subsystem: "battery", Name: "current_avg_amps",
			Help: "30-sample rolling average battery current.",
		}),
		level: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "sugarbeard", Subsystem: "battery", Name: "level_percent",
			Help: "Battery charge level as a percentage.",
		}),
		charging: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "sugarbeard", Subsystem: "battery", Name: "charging",
			Help: "1 if the battery is currently charging, else 0.",
		}),
		plugged: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "sugarbeard", Subsystem: "battery", Name: "power_plugged",
			Help: "1 if external power is plugged in, else 0.",
		}),
		pollLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sugarbeard", Subsystem: "poll", Name: "tick_seconds",
			Help:    "Wall-clock duration of each 100ms poll tick.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		taps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sugarbeard", Subsystem: "button", Name: "taps_total",
			Help: "Count of classified tap gestures by kind.",
		}, []string{"classification"}),
	}
}

// observeSnapshot updates the gauges from a poll-tick Snapshot.
func (m *Metrics) observeSnapshot(s orchestrator.Snapshot) {
	m.voltage.Set(s.Voltage)
	m.voltageAvg.Set(s.VoltageAvg)
	m.current.Set(s.Current)
	m.currentAvg.Set(s.CurrentAvg)
	m.level.Set(s.Level)
	m.charging.Set(boolToFloat(s.Charging))
	m.plugged.Set(boolToFloat(s.PowerPlugged))
}

// observeTap increments the tap counter for a classified gesture.
func (m *Metrics) observeTap(ev battery.TapEvent) {
	m.taps.WithLabelValues(ev.Classification.String()).Inc()
}

// ObservePollDuration feeds the poll-latency histogram; wired to
// orchestrator.Orchestrator.OnTick.
func (m *Metrics) ObservePollDuration(d time.Duration) {
	m.pollLatency.Observe(d.Seconds())
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

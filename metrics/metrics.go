// Package metrics exposes loop and HTTP activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"petfeeder/station"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	reg      *prometheus.Registry
	pulses   *prometheus.CounterVec
	active   *prometheus.GaugeVec
	sensors  *prometheus.GaugeVec
	led      prometheus.Gauge
	requests *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		pulses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petfeeder_pulses_total",
			Help: "Pulses started per actuator.",
		}, []string{"actuator"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "petfeeder_actuator_active",
			Help: "1 while an actuator pulse is in flight.",
		}, []string{"actuator"}),
		sensors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "petfeeder_sensor_present",
			Help: "Last polled presence flag per sensor.",
		}, []string{"sensor"}),
		led: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "petfeeder_led_on",
			Help: "1 while the LED is on.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petfeeder_http_requests_total",
			Help: "HTTP requests per route.",
		}, []string{"route"}),
	}
	m.reg.MustRegister(
		m.pulses, m.active, m.sensors, m.led, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePulse records a pulse edge.
func (m *Metrics) ObservePulse(name string, active bool) {
	if active {
		m.pulses.WithLabelValues(name).Inc()
	}
	m.active.WithLabelValues(name).Set(boolGauge(active))
}

// ObserveStatus records sensor flags and the LED.
func (m *Metrics) ObserveStatus(st station.Status) {
	for _, r := range st.Sensors {
		m.sensors.WithLabelValues(r.Key).Set(boolGauge(r.Present))
	}
	m.led.Set(boolGauge(st.LED))
}

// ObserveRequest counts one request on route.
func (m *Metrics) ObserveRequest(route string) {
	m.requests.WithLabelValues(route).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

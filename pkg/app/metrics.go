package app

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"dhtl/pkg/datalogger"
	"dhtl/pkg/dht"
)

// metrics to expose to Prometheus
type metrics struct {
	registry    *prometheus.Registry
	humidity    prometheus.Gauge
	temperature prometheus.Gauge
	reads       *prometheus.CounterVec
	rejected    prometheus.Counter
}

func newMetrics(v dht.Variant, gpio int) *metrics {
	labels := prometheus.Labels{"sensor": v.String(), "gpio": strconv.Itoa(gpio)}

	m := &metrics{
		registry: prometheus.NewRegistry(),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "dht_humidity",
			Help:        "Humidity (units: % of relative Humidity)",
			ConstLabels: labels,
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "dht_temperature",
			Help:        "Air Temperature (units: degrees Celsius)",
			ConstLabels: labels,
		}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "dht_reads_total",
			Help:        "Sensor reads by result (ok, handshake, checksum)",
			ConstLabels: labels,
		}, []string{"result"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dht_rejected_total",
			Help:        "Valid frames rejected by the plausibility check",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(m.humidity, m.temperature, m.reads, m.rejected)
	m.registry.MustRegister(collectors.NewBuildInfoCollector())
	m.registry.MustRegister(collectors.NewGoCollector())

	return m
}

// observeRead counts the result of a sensor read.
func (m *metrics) observeRead(err error) {
	switch {
	case err == nil:
		m.reads.WithLabelValues("ok").Inc()
	case errors.Is(err, dht.ErrHandshake):
		m.reads.WithLabelValues("handshake").Inc()
	case errors.Is(err, dht.ErrChecksum):
		m.reads.WithLabelValues("checksum").Inc()
	default:
		m.reads.WithLabelValues("error").Inc()
	}
}

func (m *metrics) set(f datalogger.Frame) {
	m.humidity.Set(f.Humidity)
	m.temperature.Set(f.Temperature)
}

// Package metrics counts generator output in Prometheus form and dumps it
// in the text exposition format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"aerosentinel/pkg/model"
)

// Collector holds the metrics of one generator process. It implements the
// generator's event recorder.
type Collector struct {
	registry *prometheus.Registry

	recordsTotal      prometheus.Counter
	eventsTotal       *prometheus.CounterVec
	apogeeAltitude    prometheus.Gauge
	apogeeTime        prometheus.Gauge
	maxVelocity       prometheus.Gauge
	landingTime       prometheus.Gauge
	generationSeconds prometheus.Histogram
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		recordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aerosentinel_records_total",
			Help: "Total number of telemetry records generated.",
		}),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aerosentinel_flight_events_total",
				Help: "Total number of flight events detected.",
			},
			[]string{"type"},
		),
		apogeeAltitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aerosentinel_apogee_altitude_meters",
			Help: "Altitude at the detected apogee.",
		}),
		apogeeTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aerosentinel_apogee_time_seconds",
			Help: "Flight time at the detected apogee.",
		}),
		maxVelocity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aerosentinel_max_velocity_mps",
			Help: "Highest vertical velocity before touchdown.",
		}),
		landingTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aerosentinel_landing_time_seconds",
			Help: "Flight time at touchdown.",
		}),
		generationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aerosentinel_generation_duration_seconds",
			Help:    "Wall-clock time spent generating a flight log.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(
		c.recordsTotal,
		c.eventsTotal,
		c.apogeeAltitude,
		c.apogeeTime,
		c.maxVelocity,
		c.landingTime,
		c.generationSeconds,
	)
	// Pre-create every event label so absent events export as 0
	for _, t := range []model.FlightEventType{
		model.EventTakeoff, model.EventApogee, model.EventParachuteEjection, model.EventRecovery,
	} {
		c.eventsTotal.WithLabelValues(string(t))
	}
	return c
}

// RecordEvent counts a detected flight event.
func (c *Collector) RecordEvent(e *model.FlightEvent) {
	c.eventsTotal.WithLabelValues(string(e.Type)).Inc()
	switch e.Type {
	case model.EventApogee:
		c.apogeeAltitude.Set(e.Altitude)
		c.apogeeTime.Set(e.Time)
	case model.EventRecovery:
		c.landingTime.Set(e.Time)
	}
}

// ObserveRun records the totals of a finished run.
func (c *Collector) ObserveRun(sum *model.FlightSummary, elapsed time.Duration) {
	c.recordsTotal.Add(float64(sum.RecordCount))
	c.maxVelocity.Set(sum.MaxVelocity)
	c.generationSeconds.Observe(elapsed.Seconds())
}

// WriteTextfile dumps every metric to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerosentinel/pkg/model"
)

func TestCollector_RecordEvent(t *testing.T) {
	c := NewCollector()

	c.RecordEvent(&model.FlightEvent{Type: model.EventTakeoff, Time: 0.2})
	c.RecordEvent(&model.FlightEvent{Type: model.EventApogee, Time: 18.25, Altitude: 1346.51})
	c.RecordEvent(&model.FlightEvent{Type: model.EventRecovery, Time: 34.8})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.eventsTotal.WithLabelValues("takeoff")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.eventsTotal.WithLabelValues("apogee")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.eventsTotal.WithLabelValues("parachute_ejection")))
	assert.Equal(t, 1346.51, testutil.ToFloat64(c.apogeeAltitude))
	assert.Equal(t, 18.25, testutil.ToFloat64(c.apogeeTime))
	assert.Equal(t, 34.8, testutil.ToFloat64(c.landingTime))
}

func TestCollector_ObserveRun(t *testing.T) {
	c := NewCollector()
	c.ObserveRun(&model.FlightSummary{RecordCount: 1200, MaxVelocity: 148.5}, 20*time.Millisecond)

	assert.Equal(t, 1200.0, testutil.ToFloat64(c.recordsTotal))
	assert.Equal(t, 148.5, testutil.ToFloat64(c.maxVelocity))
	assert.Equal(t, 1, testutil.CollectAndCount(c.generationSeconds))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector()
	c.RecordEvent(&model.FlightEvent{Type: model.EventApogee, Altitude: 100})

	path := filepath.Join(t.TempDir(), "metrics", "aerosentinel.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `aerosentinel_flight_events_total{type="apogee"} 1`), text)
	assert.True(t, strings.Contains(text, `aerosentinel_flight_events_total{type="recovery"} 0`), text)
	assert.True(t, strings.Contains(text, "aerosentinel_apogee_altitude_meters 100"), text)
}

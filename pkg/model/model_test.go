package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestModel(t *testing.T) {
	// Wire names must match the AST schema consumed by the flight viewer
	rec := TelemetryRecord{
		Timestamp: "00:050",
		BNO055:    IMUData{Quaternion: Quaternion{W: 1}},
		MS5607:    BaroData{Pressure: 101325},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, key := range []string{
		`"timestamp":"00:050"`, `"bno055_data"`, `"bno086_data"`, `"ms5607_data"`,
		`"mpl3115a2s_data"`, `"adxl375_data"`, `"gps_data"`, `"events"`,
		`"orientation_q"`, `"pressure":101325`, `"parachute_ejection":false`,
	} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded record missing %s: %s", key, data)
		}
	}
}

func TestFlightSummary_Event(t *testing.T) {
	s := FlightSummary{Events: []FlightEvent{
		{Type: EventTakeoff, Time: 0.4},
		{Type: EventApogee, Time: 18.2},
	}}

	e, ok := s.Event(EventApogee)
	if !ok || e.Time != 18.2 {
		t.Errorf("expected apogee at 18.2, got %v (found=%v)", e.Time, ok)
	}
	if _, ok := s.Event(EventRecovery); ok {
		t.Error("recovery should not be found")
	}
}

package model

import (
	"time"
)

// FlightEventType names a discrete flight event.
type FlightEventType string

const (
	EventTakeoff           FlightEventType = "takeoff"
	EventApogee            FlightEventType = "apogee"
	EventParachuteEjection FlightEventType = "parachute_ejection"
	EventRecovery          FlightEventType = "recovery"
)

// FlightEvent is a one-shot event observed during generation.
type FlightEvent struct {
	Type      FlightEventType `json:"type"`
	Title     string          `json:"title"`
	Summary   string          `json:"summary,omitempty"`
	Time      float64         `json:"time"`     // Seconds since launch
	Altitude  float64         `json:"altitude"` // m
	Velocity  float64         `json:"velocity"` // m/s
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Timestamp time.Time       `json:"timestamp"` // Wall clock when recorded
}

// PhaseEntry records when the flight entered a phase.
type PhaseEntry struct {
	Phase string  `json:"phase"`
	Label string  `json:"label"`
	Time  float64 `json:"time"` // Seconds since launch
}

// FlightSummary describes a finished generator run.
type FlightSummary struct {
	ID             string        `json:"id"`
	Card           FlightCard    `json:"flight_card"`
	RecordCount    int           `json:"record_count"`
	Duration       float64       `json:"duration"` // Simulated seconds
	ApogeeTime     float64       `json:"apogee_time"`
	ApogeeAltitude float64       `json:"apogee_altitude"`
	MaxVelocity    float64       `json:"max_velocity"`
	LandingTime    float64       `json:"landing_time"`
	Phases         []PhaseEntry  `json:"phases,omitempty"`
	LaunchCell     string        `json:"launch_cell,omitempty"`
	OutputPath     string        `json:"output_path"`
	Events         []FlightEvent `json:"events"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Event returns the first event of the given type, if any.
func (s *FlightSummary) Event(t FlightEventType) (FlightEvent, bool) {
	for _, e := range s.Events {
		if e.Type == t {
			return e, true
		}
	}
	return FlightEvent{}, false
}

package sim

import (
	"strings"

	"aerosentinel/pkg/model"
)

// DetectionParams holds the thresholds used by the PhaseMachine.
type DetectionParams struct {
	TakeoffAltitude float64 // m, lift-off once altitude exceeds this
	BurnTime        float64 // s, coasting starts at or after this time
	ParachuteDelay  float64 // s after apogee
}

// PhaseMachine tracks the flight phase across simulation steps.
//
// Each of the four one-shot events fires at most once per run; its latch stays
// set for the rest of the run. The phase is what the per-step ascent, coasting
// and descent flags are derived from.
type PhaseMachine struct {
	params DetectionParams

	phase        Phase
	prevAltitude float64

	takeoffLatched  bool
	apogeeLatched   bool
	ejectionLatched bool
	recoveryLatched bool
	apogeeTime      float64
	lastTransition  map[Phase]float64
}

// NewPhaseMachine creates a machine in PreFlight with a ground-level
// reference altitude.
func NewPhaseMachine(p DetectionParams) *PhaseMachine {
	return &PhaseMachine{
		params:         p,
		phase:          PhasePreFlight,
		lastTransition: map[Phase]float64{PhasePreFlight: 0},
	}
}

// Update evaluates one step and returns the pulses that fired.
// Checks run in a fixed order: takeoff, coasting, apogee, parachute, recovery.
func (m *PhaseMachine) Update(t, altitude float64) Pulses {
	var p Pulses

	if !m.takeoffLatched && altitude > m.params.TakeoffAltitude {
		p.Takeoff = true
		m.takeoffLatched = true
		m.enter(PhaseAscent, t)
	}

	if m.phase == PhaseAscent && t >= m.params.BurnTime {
		m.enter(PhaseCoasting, t)
	}

	if !m.apogeeLatched && altitude < m.prevAltitude {
		p.Apogee = true
		m.apogeeLatched = true
		m.apogeeTime = t
		m.enter(PhaseDescent, t)
	}

	if !m.ejectionLatched && m.apogeeLatched && t >= m.apogeeTime+m.params.ParachuteDelay {
		p.ParachuteEjection = true
		m.ejectionLatched = true
	}

	if !m.recoveryLatched && altitude <= 0.0 {
		p.Recovery = true
		m.recoveryLatched = true
		// A touchdown only ends descent; a vehicle that lifted off again
		// after an early apogee keeps its ascent flag.
		if !m.phase.Ascending() {
			m.enter(PhaseRecovered, t)
		}
	}

	m.prevAltitude = altitude
	return p
}

func (m *PhaseMachine) enter(next Phase, t float64) {
	if m.phase == next {
		return
	}
	m.phase = next
	m.lastTransition[next] = t
}

// Current returns the current phase.
func (m *PhaseMachine) Current() Phase {
	return m.phase
}

// ApogeeTime returns the time apogee was detected, if it has been.
func (m *PhaseMachine) ApogeeTime() (float64, bool) {
	return m.apogeeTime, m.apogeeLatched
}

// GetLastTransition returns the simulation time of the last entry into the
// given phase.
func (m *PhaseMachine) GetLastTransition(phase Phase) (float64, bool) {
	t, ok := m.lastTransition[phase]
	return t, ok
}

// Events renders the current phase and the step's pulses as wire flags.
func (m *PhaseMachine) Events(p Pulses) model.Events {
	return model.Events{
		TakeoffDetection:  p.Takeoff,
		Ascent:            m.phase.Ascending(),
		Coasting:          m.phase == PhaseCoasting,
		Apogee:            p.Apogee,
		ParachuteEjection: p.ParachuteEjection,
		Descent:           m.phase == PhaseDescent,
		Recovery:          p.Recovery,
	}
}

// FormatPhase returns a human-readable title for the phase.
func FormatPhase(p Phase) string {
	if p == "" {
		return "Unknown"
	}
	// pre_flight -> Pre-Flight
	parts := strings.Split(string(p), "_")
	for i, s := range parts {
		if s != "" {
			parts[i] = strings.ToUpper(s[0:1]) + s[1:]
		}
	}
	return strings.Join(parts, "-")
}

// Package sim integrates the rocket flight model and produces telemetry records.
package sim

// Phase is the flight phase tracked by the PhaseMachine.
type Phase string

const (
	// PhasePreFlight is the state before lift-off is detected.
	PhasePreFlight Phase = "pre_flight"
	// PhaseAscent is powered or unpowered flight before burnout.
	PhaseAscent Phase = "ascent"
	// PhaseCoasting is ascent after motor burnout.
	PhaseCoasting Phase = "coasting"
	// PhaseDescent starts at apogee.
	PhaseDescent Phase = "descent"
	// PhaseRecovered starts at touchdown.
	PhaseRecovered Phase = "recovered"
)

// Ascending reports whether the phase counts as ascent on the wire.
func (p Phase) Ascending() bool {
	return p == PhaseAscent || p == PhaseCoasting
}

// Pulses are one-shot transition signals, true only on the step where the
// transition happened.
type Pulses struct {
	Takeoff           bool
	Apogee            bool
	ParachuteEjection bool
	Recovery          bool
}

// Any reports whether any pulse fired.
func (p Pulses) Any() bool {
	return p.Takeoff || p.Apogee || p.ParachuteEjection || p.Recovery
}

package sim

import (
	"testing"

	"aerosentinel/pkg/model"
)

type tick struct {
	t   float64
	alt float64
}

func TestPhaseMachine(t *testing.T) {
	params := DetectionParams{TakeoffAltitude: 1.0, BurnTime: 3.0, ParachuteDelay: 1.0}

	tests := []struct {
		name     string
		sequence []tick
		expected Phase
		pulses   Pulses // pulses of the last tick
	}{
		{
			name:     "On Pad",
			sequence: []tick{{0.05, 0}, {0.10, 0}},
			expected: PhasePreFlight,
		},
		{
			name:     "Below Takeoff Threshold",
			sequence: []tick{{0.05, 0.4}, {0.10, 1.0}},
			expected: PhasePreFlight,
		},
		{
			name:     "Lift-off",
			sequence: []tick{{0.05, 0.4}, {0.10, 1.2}},
			expected: PhaseAscent,
			pulses:   Pulses{Takeoff: true},
		},
		{
			name:     "Burnout Starts Coasting",
			sequence: []tick{{0.05, 2}, {2.95, 100}, {3.00, 110}},
			expected: PhaseCoasting,
		},
		{
			name:     "Lift-off After Burnout Coasts Immediately",
			sequence: []tick{{3.5, 2}},
			expected: PhaseCoasting,
			pulses:   Pulses{Takeoff: true},
		},
		{
			name:     "Apogee",
			sequence: []tick{{1, 50}, {4, 300}, {4.05, 299.9}},
			expected: PhaseDescent,
			pulses:   Pulses{Apogee: true},
		},
		{
			name:     "Parachute Before Delay",
			sequence: []tick{{1, 50}, {4, 300}, {4.05, 299.9}, {5.0, 290}},
			expected: PhaseDescent,
		},
		{
			name:     "Parachute At Delay",
			sequence: []tick{{1, 50}, {4, 300}, {4.05, 299.9}, {5.05, 290}},
			expected: PhaseDescent,
			pulses:   Pulses{ParachuteEjection: true},
		},
		{
			name:     "Touchdown",
			sequence: []tick{{1, 50}, {4, 300}, {4.05, 299.9}, {5.05, 290}, {20, 3}, {20.05, -0.5}},
			expected: PhaseRecovered,
			pulses:   Pulses{Recovery: true},
		},
		{
			name:     "Touchdown Is One-Shot",
			sequence: []tick{{1, 50}, {4, 300}, {4.05, 299.9}, {20, -0.5}, {20.05, -3}},
			expected: PhaseRecovered,
		},
		{
			name:     "Sink From Pad",
			sequence: []tick{{0.05, -0.1}},
			expected: PhaseRecovered,
			pulses:   Pulses{Apogee: true, Recovery: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewPhaseMachine(params)
			var last Pulses
			for _, tk := range tt.sequence {
				last = m.Update(tk.t, tk.alt)
			}
			if m.Current() != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, m.Current())
			}
			if last != tt.pulses {
				t.Errorf("Expected pulses %+v, got %+v", tt.pulses, last)
			}
		})
	}
}

func TestPhaseMachine_Events(t *testing.T) {
	m := NewPhaseMachine(DetectionParams{TakeoffAltitude: 1.0, BurnTime: 3.0, ParachuteDelay: 1.0})

	ev := m.Events(m.Update(3.2, 5))
	want := model.Events{TakeoffDetection: true, Ascent: true, Coasting: true}
	if ev != want {
		t.Errorf("lift-off after burnout: got %+v, want %+v", ev, want)
	}

	ev = m.Events(m.Update(3.25, 4))
	want = model.Events{Apogee: true, Descent: true}
	if ev != want {
		t.Errorf("apogee: got %+v, want %+v", ev, want)
	}

	if at, ok := m.ApogeeTime(); !ok || at != 3.25 {
		t.Errorf("apogee time = %v (%v), want 3.25", at, ok)
	}
	if at, ok := m.GetLastTransition(PhaseDescent); !ok || at != 3.25 {
		t.Errorf("descent transition = %v (%v), want 3.25", at, ok)
	}
}

func TestFormatPhase(t *testing.T) {
	tests := []struct {
		in   Phase
		want string
	}{
		{PhasePreFlight, "Pre-Flight"},
		{PhaseCoasting, "Coasting"},
		{PhaseRecovered, "Recovered"},
		{"", "Unknown"},
	}

	for _, tt := range tests {
		if got := FormatPhase(tt.in); got != tt.want {
			t.Errorf("FormatPhase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

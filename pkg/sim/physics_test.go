package sim

import (
	"math"
	"testing"
)

func TestKinematicState_Advance(t *testing.T) {
	v := Vehicle{Thrust: 5000, MassInitial: 100, MassPropellant: 30, BurnTime: 3}
	k := NewKinematicState(v)

	if got := v.MassFlowRate(); got != 10 {
		t.Fatalf("MassFlowRate = %v, want 10", got)
	}

	k.Advance(v, 9.81, 0.05)

	// 1. Mass drops by a fixed amount per burning step
	if math.Abs(k.Mass-99.5) > 1e-12 {
		t.Errorf("Expected mass 99.5 after first step, got %.6f", k.Mass)
	}

	// 2. Acceleration uses the post-step mass
	wantAcc := (5000 - 99.5*9.81) / 99.5
	if k.Acceleration != wantAcc {
		t.Errorf("Expected acceleration %.6f, got %.6f", wantAcc, k.Acceleration)
	}

	// 3. Explicit Euler: position uses the already updated velocity
	if k.Velocity != wantAcc*0.05 {
		t.Errorf("Expected velocity %.6f, got %.6f", wantAcc*0.05, k.Velocity)
	}
	if k.Position != k.Velocity*0.05 {
		t.Errorf("Expected position %.6f, got %.6f", k.Velocity*0.05, k.Position)
	}
}

func TestKinematicState_Coast(t *testing.T) {
	v := Vehicle{Thrust: 5000, MassInitial: 100, MassPropellant: 30, BurnTime: 3}
	k := KinematicState{Time: 3.0, Mass: 70, Velocity: 150, Position: 200}

	k.Advance(v, 9.81, 0.05)

	if k.Mass != 70 {
		t.Errorf("Mass must not change after burnout, got %.4f", k.Mass)
	}
	if math.Abs(k.Acceleration+9.81) > 1e-12 {
		t.Errorf("Expected free-fall acceleration, got %.4f", k.Acceleration)
	}
}

func TestEnvironment_Pressure(t *testing.T) {
	env := Environment{SeaLevelPressure: 101325, ScaleHeight: 8434.5}

	if p := env.Pressure(0); p != 101325 {
		t.Errorf("Expected sea-level pressure at 0m, got %.2f", p)
	}
	// One scale height divides pressure by e
	if p := env.Pressure(8434.5); math.Abs(p-101325/math.E) > 1e-6 {
		t.Errorf("Expected %.4f at one scale height, got %.4f", 101325/math.E, p)
	}
	if env.Pressure(-10) <= 101325 {
		t.Error("Pressure below the launch site must exceed sea level")
	}
}

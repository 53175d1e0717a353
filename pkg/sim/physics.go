package sim

// Vehicle describes a single-stage rocket with a constant-thrust motor.
type Vehicle struct {
	Thrust         float64 // N
	MassInitial    float64 // kg
	MassPropellant float64 // kg
	BurnTime       float64 // s
}

// MassFlowRate returns the propellant burn rate in kg/s.
func (v Vehicle) MassFlowRate() float64 {
	return v.MassPropellant / v.BurnTime
}

// KinematicState is the 1-D vertical state of the vehicle.
type KinematicState struct {
	Time         float64 // s since ignition
	Mass         float64 // kg
	Position     float64 // m above the launch site
	Velocity     float64 // m/s, positive up
	Acceleration float64 // m/s^2
}

// NewKinematicState returns the state at ignition.
func NewKinematicState(v Vehicle) KinematicState {
	return KinematicState{Mass: v.MassInitial}
}

// Advance integrates one fixed step with explicit Euler.
//
// Mass drops by a constant amount per step while time <= burn time and is
// not clamped; thrust is applied over the same window. There is no ground
// contact, the vehicle keeps falling below the launch site after touchdown.
func (k *KinematicState) Advance(v Vehicle, g, dt float64) {
	k.Time += dt

	burning := k.Time <= v.BurnTime
	if burning {
		k.Mass -= v.MassFlowRate() * dt
	}

	thrust := 0.0
	if burning {
		thrust = v.Thrust
	}
	weight := k.Mass * g
	k.Acceleration = (thrust - weight) / k.Mass

	k.Velocity += k.Acceleration * dt
	k.Position += k.Velocity * dt
}

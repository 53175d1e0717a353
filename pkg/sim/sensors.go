package sim

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Environment describes the launch site and atmosphere.
type Environment struct {
	Gravity          float64 // m/s^2
	SeaLevelPressure float64 // Pa
	ScaleHeight      float64 // m
	Temperature      float64 // Celsius at ignition
	TemperatureRate  float64 // Celsius per second
	LaunchLat        float64
	LaunchLon        float64
}

// Pressure returns the barometric pressure at the given altitude.
func (e Environment) Pressure(altitude float64) float64 {
	return e.SeaLevelPressure * math.Exp(-altitude/e.ScaleHeight)
}

// SensorState holds the simulated, unrounded sensor channels.
// Everything except the accumulators is recomputed from time and the
// kinematic state each step.
type SensorState struct {
	Orientation  r3.Vec
	OrientationQ r3.Vec
	Accel        r3.Vec
	Gyro         r3.Vec
	Gravity      r3.Vec
	Magnetometer r3.Vec
	Temperature  float64
	Quaternion   quat.Number
	Pressure     float64
	Latitude     float64
	Longitude    float64
	GPSVelocity  r3.Vec
}

// NewSensorState returns the sensor channels at ignition.
func NewSensorState(env Environment) SensorState {
	return SensorState{
		Gravity:      r3.Vec{Z: -env.Gravity},
		Magnetometer: r3.Vec{X: 30.0, Z: 45.0},
		Temperature:  env.Temperature,
		Quaternion:   quat.Number{Real: 1},
		Pressure:     env.SeaLevelPressure,
		Latitude:     env.LaunchLat,
		Longitude:    env.LaunchLon,
	}
}

func uniform(v float64) r3.Vec {
	return r3.Vec{X: v, Y: v, Z: v}
}

// Update advances the sensor channels to the given kinematic state.
func (s *SensorState) Update(k KinematicState, env Environment, dt float64) {
	t := k.Time

	// Orientation drifts identically on all three axes
	s.Orientation = r3.Add(s.Orientation, uniform(0.05*math.Sin(0.5*t)))
	s.OrientationQ = r3.Add(s.OrientationQ, uniform(0.05*math.Cos(0.5*t)))

	// Accelerometers read specific force: zero in free fall
	s.Accel = r3.Vec{Z: k.Acceleration + env.Gravity}
	s.Gyro = r3.Vec{
		X: 0.01 * math.Sin(0.2*t),
		Y: 0.01 * math.Cos(0.3*t),
		Z: 0.01 * math.Sin(0.1*t),
	}
	s.Gravity = r3.Vec{Z: -env.Gravity}
	s.Magnetometer = r3.Vec{
		X: 30.0 + 0.1*math.Sin(0.1*t),
		Z: 45.0 + 0.1*math.Cos(0.1*t),
	}
	s.Temperature += env.TemperatureRate * dt

	// The real part is never perturbed
	s.Quaternion = quat.Add(s.Quaternion, quat.Number{
		Imag: 0.001 * math.Sin(0.2*t),
		Jmag: 0.001 * math.Cos(0.2*t),
		Kmag: 0.001 * math.Sin(0.2*t),
	})

	s.Pressure = env.Pressure(k.Position)
	s.Latitude += 0.00001 * k.Velocity * dt
	s.GPSVelocity = r3.Vec{X: k.Velocity}
}

package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"aerosentinel/pkg/model"
)

// FormatTimestamp renders simulation time as "SS:MMM". Both fields are
// truncated, not rounded. Seconds are never wrapped at 60 and grow past two
// digits on long runs.
func FormatTimestamp(t float64) string {
	seconds := int(t)
	millis := int((t - float64(seconds)) * 1000)
	return fmt.Sprintf("%02d:%03d", seconds, millis)
}

func round2(v float64) float64 {
	return scalar.RoundEven(v, 2)
}

func roundVec(v r3.Vec) model.Vector3 {
	return model.Vector3{round2(v.X), round2(v.Y), round2(v.Z)}
}

func roundQuat(q quat.Number) model.Quaternion {
	return model.Quaternion{
		W: scalar.RoundEven(q.Real, 4),
		X: scalar.RoundEven(q.Imag, 4),
		Y: scalar.RoundEven(q.Jmag, 4),
		Z: scalar.RoundEven(q.Kmag, 4),
	}
}

// BuildRecord assembles the wire record for one step. Both IMUs and both
// barometers report the same simulated channels.
func BuildRecord(k KinematicState, s *SensorState, events model.Events) model.TelemetryRecord {
	imu := model.IMUData{
		Orientation:  roundVec(s.Orientation),
		OrientationQ: roundVec(s.OrientationQ),
		Acceleration: roundVec(s.Accel),
		Gyroscope:    roundVec(s.Gyro),
		Gravity:      roundVec(s.Gravity),
		Magnetometer: roundVec(s.Magnetometer),
		Temperature:  round2(s.Temperature),
		Quaternion:   roundQuat(s.Quaternion),
	}
	baro := model.BaroData{
		Pressure:    int64(math.RoundToEven(s.Pressure)),
		Temperature: round2(s.Temperature),
		Altitude:    round2(k.Position),
	}

	return model.TelemetryRecord{
		Timestamp:  FormatTimestamp(k.Time),
		BNO055:     imu,
		BNO086:     imu,
		MS5607:     baro,
		MPL3115A2S: baro,
		ADXL375:    model.HighGData{Acceleration: roundVec(s.Accel)},
		GPS: model.GPSData{
			Latitude:  scalar.RoundEven(s.Latitude, 6),
			Longitude: s.Longitude,
			Altitude:  round2(k.Position),
			Velocity:  roundVec(s.GPSVelocity),
		},
		Events: events,
	}
}

// Package model holds the flight log document and the types shared by the
// generator, exporters and archive.
package model

// FlightCard is the static header of a flight log.
type FlightCard struct {
	RocketName     string `json:"rocket_name" yaml:"rocket_name"`
	MotorUsed      string `json:"motor_used" yaml:"motor_used"`
	Flyer          string `json:"flyer" yaml:"flyer"`
	FlightDate     string `json:"flight_date" yaml:"flight_date"` // YYYY-MM-DD
	Location       string `json:"location" yaml:"location"`
	FlightComputer string `json:"flight_computer" yaml:"flight_computer"`
}

// FlightLog is the root document written to disk.
type FlightLog struct {
	FlightCard FlightCard        `json:"flight_card"`
	Telemetry  []TelemetryRecord `json:"telemetry"`
}

// TelemetryRecord is one time step of simulated sensor output.
// Records are never mutated once appended to a FlightLog.
type TelemetryRecord struct {
	Timestamp  string    `json:"timestamp"` // SS:MMM since launch
	BNO055     IMUData   `json:"bno055_data"`
	BNO086     IMUData   `json:"bno086_data"`
	MS5607     BaroData  `json:"ms5607_data"`
	MPL3115A2S BaroData  `json:"mpl3115a2s_data"`
	ADXL375    HighGData `json:"adxl375_data"`
	GPS        GPSData   `json:"gps_data"`
	Events     Events    `json:"events"`
}

// Vector3 is an [x, y, z] triple as it appears on the wire.
type Vector3 [3]float64

// Quaternion is an orientation quaternion as it appears on the wire.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IMUData is the payload of a 9-DOF orientation sensor.
type IMUData struct {
	Orientation  Vector3    `json:"orientation"`
	OrientationQ Vector3    `json:"orientation_q"`
	Acceleration Vector3    `json:"acceleration"` // m/s^2
	Gyroscope    Vector3    `json:"gyroscope"`    // rad/s
	Gravity      Vector3    `json:"gravity"`      // m/s^2
	Magnetometer Vector3    `json:"magnetometer"` // uT
	Temperature  float64    `json:"temperature"`  // Celsius
	Quaternion   Quaternion `json:"quaternion"`
}

// BaroData is the payload of a barometric altimeter.
type BaroData struct {
	Pressure    int64   `json:"pressure"` // Pa
	Temperature float64 `json:"temperature"`
	Altitude    float64 `json:"altitude"` // m
}

// HighGData is the payload of the high-g accelerometer.
type HighGData struct {
	Acceleration Vector3 `json:"acceleration"`
}

// GPSData is the payload of the GPS receiver.
type GPSData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Velocity  Vector3 `json:"velocity"`
}

// Events is the per-step flag set. Pulse flags (takeoff_detection, apogee,
// parachute_ejection, recovery) are true on exactly one record each.
type Events struct {
	TakeoffDetection  bool `json:"takeoff_detection"`
	Ascent            bool `json:"ascent"`
	Coasting          bool `json:"coasting"`
	Apogee            bool `json:"apogee"`
	ParachuteEjection bool `json:"parachute_ejection"`
	Descent           bool `json:"descent"`
	Recovery          bool `json:"recovery"`
}

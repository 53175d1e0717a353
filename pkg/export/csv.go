package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"aerosentinel/pkg/model"
)

// CSVHeader is the column layout of the flat telemetry export.
var CSVHeader = []string{
	"timestamp",
	"altitude", "pressure", "temperature",
	"accel_x", "accel_y", "accel_z",
	"gyro_x", "gyro_y", "gyro_z",
	"mag_x", "mag_y", "mag_z",
	"quat_w", "quat_x", "quat_y", "quat_z",
	"latitude", "longitude", "gps_velocity",
	"takeoff_detection", "ascent", "coasting", "apogee",
	"parachute_ejection", "descent", "recovery",
}

// CSVWriter is a buffered writer for flattened telemetry records.
// Write errors are buffered by encoding/csv and surface on Close.
type CSVWriter struct {
	file *os.File
	buf  *bufio.Writer
	csv  *csv.Writer
	rows uint64
}

// NewCSVWriter creates the file and writes the header row.
func NewCSVWriter(path string, bufSizeBytes int) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("csv mkdir %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv create %s: %w", path, err)
	}

	if bufSizeBytes <= 0 {
		bufSizeBytes = 256 * 1024
	}
	bw := bufio.NewWriterSize(f, bufSizeBytes)
	cw := csv.NewWriter(bw)

	if err := cw.Write(CSVHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("csv write header: %w", err)
	}

	return &CSVWriter{file: f, buf: bw, csv: cw}, nil
}

// WriteRecord appends one telemetry record as a CSV row.
func (w *CSVWriter) WriteRecord(r *model.TelemetryRecord) {
	imu := r.BNO055
	ev := r.Events
	_ = w.csv.Write([]string{
		r.Timestamp,
		ftoa(r.MS5607.Altitude, 2), strconv.FormatInt(r.MS5607.Pressure, 10), ftoa(r.MS5607.Temperature, 2),
		ftoa(imu.Acceleration[0], 2), ftoa(imu.Acceleration[1], 2), ftoa(imu.Acceleration[2], 2),
		ftoa(imu.Gyroscope[0], 2), ftoa(imu.Gyroscope[1], 2), ftoa(imu.Gyroscope[2], 2),
		ftoa(imu.Magnetometer[0], 2), ftoa(imu.Magnetometer[1], 2), ftoa(imu.Magnetometer[2], 2),
		ftoa(imu.Quaternion.W, 4), ftoa(imu.Quaternion.X, 4), ftoa(imu.Quaternion.Y, 4), ftoa(imu.Quaternion.Z, 4),
		ftoa(r.GPS.Latitude, 6), ftoa(r.GPS.Longitude, 6), ftoa(r.GPS.Velocity[0], 2),
		btoa(ev.TakeoffDetection), btoa(ev.Ascent), btoa(ev.Coasting), btoa(ev.Apogee),
		btoa(ev.ParachuteEjection), btoa(ev.Descent), btoa(ev.Recovery),
	})
	w.rows++
}

// Rows returns the number of data rows written (excludes header).
func (w *CSVWriter) Rows() uint64 {
	return w.rows
}

// Close flushes remaining data and closes the file.
func (w *CSVWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("csv write: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("csv flush: %w", err)
	}
	return w.file.Close()
}

// WriteCSV writes every record of the log to path and returns the number
// of data rows.
func WriteCSV(path string, flightLog *model.FlightLog) (uint64, error) {
	w, err := NewCSVWriter(path, 0)
	if err != nil {
		return 0, err
	}
	for i := range flightLog.Telemetry {
		w.WriteRecord(&flightLog.Telemetry[i])
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return w.Rows(), nil
}

func ftoa(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func btoa(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

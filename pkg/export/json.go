// Package export writes generated flight logs to disk.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"aerosentinel/pkg/model"
)

// WriteFlightLog writes the log as UTF-8 JSON with 2-space indentation.
// The log is encoded in memory first and replaces path through a rename, so
// an encoding or write failure leaves any previous file untouched.
func WriteFlightLog(path string, flightLog *model.FlightLog) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(flightLog); err != nil {
		return fmt.Errorf("failed to encode flight log: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create flight log: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := buf.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write flight log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close flight log: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set flight log mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace flight log: %w", err)
	}
	return nil
}

// ReadFlightLog parses a flight log written by WriteFlightLog.
func ReadFlightLog(path string) (*model.FlightLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flight log: %w", err)
	}
	var flightLog model.FlightLog
	if err := json.Unmarshal(data, &flightLog); err != nil {
		return nil, fmt.Errorf("failed to parse flight log: %w", err)
	}
	return &flightLog, nil
}

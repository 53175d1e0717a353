package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aerosentinel/pkg/db"
	"aerosentinel/pkg/export"
	"aerosentinel/pkg/store"
)

func writeTestConfig(t *testing.T, dir string, archive bool) string {
	t.Helper()
	archiveEnabled := "false"
	if archive {
		archiveEnabled = "true"
	}
	cfg := `
output:
    path: "` + filepath.Join(dir, "out", "flight.ast") + `"
    csv_path: "` + filepath.Join(dir, "out", "flight.csv") + `"
    track_path: "` + filepath.Join(dir, "out", "flight.geojson") + `"
log:
    server:
        path: "` + filepath.Join(dir, "logs", "generator.log") + `"
        level: "debug"
    events:
        path: "` + filepath.Join(dir, "logs", "events.log") + `"
        level: "info"
archive:
    enabled: ` + archiveEnabled + `
    path: "` + filepath.Join(dir, "data", "flights.db") + `"
    h3_resolution: 9
metrics:
    path: "` + filepath.Join(dir, "metrics", "aerosentinel.prom") + `"
`
	path := filepath.Join(dir, "aerosentinel.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, true)

	if err := run(context.Background(), cfgPath, ""); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	flightLog, err := export.ReadFlightLog(filepath.Join(dir, "out", "flight.ast"))
	if err != nil {
		t.Fatalf("flight log not readable: %v", err)
	}
	if len(flightLog.Telemetry) != 1200 {
		t.Errorf("got %d records, want 1200", len(flightLog.Telemetry))
	}

	for _, name := range []string{"out/flight.csv", "out/flight.geojson", "metrics/aerosentinel.prom", "logs/events.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	events, err := os.ReadFile(filepath.Join(dir, "logs", "events.log"))
	if err != nil {
		t.Fatalf("event log: %v", err)
	}
	if !strings.Contains(string(events), "Apogee detected") {
		t.Errorf("event log missing apogee entry:\n%s", events)
	}

	d, err := db.Init(filepath.Join(dir, "data", "flights.db"))
	if err != nil {
		t.Fatalf("archive not readable: %v", err)
	}
	defer d.Close()
	flights, err := store.NewSQLiteStore(d).ListFlights(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListFlights() failed: %v", err)
	}
	if len(flights) != 1 {
		t.Fatalf("archived %d flights, want 1", len(flights))
	}
	if flights[0].LaunchCell == "" || len(flights[0].Events) != 4 {
		t.Errorf("unexpected archived flight: %+v", flights[0])
	}
}

func TestRun_OutputOverride(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, false)
	override := filepath.Join(dir, "override.ast")

	if err := run(context.Background(), cfgPath, override); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if _, err := os.Stat(override); err != nil {
		t.Errorf("override output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "flight.ast")); !os.IsNotExist(err) {
		t.Errorf("configured output should not be written, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "flights.db")); !os.IsNotExist(err) {
		t.Errorf("archive disabled but database created, stat err = %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := run(ctx, cfgPath, ""); err == nil {
		t.Fatal("run() should fail on a cancelled context")
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "flight.ast")); !os.IsNotExist(err) {
		t.Errorf("no output expected after cancellation, stat err = %v", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, true)

	if err := run(context.Background(), cfgPath, ""); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	var out bytes.Buffer
	if err := list(context.Background(), &out, cfgPath, 5); err != nil {
		t.Fatalf("list() failed: %v", err)
	}
	if !strings.Contains(out.String(), "AeroSentinel X1") || strings.Count(out.String(), "\n") != 1 {
		t.Errorf("unexpected listing:\n%s", out.String())
	}
}

func TestList_DotEnvArchive(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, false)
	envDB := filepath.Join(dir, "env", "flights.db")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("AEROSENTINEL_ARCHIVE_PATH="+envDB+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Restored to unset after the test; godotenv only fills unset variables
	t.Setenv("AEROSENTINEL_ARCHIVE_PATH", "")
	os.Unsetenv("AEROSENTINEL_ARCHIVE_PATH")
	t.Chdir(dir)

	if err := run(context.Background(), cfgPath, ""); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	var out bytes.Buffer
	if err := list(context.Background(), &out, cfgPath, 5); err != nil {
		t.Fatalf("list() failed: %v", err)
	}
	if strings.Contains(out.String(), "No archived flights") {
		t.Errorf("list() read a different archive than run() wrote:\n%s", out.String())
	}
	if _, err := os.Stat(envDB); err != nil {
		t.Errorf("archive from .env missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "flights.db")); !os.IsNotExist(err) {
		t.Errorf("configured archive should not be used, stat err = %v", err)
	}
}

func TestList_ArchiveDisabled(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, false)
	t.Setenv("AEROSENTINEL_ARCHIVE_PATH", "")

	err := list(context.Background(), io.Discard, cfgPath, 5)
	if !errors.Is(err, errArchiveDisabled) {
		t.Errorf("list() error = %v, want errArchiveDisabled", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "flights.db")); !os.IsNotExist(err) {
		t.Errorf("disabled archive was created, stat err = %v", err)
	}
}

func TestShow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, true)

	if err := run(context.Background(), cfgPath, ""); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	restored := filepath.Join(dir, "restored", "flight.ast")
	var out bytes.Buffer
	if err := show(context.Background(), &out, cfgPath, "last", restored); err != nil {
		t.Fatalf("show() failed: %v", err)
	}
	for _, want := range []string{"AeroSentinel X1", "Ascent@0.20s", "Descent@18.25s", "Apogee detected"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("show output missing %q:\n%s", want, out.String())
		}
	}

	original, err := os.ReadFile(filepath.Join(dir, "out", "flight.ast"))
	if err != nil {
		t.Fatal(err)
	}
	back, err := os.ReadFile(restored)
	if err != nil {
		t.Fatalf("restored log missing: %v", err)
	}
	if !bytes.Equal(original, back) {
		t.Error("restored log differs from the generated one")
	}

	err = show(context.Background(), io.Discard, cfgPath, "no-such-id", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("show(unknown) error = %v, want ErrNotFound", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"aerosentinel/pkg/config"
	"aerosentinel/pkg/db"
	"aerosentinel/pkg/export"
	"aerosentinel/pkg/model"
	"aerosentinel/pkg/store"
)

var errArchiveDisabled = errors.New("flight archive is disabled (set archive.enabled or AEROSENTINEL_ARCHIVE_PATH)")

func archive(ctx context.Context, appCfg *config.Config, sum *model.FlightSummary, flightLog *model.FlightLog) error {
	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := st.SaveFlight(ctx, sum, flightLog); err != nil {
		return fmt.Errorf("failed to archive flight: %w", err)
	}

	args := []any{"id", sum.ID, "path", appCfg.Archive.Path}
	if sum.LaunchCell != "" {
		siblings, err := st.FlightsByCell(ctx, sum.LaunchCell)
		if err != nil {
			slog.Warn("Launch site lookup failed", "error", err)
		} else {
			args = append(args, "flights_from_site", len(siblings))
		}
	}
	slog.Info("Flight archived", args...)
	return nil
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.Archive.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if retention := time.Duration(appCfg.Archive.Retention); retention > 0 {
		n, err := dbConn.PruneFlights(retention)
		if err != nil {
			slog.Error("Archive pruning failed", "error", err)
		} else if n > 0 {
			slog.Info("Archive pruned", "flights", n, "older_than", retention)
		}
	}

	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// openArchive loads the config the same way run does and opens the
// archive it points at.
func openArchive(configPath string) (*db.DB, store.Store, error) {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if !appCfg.Archive.Enabled || appCfg.Archive.Path == "" {
		return nil, nil, errArchiveDisabled
	}
	return initDB(appCfg)
}

func list(ctx context.Context, w io.Writer, configPath string, limit int) error {
	dbConn, st, err := openArchive(configPath)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	flights, err := st.ListFlights(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list flights: %w", err)
	}
	if len(flights) == 0 {
		fmt.Fprintln(w, "No archived flights.")
		return nil
	}
	for _, f := range flights {
		fmt.Fprintf(w, "%s  %s  %-20s apogee %8.2fm at %6.2fs  %d records  %s\n",
			f.ID, f.CreatedAt.Local().Format("2006-01-02 15:04:05"), f.Card.RocketName,
			f.ApogeeAltitude, f.ApogeeTime, f.RecordCount, f.OutputPath)
	}
	return nil
}

// show prints one archived flight. id "last" resolves to the most recently
// archived run. A non-empty restore path receives the archived flight log.
func show(ctx context.Context, w io.Writer, configPath, id, restore string) error {
	dbConn, st, err := openArchive(configPath)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if id == "last" {
		last, ok := st.GetState(ctx, store.LastFlightKey)
		if !ok {
			return fmt.Errorf("%w: archive is empty", store.ErrNotFound)
		}
		id = last
	}

	f, err := st.GetFlight(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Flight %s (%s, %s)\n", f.ID, f.Card.RocketName, f.Card.FlightDate)
	fmt.Fprintf(w, "  records   %d over %.2fs\n", f.RecordCount, f.Duration)
	fmt.Fprintf(w, "  apogee    %.2fm at %.2fs\n", f.ApogeeAltitude, f.ApogeeTime)
	fmt.Fprintf(w, "  max vel   %.2fm/s\n", f.MaxVelocity)
	if f.LaunchCell != "" {
		fmt.Fprintf(w, "  site      %s\n", f.LaunchCell)
	}
	if len(f.Phases) > 0 {
		fmt.Fprintf(w, "  phases    %s\n", formatPhases(f.Phases))
	}
	for _, e := range f.Events {
		fmt.Fprintf(w, "  [T+%07.3fs] %s\n", e.Time, e.Title)
	}

	if restore == "" {
		return nil
	}
	flightLog, err := st.GetTelemetry(ctx, id)
	if err != nil {
		return err
	}
	if err := export.WriteFlightLog(restore, flightLog); err != nil {
		return err
	}
	fmt.Fprintf(w, "Flight log restored to %s\n", restore)
	return nil
}

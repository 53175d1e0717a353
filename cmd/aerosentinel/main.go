package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"aerosentinel/pkg/config"
	"aerosentinel/pkg/export"
	"aerosentinel/pkg/geo"
	"aerosentinel/pkg/logging"
	"aerosentinel/pkg/metrics"
	"aerosentinel/pkg/model"
	"aerosentinel/pkg/probe"
	"aerosentinel/pkg/sim"
	"aerosentinel/pkg/version"
)

const defaultConfigPath = "configs/aerosentinel.yaml"

var (
	configPath  = flag.String("config", defaultConfigPath, "Path to the config file")
	initConfig  = flag.Bool("init-config", false, "Generate default config file and exit")
	outputPath  = flag.String("output", "", "Override the flight log output path")
	listFlights = flag.Int("list", 0, "List the N most recent archived flights and exit")
	showFlight  = flag.String("show", "", "Print an archived flight (id or \"last\") and exit; with -output, restore its log")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case *listFlights > 0:
		err = list(ctx, os.Stdout, *configPath, *listFlights)
	case *showFlight != "":
		err = show(ctx, os.Stdout, *configPath, *showFlight, *outputPath)
	default:
		err = run(ctx, *configPath, *outputPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Generator failed: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads .env from the working directory, then the config file
// with its environment overrides.
func loadConfig(configPath string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	appCfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return appCfg, nil
}

func run(ctx context.Context, configPath, output string) error {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if output != "" {
		appCfg.Output.Path = output
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("AeroSentinel generator started", "version", version.Version, "config", configPath)

	if err := probe.AnalyzeResults(probe.Run(ctx, preflightProbes(appCfg))); err != nil {
		return fmt.Errorf("pre-flight checks failed: %w", err)
	}

	gen := sim.NewGenerator(sim.ParamsFromConfig(appCfg))

	var collector *metrics.Collector
	if appCfg.Metrics.Path != "" {
		collector = metrics.NewCollector()
		gen.SetEventRecorder(collector)
	}

	start := time.Now()
	flightLog, err := gen.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := export.WriteFlightLog(appCfg.Output.Path, flightLog); err != nil {
		return err
	}
	slog.Info("Flight log written", "path", appCfg.Output.Path, "records", len(flightLog.Telemetry), "elapsed", elapsed)

	if err := writeExtras(appCfg, flightLog); err != nil {
		return err
	}

	sum := gen.Summary()
	sum.ID = uuid.NewString()
	sum.OutputPath = appCfg.Output.Path
	sum.CreatedAt = time.Now()
	cell, err := geo.LaunchCell(appCfg.Environment.LaunchLat, appCfg.Environment.LaunchLon, appCfg.Archive.H3Resolution)
	if err != nil {
		slog.Warn("Launch site not indexed", "error", err)
	} else {
		sum.LaunchCell = cell
	}
	logSummary(&sum)

	if appCfg.Archive.Enabled {
		if err := archive(ctx, appCfg, &sum, flightLog); err != nil {
			return err
		}
	}

	if collector != nil {
		collector.ObserveRun(&sum, elapsed)
		if err := collector.WriteTextfile(appCfg.Metrics.Path); err != nil {
			return err
		}
		slog.Debug("Metrics written", "path", appCfg.Metrics.Path)
	}

	return nil
}

func preflightProbes(appCfg *config.Config) []probe.Probe {
	probes := []probe.Probe{
		{Name: "output path", Check: probe.NotDirectory(appCfg.Output.Path), Critical: true},
		{Name: "output directory", Check: probe.WritableDir(appCfg.Output.Path), Critical: true},
	}
	extras := []struct{ name, path string }{
		{"csv directory", appCfg.Output.CSVPath},
		{"track directory", appCfg.Output.TrackPath},
		{"metrics directory", appCfg.Metrics.Path},
	}
	for _, e := range extras {
		if e.path != "" {
			probes = append(probes, probe.Probe{Name: e.name, Check: probe.WritableDir(e.path), Critical: true})
		}
	}
	if appCfg.Archive.Enabled {
		probes = append(probes, probe.Probe{Name: "archive directory", Check: probe.WritableDir(appCfg.Archive.Path), Critical: true})
	}
	probes = append(probes, probe.Probe{
		Name: "launch site",
		Check: func(ctx context.Context) error {
			_, err := geo.LaunchCell(appCfg.Environment.LaunchLat, appCfg.Environment.LaunchLon, appCfg.Archive.H3Resolution)
			return err
		},
	})
	return probes
}

func writeExtras(appCfg *config.Config, flightLog *model.FlightLog) error {
	if appCfg.Output.CSVPath != "" {
		rows, err := export.WriteCSV(appCfg.Output.CSVPath, flightLog)
		if err != nil {
			return err
		}
		slog.Info("CSV export written", "path", appCfg.Output.CSVPath, "rows", rows)
	}

	if appCfg.Output.TrackPath != "" {
		track := geo.NewGroundTrack(flightLog)
		if err := track.WriteGeoJSON(appCfg.Output.TrackPath, flightLog.FlightCard); err != nil {
			return err
		}
		drift, bearing := track.Drift()
		slog.Info("Ground track written",
			"path", appCfg.Output.TrackPath,
			"points", track.Len(),
			"length_m", fmt.Sprintf("%.1f", track.Length()),
			"drift_m", fmt.Sprintf("%.1f", drift),
			"drift_bearing", fmt.Sprintf("%.0f", bearing),
		)
	}
	return nil
}

func logSummary(sum *model.FlightSummary) {
	args := []any{
		"id", sum.ID,
		"records", sum.RecordCount,
		"apogee_m", fmt.Sprintf("%.2f", sum.ApogeeAltitude),
		"apogee_t", fmt.Sprintf("%.2f", sum.ApogeeTime),
		"max_velocity", fmt.Sprintf("%.2f", sum.MaxVelocity),
	}
	if e, ok := sum.Event(model.EventParachuteEjection); ok {
		args = append(args, "ejection_t", fmt.Sprintf("%.2f", e.Time))
	}
	if sum.LandingTime > 0 {
		args = append(args, "landing_t", fmt.Sprintf("%.2f", sum.LandingTime))
	}
	if sum.LaunchCell != "" {
		args = append(args, "launch_cell", sum.LaunchCell)
	}
	if len(sum.Phases) > 0 {
		args = append(args, "phases", formatPhases(sum.Phases))
	}
	slog.Info("Flight summary", args...)
}

// formatPhases renders phase entries as "Ascent@0.20s Coasting@3.00s ...".
func formatPhases(phases []model.PhaseEntry) string {
	parts := make([]string, len(phases))
	for i, p := range phases {
		parts[i] = fmt.Sprintf("%s@%.2fs", p.Label, p.Time)
	}
	return strings.Join(parts, " ")
}

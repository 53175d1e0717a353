package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"aerosentinel/pkg/model"
)

var (
	// ErrInvalidTimeStep is returned when the integration step is not usable.
	ErrInvalidTimeStep = errors.New("invalid time step")
	// ErrInvalidVehicle is returned for non-physical vehicle parameters.
	ErrInvalidVehicle = errors.New("invalid vehicle parameters")
	// ErrInvalidEnvironment is returned for non-physical environment parameters.
	ErrInvalidEnvironment = errors.New("invalid environment parameters")
)

// Config holds the generator configuration.
type Config struct {
	Flight      model.FlightCard  `yaml:"flight"`
	Vehicle     VehicleConfig     `yaml:"vehicle"`
	Environment EnvironmentConfig `yaml:"environment"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Detection   DetectionConfig   `yaml:"detection"`
	Output      OutputConfig      `yaml:"output"`
	Log         LogConfig         `yaml:"log"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// VehicleConfig describes the single-stage rocket.
type VehicleConfig struct {
	Thrust         float64  `yaml:"thrust"`          // N, constant during burn
	MassInitial    float64  `yaml:"mass_initial"`    // kg, wet mass at ignition
	MassPropellant float64  `yaml:"mass_propellant"` // kg
	BurnTime       Duration `yaml:"burn_time"`
}

// EnvironmentConfig describes the launch site and atmosphere.
type EnvironmentConfig struct {
	Gravity          float64 `yaml:"gravity"`            // m/s^2
	SeaLevelPressure float64 `yaml:"sea_level_pressure"` // Pa
	ScaleHeight      float64 `yaml:"scale_height"`       // m, barometric formula
	Temperature      float64 `yaml:"temperature"`        // Celsius at ignition
	TemperatureRate  float64 `yaml:"temperature_rate"`   // Celsius per second
	LaunchLat        float64 `yaml:"launch_lat"`
	LaunchLon        float64 `yaml:"launch_lon"`
}

// SimulationConfig holds the integration window.
type SimulationConfig struct {
	TotalTime Duration `yaml:"total_time"`
	TimeStep  Duration `yaml:"time_step"`
}

// DetectionConfig holds flight event thresholds.
type DetectionConfig struct {
	TakeoffAltitude Distance `yaml:"takeoff_altitude"`
	ParachuteDelay  Duration `yaml:"parachute_delay"` // after apogee
}

// OutputConfig holds output file locations. Empty paths disable that output.
type OutputConfig struct {
	Path      string `yaml:"path"`       // JSON flight log (.ast)
	CSVPath   string `yaml:"csv_path"`   // flat per-record CSV
	TrackPath string `yaml:"track_path"` // GeoJSON ground track
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	Events LogSettings `yaml:"events"`
	Trace  bool        `yaml:"trace"` // one DEBUG line per step, needs server level DEBUG
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// ArchiveConfig holds settings for the sqlite flight archive.
type ArchiveConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Path         string   `yaml:"path"`
	H3Resolution int      `yaml:"h3_resolution"` // launch site cell resolution (0-15)
	Retention    Duration `yaml:"retention"`     // prune older flights on open, 0 keeps all
}

// MetricsConfig holds settings for the Prometheus text-format metrics dump.
type MetricsConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Flight: model.FlightCard{
			RocketName:     "AeroSentinel X1",
			MotorUsed:      "Cesaroni 06000",
			Flyer:          "Yassine Dehhani",
			FlightDate:     "2023-10-01",
			Location:       "Desert Launch Site",
			FlightComputer: "FC-1000",
		},
		Vehicle: VehicleConfig{
			Thrust:         5000.0,
			MassInitial:    100.0,
			MassPropellant: 30.0,
			BurnTime:       Duration(3 * time.Second),
		},
		Environment: EnvironmentConfig{
			Gravity:          9.81,
			SeaLevelPressure: 101325,
			ScaleHeight:      8434.5,
			Temperature:      20.0,
			TemperatureRate:  0.005,
			LaunchLat:        35.0,
			LaunchLon:        -115.0,
		},
		Simulation: SimulationConfig{
			TotalTime: Duration(60 * time.Second),
			TimeStep:  Duration(50 * time.Millisecond),
		},
		Detection: DetectionConfig{
			TakeoffAltitude: Distance(1.0),
			ParachuteDelay:  Duration(1 * time.Second),
		},
		Output: OutputConfig{
			Path: "example.ast",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/generator.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "./logs/events.log",
				Level: "INFO",
			},
		},
		Archive: ArchiveConfig{
			Enabled:      false,
			Path:         "./data/flights.db",
			H3Resolution: 9,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// Environment overrides are applied after reading and are never written back.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv reads KEY=VALUE pairs from the given files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AEROSENTINEL_OUTPUT"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("AEROSENTINEL_ARCHIVE_PATH"); v != "" {
		cfg.Archive.Path = v
		cfg.Archive.Enabled = true
	}
	if v := os.Getenv("AEROSENTINEL_LOG_LEVEL"); v != "" {
		cfg.Log.Server.Level = v
	}
}

// Validate rejects parameter sets the generator cannot integrate.
func (c *Config) Validate() error {
	step := time.Duration(c.Simulation.TimeStep)
	total := time.Duration(c.Simulation.TotalTime)
	if step <= 0 {
		return fmt.Errorf("%w: time_step must be positive, got %s", ErrInvalidTimeStep, step)
	}
	if step > total {
		return fmt.Errorf("%w: time_step %s exceeds total_time %s", ErrInvalidTimeStep, step, total)
	}
	if c.Vehicle.MassInitial <= 0 {
		return fmt.Errorf("%w: mass_initial must be positive", ErrInvalidVehicle)
	}
	if c.Vehicle.MassPropellant < 0 || c.Vehicle.Thrust < 0 {
		return fmt.Errorf("%w: thrust and mass_propellant must not be negative", ErrInvalidVehicle)
	}
	if c.Vehicle.MassPropellant >= c.Vehicle.MassInitial {
		return fmt.Errorf("%w: mass_propellant %.2f must be below mass_initial %.2f", ErrInvalidVehicle,
			c.Vehicle.MassPropellant, c.Vehicle.MassInitial)
	}
	if c.Vehicle.BurnTime <= 0 {
		return fmt.Errorf("%w: burn_time must be positive", ErrInvalidVehicle)
	}
	if c.Environment.ScaleHeight <= 0 {
		return fmt.Errorf("%w: scale_height must be positive", ErrInvalidEnvironment)
	}
	if c.Archive.H3Resolution < 0 || c.Archive.H3Resolution > 15 {
		return fmt.Errorf("%w: h3_resolution must be within 0-15", ErrInvalidEnvironment)
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if !isValidDate(c.Flight.FlightDate) {
		return fmt.Errorf("invalid flight_date format '%s': must be 'YYYY-MM-DD'", c.Flight.FlightDate)
	}
	return nil
}

func isValidDate(s string) bool {
	matched, _ := regexp.MatchString(`^\d{4}-\d{2}-\d{2}$`, s)
	return matched
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# AeroSentinel Flight Log Generator
# ----------------------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles), ft (feet)

`)
	data = append(header, data...)

	reLevel := regexp.MustCompile(`(?m)^(\s+)level:`)
	data = reLevel.ReplaceAll(data, []byte("${1}# Options: DEBUG, INFO, WARN, ERROR\n${1}level:"))

	reRes := regexp.MustCompile(`(?m)^(\s+)h3_resolution:`)
	data = reRes.ReplaceAll(data, []byte("${1}# Launch site cell size, 0 (coarsest) to 15 (finest)\n${1}h3_resolution:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}

// Steps returns the number of fixed steps that fit in the simulation window.
func (s SimulationConfig) Steps() int {
	step := time.Duration(s.TimeStep)
	if step <= 0 {
		return 0
	}
	return int(time.Duration(s.TotalTime) / step)
}

// Seconds returns the duration as floating point seconds.
func (d Duration) Seconds() float64 {
	return time.Duration(d).Seconds()
}

// Meters returns the distance as floating point meters.
func (d Distance) Meters() float64 {
	return float64(d)
}

// LevelName normalizes a configured level string.
func (s LogSettings) LevelName() string {
	return strings.ToUpper(strings.TrimSpace(s.Level))
}

package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"aerosentinel/pkg/config"
	"aerosentinel/pkg/logging"
	"aerosentinel/pkg/model"
)

// Params is the full, fixed parameter set of one generator run.
type Params struct {
	Card      model.FlightCard
	Vehicle   Vehicle
	Env       Environment
	Detection DetectionParams
	TimeStep  float64 // s
	Steps     int
}

// ParamsFromConfig converts the YAML configuration into generator parameters.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Card: cfg.Flight,
		Vehicle: Vehicle{
			Thrust:         cfg.Vehicle.Thrust,
			MassInitial:    cfg.Vehicle.MassInitial,
			MassPropellant: cfg.Vehicle.MassPropellant,
			BurnTime:       cfg.Vehicle.BurnTime.Seconds(),
		},
		Env: Environment{
			Gravity:          cfg.Environment.Gravity,
			SeaLevelPressure: cfg.Environment.SeaLevelPressure,
			ScaleHeight:      cfg.Environment.ScaleHeight,
			Temperature:      cfg.Environment.Temperature,
			TemperatureRate:  cfg.Environment.TemperatureRate,
			LaunchLat:        cfg.Environment.LaunchLat,
			LaunchLon:        cfg.Environment.LaunchLon,
		},
		Detection: DetectionParams{
			TakeoffAltitude: cfg.Detection.TakeoffAltitude.Meters(),
			BurnTime:        cfg.Vehicle.BurnTime.Seconds(),
			ParachuteDelay:  cfg.Detection.ParachuteDelay.Seconds(),
		},
		TimeStep: cfg.Simulation.TimeStep.Seconds(),
		Steps:    cfg.Simulation.Steps(),
	}
}

// EventRecorder receives flight events as they are detected.
type EventRecorder interface {
	RecordEvent(event *model.FlightEvent)
}

// Sample is the unrounded state after a step.
type Sample struct {
	Step      int
	State     KinematicState
	Sensors   SensorState
	Phase     Phase
	Pulses    Pulses
	Timestamp string
}

// Generator owns all simulation state of one run. It is not safe for
// concurrent use.
type Generator struct {
	params    Params
	kin       KinematicState
	sensors   SensorState
	phases    *PhaseMachine
	step      int
	last      Sample
	events    []model.FlightEvent
	recorders []EventRecorder
	logger    *slog.Logger

	maxAltitude float64
	maxVelocity float64
}

// NewGenerator creates a generator at ignition.
func NewGenerator(p Params) *Generator {
	return &Generator{
		params:  p,
		kin:     NewKinematicState(p.Vehicle),
		sensors: NewSensorState(p.Env),
		phases:  NewPhaseMachine(p.Detection),
		logger:  slog.Default().With("component", "generator"),
	}
}

// SetEventRecorder adds a recipient for flight events.
func (g *Generator) SetEventRecorder(r EventRecorder) {
	g.recorders = append(g.recorders, r)
}

// Done reports whether all steps have been generated.
func (g *Generator) Done() bool {
	return g.step >= g.params.Steps
}

// Last returns the unrounded state after the most recent step.
func (g *Generator) Last() Sample {
	return g.last
}

// Phase returns the current flight phase.
func (g *Generator) Phase() Phase {
	return g.phases.Current()
}

// Step advances the simulation by one time step and returns its record.
func (g *Generator) Step() model.TelemetryRecord {
	g.step++
	g.kin.Advance(g.params.Vehicle, g.params.Env.Gravity, g.params.TimeStep)

	pulses := g.phases.Update(g.kin.Time, g.kin.Position)
	g.sensors.Update(g.kin, g.params.Env, g.params.TimeStep)

	if g.phases.Current() != PhaseRecovered {
		g.maxAltitude = math.Max(g.maxAltitude, g.kin.Position)
		g.maxVelocity = math.Max(g.maxVelocity, g.kin.Velocity)
	}

	rec := BuildRecord(g.kin, &g.sensors, g.phases.Events(pulses))

	g.last = Sample{
		Step:      g.step,
		State:     g.kin,
		Sensors:   g.sensors,
		Phase:     g.phases.Current(),
		Pulses:    pulses,
		Timestamp: rec.Timestamp,
	}

	if pulses.Any() {
		g.emitEvents(pulses)
	}

	logging.Trace(g.logger, "step",
		"n", g.step,
		"t", rec.Timestamp,
		"alt", g.kin.Position,
		"vel", g.kin.Velocity,
		"phase", g.last.Phase,
	)

	return rec
}

// Run generates every remaining step into a flight log.
func (g *Generator) Run(ctx context.Context) (*model.FlightLog, error) {
	flightLog := &model.FlightLog{
		FlightCard: g.params.Card,
		Telemetry:  make([]model.TelemetryRecord, 0, g.params.Steps-g.step),
	}
	for !g.Done() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation aborted at step %d: %w", g.step, err)
		}
		flightLog.Telemetry = append(flightLog.Telemetry, g.Step())
	}
	return flightLog, nil
}

func (g *Generator) emitEvents(p Pulses) {
	if p.Takeoff {
		g.emit(model.EventTakeoff, "Takeoff detected",
			fmt.Sprintf("altitude %.2fm", g.kin.Position))
		g.logger.Debug("Takeoff detected", "time", round2(g.kin.Time), "altitude", round2(g.kin.Position))
	}
	if p.Apogee {
		g.emit(model.EventApogee, "Apogee detected",
			fmt.Sprintf("altitude %.2fm", g.kin.Position))
		g.logger.Info(fmt.Sprintf("Apogee detected at time %.2fs, altitude %.2fm", g.kin.Time, g.kin.Position))
	}
	if p.ParachuteEjection {
		g.emit(model.EventParachuteEjection, "Parachute ejected",
			fmt.Sprintf("velocity %.2fm/s", g.kin.Velocity))
		g.logger.Info(fmt.Sprintf("Parachute ejected at time %.2fs", g.kin.Time))
	}
	if p.Recovery {
		g.emit(model.EventRecovery, "Rocket landed",
			fmt.Sprintf("impact velocity %.2fm/s", g.kin.Velocity))
		g.logger.Info(fmt.Sprintf("Rocket landed at time %.2fs", g.kin.Time))
	}
}

func (g *Generator) emit(typ model.FlightEventType, title, summary string) {
	e := model.FlightEvent{
		Type:      typ,
		Title:     title,
		Summary:   summary,
		Time:      g.kin.Time,
		Altitude:  g.kin.Position,
		Velocity:  g.kin.Velocity,
		Latitude:  g.sensors.Latitude,
		Longitude: g.sensors.Longitude,
		Timestamp: time.Now(),
	}
	g.events = append(g.events, e)

	logging.LogEvent(&e)
	for _, r := range g.recorders {
		r.RecordEvent(&e)
	}
}

// Events returns the flight events detected so far, in order.
func (g *Generator) Events() []model.FlightEvent {
	out := make([]model.FlightEvent, len(g.events))
	copy(out, g.events)
	return out
}

// Summary describes the run so far. ID, LaunchCell, OutputPath and
// CreatedAt are left for the caller.
func (g *Generator) Summary() model.FlightSummary {
	s := model.FlightSummary{
		Card:           g.params.Card,
		RecordCount:    g.step,
		Duration:       g.kin.Time,
		ApogeeAltitude: g.maxAltitude,
		MaxVelocity:    g.maxVelocity,
		Events:         g.Events(),
	}
	if t, ok := g.phases.ApogeeTime(); ok {
		s.ApogeeTime = t
	}
	if e, ok := s.Event(model.EventRecovery); ok {
		s.LandingTime = e.Time
	}
	for _, p := range []Phase{PhaseAscent, PhaseCoasting, PhaseDescent, PhaseRecovered} {
		if t, ok := g.phases.GetLastTransition(p); ok {
			s.Phases = append(s.Phases, model.PhaseEntry{Phase: string(p), Label: FormatPhase(p), Time: t})
		}
	}
	return s
}

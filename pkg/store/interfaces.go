package store

import (
	"context"
	"errors"

	"aerosentinel/pkg/model"
)

// ErrNotFound is returned when a flight id is not in the archive.
var ErrNotFound = errors.New("flight not found")

// FlightStore handles archived flight runs.
type FlightStore interface {
	SaveFlight(ctx context.Context, summary *model.FlightSummary, flightLog *model.FlightLog) error
	GetFlight(ctx context.Context, id string) (*model.FlightSummary, error)
	GetTelemetry(ctx context.Context, id string) (*model.FlightLog, error)
	ListFlights(ctx context.Context, limit int) ([]*model.FlightSummary, error)
	FlightsByCell(ctx context.Context, cell string) ([]*model.FlightSummary, error)
}

// StateStore reads persistent archive state such as LastFlightKey.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
}

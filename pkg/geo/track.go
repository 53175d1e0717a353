package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"aerosentinel/pkg/model"
)

type marker struct {
	name string
	at   orb.Point
	alt  float64
	time string
}

// GroundTrack is the GPS path of one flight projected onto the ground.
type GroundTrack struct {
	path      orb.LineString
	altitudes []float64
	markers   []marker
}

// NewGroundTrack builds the track from the GPS block of every record and
// marks the records carrying a one-shot event.
func NewGroundTrack(flightLog *model.FlightLog) *GroundTrack {
	t := &GroundTrack{
		path:      make(orb.LineString, 0, len(flightLog.Telemetry)),
		altitudes: make([]float64, 0, len(flightLog.Telemetry)),
	}
	for i := range flightLog.Telemetry {
		r := &flightLog.Telemetry[i]
		p := orb.Point{r.GPS.Longitude, r.GPS.Latitude}
		t.path = append(t.path, p)
		t.altitudes = append(t.altitudes, r.GPS.Altitude)

		for _, name := range eventNames(r.Events) {
			t.markers = append(t.markers, marker{name: name, at: p, alt: r.GPS.Altitude, time: r.Timestamp})
		}
	}
	return t
}

func eventNames(e model.Events) []string {
	var names []string
	if e.TakeoffDetection {
		names = append(names, string(model.EventTakeoff))
	}
	if e.Apogee {
		names = append(names, string(model.EventApogee))
	}
	if e.ParachuteEjection {
		names = append(names, string(model.EventParachuteEjection))
	}
	if e.Recovery {
		names = append(names, string(model.EventRecovery))
	}
	return names
}

// Len returns the number of track points.
func (t *GroundTrack) Len() int {
	return len(t.path)
}

// Length returns the summed haversine distance along the track in meters.
func (t *GroundTrack) Length() float64 {
	var total float64
	for i := 1; i < len(t.path); i++ {
		total += Distance(toPoint(t.path[i-1]), toPoint(t.path[i]))
	}
	return total
}

// Drift returns the straight-line distance and bearing from the first to
// the last track point.
func (t *GroundTrack) Drift() (meters, bearing float64) {
	if len(t.path) < 2 {
		return 0, 0
	}
	start, end := toPoint(t.path[0]), toPoint(t.path[len(t.path)-1])
	return Distance(start, end), Bearing(start, end)
}

// Bound returns the bounding box of the track.
func (t *GroundTrack) Bound() orb.Bound {
	return t.path.Bound()
}

// FeatureCollection renders the track as a LineString feature followed by
// one Point feature per flight event. The collection carries the track's
// bounding box.
func (t *GroundTrack) FeatureCollection(card model.FlightCard) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(t.path) > 0 {
		fc.BBox = geojson.NewBBox(t.Bound())
	}

	line := geojson.NewFeature(t.path)
	line.Properties["kind"] = "track"
	line.Properties["rocket_name"] = card.RocketName
	line.Properties["flight_date"] = card.FlightDate
	line.Properties["points"] = len(t.path)
	line.Properties["length_m"] = t.Length()
	if len(t.altitudes) > 0 {
		line.Properties["altitudes"] = t.altitudes
	}
	fc.Append(line)

	for _, m := range t.markers {
		f := geojson.NewFeature(m.at)
		f.Properties["kind"] = "event"
		f.Properties["event"] = m.name
		f.Properties["altitude"] = m.alt
		f.Properties["timestamp"] = m.time
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the track FeatureCollection to path.
func (t *GroundTrack) WriteGeoJSON(path string, card model.FlightCard) error {
	data, err := json.MarshalIndent(t.FeatureCollection(card), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create track directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write track file: %w", err)
	}
	return nil
}

func toPoint(p orb.Point) Point {
	return Point{Lat: p.Lat(), Lon: p.Lon()}
}

package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerosentinel/pkg/model"
)

func trackLog() *model.FlightLog {
	rec := func(ts string, lat, alt float64, ev model.Events) model.TelemetryRecord {
		return model.TelemetryRecord{
			Timestamp: ts,
			GPS:       model.GPSData{Latitude: lat, Longitude: -115, Altitude: alt},
			Events:    ev,
		}
	}
	return &model.FlightLog{
		FlightCard: model.FlightCard{RocketName: "AeroSentinel X1", FlightDate: "2023-10-01"},
		Telemetry: []model.TelemetryRecord{
			rec("00:050", 35.0, 0.1, model.Events{}),
			rec("00:100", 35.001, 1.2, model.Events{TakeoffDetection: true, Ascent: true}),
			rec("00:150", 35.002, 500, model.Events{Apogee: true, Descent: true}),
			rec("00:200", 34.999, -0.5, model.Events{Recovery: true}),
		},
	}
}

func TestGroundTrack_Geometry(t *testing.T) {
	track := NewGroundTrack(trackLog())
	require.Equal(t, 4, track.Len())

	// 0.002 deg north then 0.003 deg south, ~111 m per 0.001 deg
	assert.InDelta(t, 556, track.Length(), 3)

	dist, bearing := track.Drift()
	assert.InDelta(t, 111, dist, 1)
	assert.InDelta(t, 180, bearing, 1e-6)

	b := track.Bound()
	assert.Equal(t, orb.Point{-115, 34.999}, b.Min)
	assert.Equal(t, orb.Point{-115, 35.002}, b.Max)
}

func TestGroundTrack_Empty(t *testing.T) {
	track := NewGroundTrack(&model.FlightLog{})
	assert.Equal(t, 0, track.Len())
	assert.Nil(t, track.FeatureCollection(model.FlightCard{}).BBox)
	assert.Zero(t, track.Length())

	dist, bearing := track.Drift()
	assert.Zero(t, dist)
	assert.Zero(t, bearing)
}

func TestGroundTrack_FeatureCollection(t *testing.T) {
	log := trackLog()
	fc := NewGroundTrack(log).FeatureCollection(log.FlightCard)

	require.Len(t, fc.Features, 4)

	line, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok, "first feature should be the track line")
	assert.Len(t, line, 4)
	assert.Equal(t, "track", fc.Features[0].Properties["kind"])
	assert.Equal(t, "AeroSentinel X1", fc.Features[0].Properties["rocket_name"])

	var events []string
	for _, f := range fc.Features[1:] {
		assert.Equal(t, "event", f.Properties["kind"])
		events = append(events, f.Properties["event"].(string))
	}
	assert.Equal(t, []string{"takeoff", "apogee", "recovery"}, events)
	assert.Equal(t, orb.Point{-115, 35.002}, fc.Features[2].Geometry)
	assert.Equal(t, "00:150", fc.Features[2].Properties["timestamp"])

	// [minLon, minLat, maxLon, maxLat]
	assert.Equal(t, geojson.BBox{-115, 34.999, -115, 35.002}, fc.BBox)
}

func TestGroundTrack_WriteGeoJSON(t *testing.T) {
	log := trackLog()
	path := filepath.Join(t.TempDir(), "tracks", "flight.geojson")

	require.NoError(t, NewGroundTrack(log).WriteGeoJSON(path, log.FlightCard))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, json.Valid(data))

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 4)
	assert.Equal(t, "AeroSentinel X1", fc.Features[0].Properties.MustString("rocket_name"))
}

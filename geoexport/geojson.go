// Package geoexport renders a decoded flight's GPS track as GeoJSON,
// a natural complement to the fixed-schema CSV export for mapping
// tools that don't want to parse CSV.
package geoexport

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"jpiedm/edm"
)

// TrackLineString builds a GeoJSON LineString feature from a flight's
// non-null GPS fixes, in sample order. Samples without a fix are
// skipped rather than interpolated.
func TrackLineString(f *edm.Flight) *geojson.Feature {
	var ls orb.LineString
	for _, s := range f.Samples {
		if s.Lat == nil || s.Long == nil {
			continue
		}
		ls = append(ls, orb.Point{*s.Long, *s.Lat})
	}

	feature := geojson.NewFeature(ls)
	feature.Properties["flight_number"] = f.Number
	feature.Properties["sample_count"] = len(f.Samples)
	return feature
}

// MarshalTrack renders the flight's track as a standalone GeoJSON
// document.
func MarshalTrack(f *edm.Flight) ([]byte, error) {
	feature := TrackLineString(f)
	return json.MarshalIndent(feature, "", "  ")
}

package export

import (
	"encoding/json"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// GeoOrigin anchors the flight frame on the globe: +x points east, +z
// north and y is height above the origin.
type GeoOrigin struct {
	Lon, Lat float64
}

var (
	toMercator   = wgs84.EPSG().Transform(4326, 3857)
	fromMercator = wgs84.EPSG().Transform(3857, 4326)
)

// LonLat converts a local ground position to WGS84 longitude and latitude.
// Offsets are applied in web mercator, scaled to ground metres at the
// origin latitude.
func (o GeoOrigin) LonLat(x, z float64) (float64, float64) {
	ox, oy, _ := toMercator(o.Lon, o.Lat, 0)
	scale := 1 / math.Cos(o.Lat*math.Pi/180)
	lon, lat, _ := fromMercator(ox+x*scale, oy+z*scale, 0)
	return lon, lat
}

func (o GeoOrigin) point(x, y, z float64) (geom.Point, error) {
	lon, lat := o.LonLat(x, z)
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: lon, Y: lat},
		Z:    y,
		Type: geom.CoordinatesType(geom.DimXYZ),
	})
}

// GroundTrackGeoJSON returns a FeatureCollection holding the flight path as
// a 3D LineString, the final position and one point per pad.
func GroundTrackGeoJSON(samples []dynamo.Snapshot, pads []Pad, origin GeoOrigin) ([]byte, error) {
	var features []geom.GeoJSONFeature

	if len(samples) > 1 {
		coords := make([]float64, 0, len(samples)*3)
		for _, s := range samples {
			lon, lat := origin.LonLat(s.Position.X(), s.Position.Z())
			coords = append(coords, lon, lat, s.Position.Y())
		}
		track, err := geom.NewLineString(geom.NewSequence(coords, geom.DimXYZ))
		if err != nil {
			return nil, fmt.Errorf("track: %w", err)
		}
		features = append(features, geom.GeoJSONFeature{
			Geometry: track.AsGeometry(),
			ID:       "track",
			Properties: map[string]interface{}{
				"samples":  len(samples),
				"duration": samples[len(samples)-1].Time - samples[0].Time,
			},
		})
	}

	if len(samples) > 0 {
		last := samples[len(samples)-1]
		final, err := origin.point(last.Position.X(), last.Position.Y(), last.Position.Z())
		if err != nil {
			return nil, fmt.Errorf("final position: %w", err)
		}
		features = append(features, geom.GeoJSONFeature{
			Geometry: final.AsGeometry(),
			ID:       "final",
			Properties: map[string]interface{}{
				"time":     last.Time,
				"mass":     last.Mass,
				"grounded": last.Contact.Grounded,
			},
		})
	}

	for _, p := range pads {
		pt, err := origin.point(p.Zone.X, 0, p.Zone.Z)
		if err != nil {
			return nil, fmt.Errorf("pad %s: %w", p.Name, err)
		}
		features = append(features, geom.GeoJSONFeature{
			Geometry: pt.AsGeometry(),
			ID:       "pad-" + p.Name,
			Properties: map[string]interface{}{
				"half_width": p.Zone.HalfWidth,
				"color":      p.Color,
			},
		})
	}

	return json.Marshal(geom.GeoJSONFeatureCollection(features))
}

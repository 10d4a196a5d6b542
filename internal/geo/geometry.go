package geo

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// RouteFeature renders a route's stops as a GeoJSON feature.
// Two or more stops form a LineString in stop order, a single stop is a Point
// and a route without stops has a null geometry.
func RouteFeature(route *models.Route) (*geojson.Feature, error) {
	stops := models.NormalizeStops(route.Stops)

	feature := &geojson.Feature{
		ID: route.ID.String(),
		Properties: map[string]interface{}{
			"routeNumber":   route.RouteNumber,
			"name":          route.Name,
			"transportType": route.TransportType,
			"color":         route.Color,
			"stopCount":     len(stops),
		},
	}

	switch len(stops) {
	case 0:
		return feature, nil
	case 1:
		p, err := geom.NewPoint(geom.XY).SetCoords(coord(stops[0]))
		if err != nil {
			return nil, fmt.Errorf("failed to build point: %w", err)
		}
		feature.Geometry = p
		feature.BBox = p.Bounds()
		return feature, nil
	}

	coords := make([]geom.Coord, len(stops))
	for i, stop := range stops {
		coords[i] = coord(stop)
	}

	line, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, fmt.Errorf("failed to build line string: %w", err)
	}
	feature.Geometry = line
	feature.BBox = line.Bounds()

	return feature, nil
}

// GeoJSON is lng, lat ordered
func coord(stop models.Stop) geom.Coord {
	return geom.Coord{stop.Location.Lng, stop.Location.Lat}
}

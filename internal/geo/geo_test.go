package geo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

func TestDistance(t *testing.T) {
	colombo := models.Coordinates{Lat: 6.9271, Lng: 79.8612}
	kandy := models.Coordinates{Lat: 7.2906, Lng: 80.6337}

	t.Run("identity", func(t *testing.T) {
		assert.Equal(t, 0.0, Distance(colombo, colombo))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, Distance(colombo, kandy), Distance(kandy, colombo), 1e-9)
	})

	t.Run("known distance", func(t *testing.T) {
		// roughly 94 km as the crow flies
		assert.InDelta(t, 94.0, Distance(colombo, kandy), 2.0)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := Distance(models.Coordinates{Lat: 0, Lng: 0}, models.Coordinates{Lat: 1, Lng: 0})
		assert.InDelta(t, EarthRadiusKm*math.Pi/180, d, 1e-6)
	})
}

func TestValidLatLng(t *testing.T) {
	assert.True(t, ValidLatLng(0, 0))
	assert.True(t, ValidLatLng(-90, 180))
	assert.False(t, ValidLatLng(90.1, 0))
	assert.False(t, ValidLatLng(0, -180.5))
	assert.False(t, ValidLatLng(math.NaN(), 0))
	assert.False(t, ValidLatLng(0, math.Inf(1)))
}

func TestNearestStop(t *testing.T) {
	stops := models.Stops{
		{Name: "Far", Location: models.Coordinates{Lat: 1, Lng: 1}, Sequence: 1},
		{Name: "Near", Location: models.Coordinates{Lat: 0.01, Lng: 0.01}, Sequence: 2},
	}

	nearest, ok := NearestStop(models.Coordinates{}, stops)
	require.True(t, ok)
	assert.Equal(t, "Near", nearest.Name)
	assert.InDelta(t, Distance(models.Coordinates{}, stops[1].Location), nearest.Distance, 1e-9)

	_, ok = NearestStop(models.Coordinates{}, nil)
	assert.False(t, ok)
}

func TestRouteFeature(t *testing.T) {
	route := &models.Route{
		ID:            uuid.New(),
		RouteNumber:   "138",
		Name:          "Pettah - Homagama",
		TransportType: models.TransportBus,
		Color:         models.DefaultRouteColor,
		Stops: models.Stops{
			{Name: "Homagama", Location: models.Coordinates{Lat: 6.84, Lng: 80.00}, Sequence: 3},
			{Name: "Pettah", Location: models.Coordinates{Lat: 6.93, Lng: 79.85}, Sequence: 1},
			{Name: "Nugegoda", Location: models.Coordinates{Lat: 6.87, Lng: 79.89}, Sequence: 2},
		},
	}

	t.Run("line string in stop order", func(t *testing.T) {
		feature, err := RouteFeature(route)
		require.NoError(t, err)

		line, ok := feature.Geometry.(*geom.LineString)
		require.True(t, ok)
		require.Equal(t, 3, line.NumCoords())
		assert.Equal(t, geom.Coord{79.85, 6.93}, line.Coord(0))
		assert.Equal(t, geom.Coord{80.00, 6.84}, line.Coord(2))

		require.NotNil(t, feature.BBox)
		assert.Equal(t, 79.85, feature.BBox.Min(0))
		assert.Equal(t, 6.84, feature.BBox.Min(1))
		assert.Equal(t, "138", feature.Properties["routeNumber"])
	})

	t.Run("encodes as geojson", func(t *testing.T) {
		feature, err := RouteFeature(route)
		require.NoError(t, err)

		b, err := json.Marshal(feature)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.Equal(t, "Feature", decoded["type"])
		assert.Equal(t, "LineString", decoded["geometry"].(map[string]interface{})["type"])
	})

	t.Run("single stop is a point", func(t *testing.T) {
		feature, err := RouteFeature(&models.Route{ID: uuid.New(), Stops: route.Stops[:1]})
		require.NoError(t, err)
		_, ok := feature.Geometry.(*geom.Point)
		assert.True(t, ok)
	})

	t.Run("no stops has no geometry", func(t *testing.T) {
		feature, err := RouteFeature(&models.Route{ID: uuid.New()})
		require.NoError(t, err)
		assert.Nil(t, feature.Geometry)
		assert.Nil(t, feature.BBox)
	})
}

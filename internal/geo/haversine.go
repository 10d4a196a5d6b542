package geo

import (
	"math"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance between a and b in kilometres
func Distance(a, b models.Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ValidLatLng reports whether lat and lng are finite and inside WGS84 bounds
func ValidLatLng(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// NearestStop returns the stop of stops closest to point.
// ok is false when stops is empty.
func NearestStop(point models.Coordinates, stops models.Stops) (nearest models.NearestStop, ok bool) {
	for _, stop := range stops {
		d := Distance(point, stop.Location)
		if !ok || d < nearest.Distance {
			nearest = models.NearestStop{Stop: stop, Distance: d}
			ok = true
		}
	}
	return nearest, ok
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

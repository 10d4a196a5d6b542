package models

import (
	"database/sql/driver"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransportType is the mode of transport a route is served by
type TransportType string

const (
	TransportBus   TransportType = "bus"
	TransportTrain TransportType = "train"
	TransportMetro TransportType = "metro"
	TransportFerry TransportType = "ferry"
	TransportTram  TransportType = "tram"
)

// TransportTypes lists every supported transport type
var TransportTypes = []TransportType{TransportBus, TransportTrain, TransportMetro, TransportFerry, TransportTram}

// Valid reports whether t is a supported transport type
func (t TransportType) Valid() bool {
	for _, v := range TransportTypes {
		if v == t {
			return true
		}
	}
	return false
}

// DefaultRouteColor is used when a route is created without a color
const DefaultRouteColor = "#2563eb"

// Coordinates is a WGS84 point in degrees
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Stop is a named point on a route
type Stop struct {
	Name                  string      `json:"name" validate:"required,max=200"`
	Location              Coordinates `json:"location"`
	Address               string      `json:"address,omitempty" validate:"max=300"`
	Sequence              int         `json:"sequence" validate:"gte=0"`
	EstimatedArrivalTimes []string    `json:"estimatedArrivalTimes,omitempty" validate:"omitempty,dive,hhmm"`
	IsTerminal            bool        `json:"isTerminal"`
}

// ScheduleEntry describes departures for one day (or every day)
type ScheduleEntry struct {
	Day            string   `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday all"`
	DepartureTimes []string `json:"departureTimes,omitempty" validate:"omitempty,dive,hhmm"`
	Frequency      *int     `json:"frequency,omitempty" validate:"omitempty,gte=5,lte=120"`
	Operational    *bool    `json:"operational,omitempty"`
}

// Fare holds per passenger class prices
type Fare struct {
	Adult   *float64 `json:"adult,omitempty" validate:"omitempty,gte=0"`
	Student *float64 `json:"student,omitempty" validate:"omitempty,gte=0"`
	Senior  *float64 `json:"senior,omitempty" validate:"omitempty,gte=0"`
	Child   *float64 `json:"child,omitempty" validate:"omitempty,gte=0"`
}

// Stops is the ordered stop list stored as JSONB
type Stops []Stop

// Value implements the driver.Valuer interface
func (s Stops) Value() (driver.Value, error) {
	if s == nil {
		s = Stops{}
	}
	return jsonValue(s)
}

// Scan implements the sql.Scanner interface
func (s *Stops) Scan(src interface{}) error {
	*s = Stops{}
	return jsonScan(src, s)
}

// Schedule is the schedule list stored as JSONB
type Schedule []ScheduleEntry

// Value implements the driver.Valuer interface
func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		s = Schedule{}
	}
	return jsonValue(s)
}

// Scan implements the sql.Scanner interface
func (s *Schedule) Scan(src interface{}) error {
	*s = Schedule{}
	return jsonScan(src, s)
}

// Value implements the driver.Valuer interface
func (f Fare) Value() (driver.Value, error) {
	return jsonValue(f)
}

// Scan implements the sql.Scanner interface
func (f *Fare) Scan(src interface{}) error {
	*f = Fare{}
	return jsonScan(src, f)
}

// Route is a numbered transit line with its stops and schedule
type Route struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	RouteNumber       string        `json:"routeNumber" db:"route_number"`
	Name              string        `json:"name" db:"name"`
	Description       string        `json:"description,omitempty" db:"description"`
	TransportType     TransportType `json:"transportType" db:"transport_type"`
	Stops             Stops         `json:"stops" db:"stops"`
	Schedule          Schedule      `json:"schedule" db:"schedule"`
	Fare              Fare          `json:"fare" db:"fare"`
	Operator          string        `json:"operator,omitempty" db:"operator"`
	Color             string        `json:"color" db:"color"`
	DistanceKm        *float64      `json:"distance,omitempty" db:"distance_km"`
	EstimatedDuration *int          `json:"estimatedDuration,omitempty" db:"estimated_duration"`
	PopularityScore   int           `json:"popularityScore" db:"popularity_score"`
	IsActive          bool          `json:"isActive" db:"is_active"`
	CreatedAt         time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time     `json:"updatedAt" db:"updated_at"`
}

// NormalizeRouteNumber trims and uppercases a route number
func NormalizeRouteNumber(n string) string {
	return strings.ToUpper(strings.TrimSpace(n))
}

// NormalizeStops orders stops by their supplied sequence and renumbers them 1..n
func NormalizeStops(stops Stops) Stops {
	out := make(Stops, len(stops))
	copy(out, stops)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	for i := range out {
		out[i].Name = strings.TrimSpace(out[i].Name)
		out[i].Sequence = i + 1
	}
	return out
}

// Summary returns the short form of the route used in joins
func (r *Route) Summary() *RouteSummary {
	return &RouteSummary{
		ID:            r.ID,
		RouteNumber:   r.RouteNumber,
		Name:          r.Name,
		TransportType: r.TransportType,
	}
}

// RouteSummary is embedded in delay reports and favorites
type RouteSummary struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	RouteNumber   string        `json:"routeNumber" db:"route_number"`
	Name          string        `json:"name" db:"name"`
	TransportType TransportType `json:"transportType" db:"transport_type"`
}

// NearestStop is the closest stop of a route to a query point
type NearestStop struct {
	Stop
	Distance float64 `json:"distance"`
}

// NearbyRoute is a route augmented with its nearest stop
type NearbyRoute struct {
	Route
	NearestStop NearestStop `json:"nearestStop"`
}

// RouteFilter narrows route listings
type RouteFilter struct {
	TransportType TransportType
	ActiveOnly    bool
	Page          int
	Limit         int
}

// Offset returns the row offset for the filter's page
func (f RouteFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// CreateRouteRequest is the body of POST /api/routes
type CreateRouteRequest struct {
	RouteNumber       string          `json:"routeNumber" validate:"required,max=20"`
	Name              string          `json:"name" validate:"required,max=200"`
	Description       string          `json:"description" validate:"max=1000"`
	TransportType     string          `json:"transportType" validate:"required,oneof=bus train metro ferry tram"`
	Stops             []Stop          `json:"stops" validate:"omitempty,dive"`
	Schedule          []ScheduleEntry `json:"schedule" validate:"omitempty,dive"`
	Fare              *Fare           `json:"fare"`
	Operator          string          `json:"operator" validate:"max=200"`
	Color             string          `json:"color" validate:"omitempty,hexcolor6"`
	DistanceKm        *float64        `json:"distance" validate:"omitempty,gte=0"`
	EstimatedDuration *int            `json:"estimatedDuration" validate:"omitempty,gte=0"`
	IsActive          *bool           `json:"isActive"`
}

// UpdateRouteRequest is the body of PUT /api/routes/:id; nil fields are left unchanged
type UpdateRouteRequest struct {
	RouteNumber       *string         `json:"routeNumber" validate:"omitempty,min=1,max=20"`
	Name              *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string         `json:"description" validate:"omitempty,max=1000"`
	TransportType     *string         `json:"transportType" validate:"omitempty,oneof=bus train metro ferry tram"`
	Stops             []Stop          `json:"stops" validate:"omitempty,dive"`
	Schedule          []ScheduleEntry `json:"schedule" validate:"omitempty,dive"`
	Fare              *Fare           `json:"fare"`
	Operator          *string         `json:"operator" validate:"omitempty,max=200"`
	Color             *string         `json:"color" validate:"omitempty,hexcolor6"`
	DistanceKm        *float64        `json:"distance" validate:"omitempty,gte=0"`
	EstimatedDuration *int            `json:"estimatedDuration" validate:"omitempty,gte=0"`
	IsActive          *bool           `json:"isActive"`
}

// Apply copies the supplied fields onto route
func (u *UpdateRouteRequest) Apply(route *Route) {
	if u.RouteNumber != nil {
		route.RouteNumber = NormalizeRouteNumber(*u.RouteNumber)
	}
	if u.Name != nil {
		route.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		route.Description = *u.Description
	}
	if u.TransportType != nil {
		route.TransportType = TransportType(*u.TransportType)
	}
	if u.Stops != nil {
		route.Stops = NormalizeStops(u.Stops)
	}
	if u.Schedule != nil {
		route.Schedule = u.Schedule
	}
	if u.Fare != nil {
		route.Fare = *u.Fare
	}
	if u.Operator != nil {
		route.Operator = *u.Operator
	}
	if u.Color != nil {
		route.Color = *u.Color
	}
	if u.DistanceKm != nil {
		route.DistanceKm = u.DistanceKm
	}
	if u.EstimatedDuration != nil {
		route.EstimatedDuration = u.EstimatedDuration
	}
	if u.IsActive != nil {
		route.IsActive = *u.IsActive
	}
}

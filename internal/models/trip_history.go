package models

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the state of a recorded trip
type TripStatus string

const (
	TripPlanned    TripStatus = "planned"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// OnTimeThresholdMinutes is the largest delay a trip may have and still count as on time
const OnTimeThresholdMinutes = 5

// TripHistory is one trip taken by a user
type TripHistory struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"userId" db:"user_id"`
	RouteID       uuid.UUID  `json:"routeId" db:"route_id"`
	RouteNumber   string     `json:"routeNumber" db:"route_number"`
	RouteName     string     `json:"routeName" db:"route_name"`
	StartStop     string     `json:"startStop,omitempty" db:"start_stop"`
	EndStop       string     `json:"endStop,omitempty" db:"end_stop"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty" db:"scheduled_time"`
	ActualTime    *time.Time `json:"actualTime,omitempty" db:"actual_time"`
	Duration      int        `json:"duration" db:"duration"`
	Status        TripStatus `json:"status" db:"status"`
	DelayMinutes  int        `json:"delayMinutes" db:"delay_minutes"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// RecordTripRequest is the body of POST /api/trips
type RecordTripRequest struct {
	RouteID       string     `json:"routeId" validate:"required,uuid"`
	StartStop     string     `json:"startStop" validate:"max=200"`
	EndStop       string     `json:"endStop" validate:"max=200"`
	ScheduledTime *time.Time `json:"scheduledTime"`
	ActualTime    *time.Time `json:"actualTime"`
	Duration      int        `json:"duration" validate:"gte=0"`
	Status        string     `json:"status" validate:"omitempty,oneof=planned in_progress completed cancelled"`
	DelayMinutes  *int       `json:"delayMinutes" validate:"omitempty,gte=0,lte=1440"`
}

// TripStats is the per-user statistics block shown on the profile
type TripStats struct {
	TotalTrips          int           `json:"totalTrips"`
	CompletedTrips      int           `json:"completedTrips"`
	CancelledTrips      int           `json:"cancelledTrips"`
	TotalTravelMinutes  int           `json:"totalTravelMinutes"`
	AverageDelayMinutes float64       `json:"averageDelayMinutes"`
	OnTimeRate          float64       `json:"onTimeRate"`
	MostTraveledRoute   *RouteSummary `json:"mostTraveledRoute,omitempty"`
}

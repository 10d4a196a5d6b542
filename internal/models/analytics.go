package models

import (
	"time"

	"github.com/google/uuid"
)

// WeekdayLabels are indexed by time.Weekday (Sunday = 0)
var WeekdayLabels = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekdayDelayStat aggregates delay reports created on one weekday
type WeekdayDelayStat struct {
	Weekday      time.Weekday `db:"weekday"`
	Count        int          `db:"count"`
	TotalMinutes int          `db:"total_minutes"`
}

// RouteCount ranks a route by a count (delay reports or trips)
type RouteCount struct {
	RouteID     uuid.UUID `json:"routeId" db:"route_id"`
	RouteNumber string    `json:"routeNumber" db:"route_number"`
	Name        string    `json:"name" db:"name"`
	Count       int       `json:"count" db:"count"`
}

// TransportTypeCount is one bucket of the transport type distribution
type TransportTypeCount struct {
	TransportType TransportType `json:"transportType" db:"transport_type"`
	Count         int           `json:"count" db:"count"`
}

// TripCompletion holds counts of completed and on-time trips
type TripCompletion struct {
	Completed int `db:"completed"`
	OnTime    int `db:"on_time"`
}

// Analytics is the aggregate dashboard payload
type Analytics struct {
	WindowDays            int                  `json:"windowDays"` // 0 = all time
	GeneratedAt           time.Time            `json:"generatedAt"`
	TotalActiveRoutes     int                  `json:"totalRoutes"`
	TotalUsers            int                  `json:"totalUsers"`
	PendingDelays         int                  `json:"pendingDelays"`
	CompletedTrips        int                  `json:"totalTrips"`
	AverageDelayMinutes   float64              `json:"averageDelay"`
	Weekdays              []string             `json:"weekdays"`
	DelayTrends           []float64            `json:"delayTrends"`
	ReportTrends          []int                `json:"reportTrends"`
	TransportDistribution []TransportTypeCount `json:"transportDistribution"`
	TopDelayedRoutes      []RouteCount         `json:"topDelayedRoutes"`
	PopularRoutes         []RouteCount         `json:"popularRoutes"`
	OnTimeRate            float64              `json:"onTimeRate"`
}

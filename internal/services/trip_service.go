package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

// DefaultTripLimit caps GET /api/trips
const DefaultTripLimit = 50

// TripService records trips and derives per-user travel statistics
type TripService struct {
	trips  repository.TripStore
	routes repository.RouteStore
	logger *logrus.Logger
}

// NewTripService creates a new TripService
func NewTripService(trips repository.TripStore, routes repository.RouteStore, logger *logrus.Logger) *TripService {
	return &TripService{
		trips:  trips,
		routes: routes,
		logger: logger,
	}
}

// Record stores a trip taken by the user
func (s *TripService) Record(ctx context.Context, userID uuid.UUID, req models.RecordTripRequest) (*models.TripHistory, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	routeID, err := parseResourceID(req.RouteID, "route")
	if err != nil {
		return nil, err
	}
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, storeError(err, "route", "get route")
	}

	status := models.TripStatus(req.Status)
	if status == "" {
		status = models.TripCompleted
	}

	trip := &models.TripHistory{
		ID:            uuid.New(),
		UserID:        userID,
		RouteID:       route.ID,
		RouteNumber:   route.RouteNumber,
		RouteName:     route.Name,
		StartStop:     strings.TrimSpace(req.StartStop),
		EndStop:       strings.TrimSpace(req.EndStop),
		ScheduledTime: req.ScheduledTime,
		ActualTime:    req.ActualTime,
		Duration:      req.Duration,
		Status:        status,
		DelayMinutes:  tripDelay(req),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, storeError(err, "trip", "record trip")
	}

	s.logger.WithFields(logrus.Fields{
		"trip_id":  trip.ID,
		"user_id":  userID,
		"route_id": route.ID,
		"status":   trip.Status,
	}).Info("Trip recorded")

	return trip, nil
}

// tripDelay prefers the supplied delay and otherwise derives it from the
// scheduled and actual times; early arrivals count as zero
func tripDelay(req models.RecordTripRequest) int {
	if req.DelayMinutes != nil {
		return *req.DelayMinutes
	}
	if req.ScheduledTime == nil || req.ActualTime == nil {
		return 0
	}
	late := req.ActualTime.Sub(*req.ScheduledTime)
	if late <= 0 {
		return 0
	}
	return int(math.Round(late.Minutes()))
}

// List returns the user's most recent trips
func (s *TripService) List(ctx context.Context, userID uuid.UUID) ([]models.TripHistory, error) {
	trips, err := s.trips.ListByUser(ctx, userID, DefaultTripLimit)
	if err != nil {
		return nil, storeError(err, "trip", "list trips")
	}
	return trips, nil
}

// Stats summarises every trip of the user
func (s *TripService) Stats(ctx context.Context, userID uuid.UUID) (*models.TripStats, error) {
	trips, err := s.trips.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, storeError(err, "trip", "list trips")
	}

	stats := &models.TripStats{TotalTrips: len(trips), OnTimeRate: 100}

	var delayMinutes, onTime int
	perRoute := map[uuid.UUID]int{}
	latest := map[uuid.UUID]models.TripHistory{}
	for _, trip := range trips {
		perRoute[trip.RouteID]++
		if _, ok := latest[trip.RouteID]; !ok {
			latest[trip.RouteID] = trip
		}

		switch trip.Status {
		case models.TripCompleted:
			stats.CompletedTrips++
			stats.TotalTravelMinutes += trip.Duration
			delayMinutes += trip.DelayMinutes
			if trip.DelayMinutes <= models.OnTimeThresholdMinutes {
				onTime++
			}
		case models.TripCancelled:
			stats.CancelledTrips++
		}
	}

	if stats.CompletedTrips > 0 {
		stats.AverageDelayMinutes = round1(float64(delayMinutes) / float64(stats.CompletedTrips))
		stats.OnTimeRate = round1(float64(onTime) * 100 / float64(stats.CompletedTrips))
	}

	// trips arrive newest first, so ties go to the most recently travelled route
	var best uuid.UUID
	bestCount := 0
	for _, trip := range trips {
		if n := perRoute[trip.RouteID]; n > bestCount {
			best, bestCount = trip.RouteID, n
		}
	}
	if bestCount > 0 {
		t := latest[best]
		stats.MostTraveledRoute = &models.RouteSummary{
			ID:          t.RouteID,
			RouteNumber: t.RouteNumber,
			Name:        t.RouteName,
		}
		summaries, err := s.routes.GetSummaries(ctx, []uuid.UUID{best})
		if err != nil {
			s.logger.WithError(err).WithField("route_id", best).Warn("Failed to load route summary for trip stats")
		} else if summary, ok := summaries[best]; ok {
			stats.MostTraveledRoute = &summary
		}
	}

	return stats, nil
}

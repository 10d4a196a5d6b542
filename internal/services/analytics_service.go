package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/cache"
	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

const (
	MaxAnalyticsDays = 365
	topRoutesLimit   = 5
	analyticsCacheNS = "analytics"
)

// AnalyticsService aggregates the dashboard statistics
type AnalyticsService struct {
	stores      *repository.Stores
	cache       cache.Cache // nil disables caching
	ttl         time.Duration
	defaultDays int
	logger      *logrus.Logger
	now         func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(stores *repository.Stores, c cache.Cache, ttl time.Duration, defaultDays int, logger *logrus.Logger) *AnalyticsService {
	if defaultDays < 0 {
		defaultDays = 7
	}
	return &AnalyticsService{
		stores:      stores,
		cache:       c,
		ttl:         ttl,
		defaultDays: defaultDays,
		logger:      logger,
		now:         time.Now,
	}
}

// Get returns the analytics over the trailing window of days; nil selects the
// default window and 0 covers all time
func (s *AnalyticsService) Get(ctx context.Context, days *int) (*models.Analytics, error) {
	window := s.defaultDays
	if days != nil {
		window = *days
	}
	if window < 0 || window > MaxAnalyticsDays {
		return nil, models.ErrBadRequest("days must be between 0 and %d", MaxAnalyticsDays)
	}

	key := cache.Key(analyticsCacheNS, window)
	if s.cache != nil {
		var cached models.Analytics
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to read analytics cache")
		} else if found {
			return &cached, nil
		}
	}

	analytics, err := s.compute(ctx, window)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, analytics)
	return analytics, nil
}

// Refresh recomputes the default window and replaces the cached copy
func (s *AnalyticsService) Refresh(ctx context.Context) error {
	analytics, err := s.compute(ctx, s.defaultDays)
	if err != nil {
		return err
	}
	s.store(ctx, cache.Key(analyticsCacheNS, s.defaultDays), analytics)
	return nil
}

func (s *AnalyticsService) store(ctx context.Context, key string, analytics *models.Analytics) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, analytics, s.ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to write analytics cache")
	}
}

func (s *AnalyticsService) compute(ctx context.Context, days int) (*models.Analytics, error) {
	now := s.now().UTC()
	var since *time.Time
	if days > 0 {
		t := now.AddDate(0, 0, -days)
		since = &t
	}

	activeRoutes, err := s.stores.Routes.CountActive(ctx)
	if err != nil {
		return nil, storeError(err, "route", "count active routes")
	}
	users, err := s.stores.Users.Count(ctx)
	if err != nil {
		return nil, storeError(err, "user", "count users")
	}
	pending, err := s.stores.Delays.CountByStatus(ctx, models.DelayPending)
	if err != nil {
		return nil, storeError(err, "delay report", "count pending reports")
	}
	weekdays, err := s.stores.Delays.WeekdayStats(ctx, since)
	if err != nil {
		return nil, storeError(err, "delay report", "aggregate delays by weekday")
	}
	distribution, err := s.stores.Routes.TransportDistribution(ctx)
	if err != nil {
		return nil, storeError(err, "route", "aggregate transport types")
	}
	delayed, err := s.stores.Delays.TopDelayedRoutes(ctx, since, topRoutesLimit)
	if err != nil {
		return nil, storeError(err, "delay report", "rank delayed routes")
	}
	popular, err := s.stores.Trips.TopTraveledRoutes(ctx, since, topRoutesLimit)
	if err != nil {
		return nil, storeError(err, "trip", "rank travelled routes")
	}
	completion, err := s.stores.Trips.CompletionSince(ctx, since)
	if err != nil {
		return nil, storeError(err, "trip", "count completed trips")
	}

	analytics := &models.Analytics{
		WindowDays:            days,
		GeneratedAt:           now,
		TotalActiveRoutes:     activeRoutes,
		TotalUsers:            users,
		PendingDelays:         pending,
		CompletedTrips:        completion.Completed,
		Weekdays:              models.WeekdayLabels,
		DelayTrends:           make([]float64, 7),
		ReportTrends:          make([]int, 7),
		TransportDistribution: distribution,
		TopDelayedRoutes:      delayed,
		PopularRoutes:         popular,
		OnTimeRate:            100,
	}

	var reports, minutes int
	for _, stat := range weekdays {
		analytics.ReportTrends[stat.Weekday] = stat.Count
		if stat.Count > 0 {
			analytics.DelayTrends[stat.Weekday] = round1(float64(stat.TotalMinutes) / float64(stat.Count))
		}
		reports += stat.Count
		minutes += stat.TotalMinutes
	}
	if reports > 0 {
		analytics.AverageDelayMinutes = round1(float64(minutes) / float64(reports))
	}
	if completion.Completed > 0 {
		analytics.OnTimeRate = round1(float64(completion.OnTime) * 100 / float64(completion.Completed))
	}

	return analytics, nil
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitpulse/transit-assistant-backend/internal/cache"
	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

// Sunday
var analyticsNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type analyticsFixture struct {
	stores *repository.Stores
	busA   *models.Route
	trainB *models.Route
}

func seedAnalytics(t *testing.T) *analyticsFixture {
	t.Helper()
	ctx := context.Background()
	stores := newTestStores()

	busA := seedRoute(t, stores, "A1")
	trainB := seedRoute(t, stores, "B1")
	trainB.TransportType = models.TransportTrain
	require.NoError(t, stores.Routes.Update(ctx, trainB))
	closed := seedRoute(t, stores, "C1")
	require.NoError(t, stores.Routes.SetActive(ctx, closed.ID, false))

	user := seedUser(t, stores, "analyst@example.com")

	delay := func(route *models.Route, minutes int, status models.DelayStatus, at time.Time) {
		require.NoError(t, stores.Delays.Create(ctx, &models.DelayReport{
			ID:           uuid.New(),
			RouteID:      route.ID,
			DelayMinutes: minutes,
			Reason:       models.ReasonTraffic,
			Status:       status,
			Severity:     models.SeverityFor(minutes),
			CreatedAt:    at,
			UpdatedAt:    at,
		}))
	}
	monday := time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC)
	wednesday := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	september := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) // Tuesday

	delay(busA, 10, models.DelayPending, monday)
	delay(busA, 20, models.DelayPending, monday.Add(time.Hour))
	delay(trainB, 45, models.DelayVerified, wednesday)
	delay(trainB, 100, models.DelayResolved, september)

	trip := func(route *models.Route, status models.TripStatus, delayMinutes int, at time.Time) {
		require.NoError(t, stores.Trips.Create(ctx, &models.TripHistory{
			ID:           uuid.New(),
			UserID:       user.ID,
			RouteID:      route.ID,
			RouteNumber:  route.RouteNumber,
			RouteName:    route.Name,
			Status:       status,
			DelayMinutes: delayMinutes,
			CreatedAt:    at,
		}))
	}
	trip(busA, models.TripCompleted, 0, monday)
	trip(busA, models.TripCompleted, 10, wednesday)
	trip(trainB, models.TripCompleted, 3, wednesday)
	trip(trainB, models.TripCancelled, 0, wednesday)
	trip(trainB, models.TripCompleted, 0, september)

	return &analyticsFixture{stores: stores, busA: busA, trainB: trainB}
}

func newAnalyticsService(stores *repository.Stores, c cache.Cache) *AnalyticsService {
	service := NewAnalyticsService(stores, c, time.Minute, 7, testLogger())
	service.now = func() time.Time { return analyticsNow }
	return service
}

func TestAnalyticsService_Window(t *testing.T) {
	fx := seedAnalytics(t)
	service := newAnalyticsService(fx.stores, nil)

	a, err := service.Get(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 7, a.WindowDays)
	assert.Equal(t, 2, a.TotalActiveRoutes)
	assert.Equal(t, 1, a.TotalUsers)
	assert.Equal(t, 2, a.PendingDelays)
	assert.Equal(t, 3, a.CompletedTrips)
	assert.Equal(t, 25.0, a.AverageDelayMinutes)
	assert.Equal(t, 66.7, a.OnTimeRate)

	assert.Equal(t, models.WeekdayLabels, a.Weekdays)
	assert.Equal(t, []int{0, 2, 0, 1, 0, 0, 0}, a.ReportTrends)
	assert.Equal(t, []float64{0, 15, 0, 45, 0, 0, 0}, a.DelayTrends)

	assert.ElementsMatch(t, []models.TransportTypeCount{
		{TransportType: models.TransportBus, Count: 1},
		{TransportType: models.TransportTrain, Count: 1},
	}, a.TransportDistribution)

	require.Len(t, a.TopDelayedRoutes, 2)
	assert.Equal(t, fx.busA.ID, a.TopDelayedRoutes[0].RouteID)
	assert.Equal(t, 2, a.TopDelayedRoutes[0].Count)

	require.Len(t, a.PopularRoutes, 2)
	assert.Equal(t, "A1", a.PopularRoutes[0].RouteNumber)
	assert.Equal(t, 2, a.PopularRoutes[0].Count)
}

func TestAnalyticsService_AllTime(t *testing.T) {
	fx := seedAnalytics(t)
	service := newAnalyticsService(fx.stores, nil)

	a, err := service.Get(context.Background(), intPtr(0))
	require.NoError(t, err)

	assert.Equal(t, 0, a.WindowDays)
	assert.Equal(t, 4, a.CompletedTrips)
	assert.Equal(t, 75.0, a.OnTimeRate)
	assert.Equal(t, []int{0, 2, 1, 1, 0, 0, 0}, a.ReportTrends)
	assert.Equal(t, 43.8, a.AverageDelayMinutes)
	require.Len(t, a.TopDelayedRoutes, 2)
	assert.Equal(t, 2, a.TopDelayedRoutes[1].Count)
}

func TestAnalyticsService_Empty(t *testing.T) {
	service := newAnalyticsService(newTestStores(), nil)

	a, err := service.Get(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 100.0, a.OnTimeRate)
	assert.Zero(t, a.AverageDelayMinutes)
	assert.Len(t, a.DelayTrends, 7)
	assert.Len(t, a.ReportTrends, 7)
	assert.Empty(t, a.TopDelayedRoutes)
}

func TestAnalyticsService_InvalidDays(t *testing.T) {
	service := newAnalyticsService(newTestStores(), nil)

	for _, days := range []int{-1, MaxAnalyticsDays + 1} {
		_, err := service.Get(context.Background(), intPtr(days))
		var badReq *models.BadRequestError
		assert.ErrorAs(t, err, &badReq, "days %d", days)
	}
}

func TestAnalyticsService_Cache(t *testing.T) {
	fx := seedAnalytics(t)
	ctx := context.Background()
	service := newAnalyticsService(fx.stores, cache.NewMemoryCache(time.Minute, time.Minute))

	first, err := service.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, first.PendingDelays)

	require.NoError(t, fx.stores.Delays.Create(ctx, &models.DelayReport{
		ID:           uuid.New(),
		RouteID:      fx.busA.ID,
		DelayMinutes: 5,
		Status:       models.DelayPending,
		Severity:     models.SeverityLow,
		CreatedAt:    analyticsNow.Add(-time.Hour),
		UpdatedAt:    analyticsNow.Add(-time.Hour),
	}))

	cached, err := service.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cached.PendingDelays)

	require.NoError(t, service.Refresh(ctx))

	refreshed, err := service.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, refreshed.PendingDelays)
}

package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

func setupDelayService(t *testing.T) (*DelayService, *repository.Stores, *models.Route) {
	stores := newTestStores()
	service := NewDelayService(stores.Delays, stores.Routes, stores.Users, testLogger())
	route := seedRoute(t, stores, "138", stopAt("Pettah", 6.93, 79.85))
	return service, stores, route
}

func reportDelay(t *testing.T, service *DelayService, routeID uuid.UUID, minutes int) *models.DelayReportView {
	t.Helper()
	view, err := service.Report(context.Background(), models.ReportDelayRequest{
		RouteID:      routeID.String(),
		DelayMinutes: minutes,
	}, nil)
	require.NoError(t, err)
	return view
}

func TestDelayService_ReportSeverity(t *testing.T) {
	service, _, route := setupDelayService(t)

	high := reportDelay(t, service, route.ID, 45)
	assert.Equal(t, models.SeverityHigh, high.Severity)
	assert.Equal(t, models.DelayPending, high.Status)
	assert.Equal(t, models.ReasonOther, high.Reason)
	require.NotNil(t, high.Route)
	assert.Equal(t, "138", high.Route.RouteNumber)

	low := reportDelay(t, service, route.ID, 5)
	assert.Equal(t, models.SeverityLow, low.Severity)
}

func TestDelayService_ReportIgnoresSuppliedSeverity(t *testing.T) {
	service, _, route := setupDelayService(t)

	view, err := service.Report(context.Background(), models.ReportDelayRequest{
		RouteID:      route.ID.String(),
		DelayMinutes: 90,
		Severity:     "low",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SeverityCritical, view.Severity)
}

func TestDelayService_ReportWithReporter(t *testing.T) {
	service, stores, route := setupDelayService(t)
	user := seedUser(t, stores, "commuter@example.com")

	view, err := service.Report(context.Background(), models.ReportDelayRequest{
		RouteID:      route.ID.String(),
		DelayMinutes: 12,
		Reason:       "traffic",
		Location:     &models.Coordinates{Lat: 6.9, Lng: 79.8},
	}, &user.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Reporter)
	assert.Equal(t, "commuter@example.com", view.Reporter.Email)
	assert.Equal(t, models.ReasonTraffic, view.Reason)
	require.NotNil(t, view.Location)
}

func TestDelayService_ReportValidation(t *testing.T) {
	service, _, route := setupDelayService(t)
	ctx := context.Background()

	t.Run("out of range minutes", func(t *testing.T) {
		for _, minutes := range []int{0, 181} {
			_, err := service.Report(ctx, models.ReportDelayRequest{RouteID: route.ID.String(), DelayMinutes: minutes}, nil)
			var verr *models.ValidationError
			assert.ErrorAs(t, err, &verr, "minutes %d", minutes)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		_, err := service.Report(ctx, models.ReportDelayRequest{RouteID: uuid.NewString(), DelayMinutes: 10}, nil)
		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("unknown reason", func(t *testing.T) {
		_, err := service.Report(ctx, models.ReportDelayRequest{RouteID: route.ID.String(), DelayMinutes: 10, Reason: "aliens"}, nil)
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestDelayService_List(t *testing.T) {
	service, stores, route := setupDelayService(t)
	ctx := context.Background()
	other := seedRoute(t, stores, "177")

	reportDelay(t, service, route.ID, 10)
	reportDelay(t, service, other.ID, 20)
	verified := reportDelay(t, service, route.ID, 30)
	_, err := service.Verify(ctx, verified.ID.String(), nil)
	require.NoError(t, err)

	all, err := service.List(ctx, DelayListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byRoute, err := service.List(ctx, DelayListQuery{RouteID: route.ID.String()})
	require.NoError(t, err)
	assert.Len(t, byRoute, 2)

	pending, err := service.List(ctx, DelayListQuery{RouteID: route.ID.String(), Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 10, pending[0].DelayMinutes)

	limited, err := service.List(ctx, DelayListQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = service.List(ctx, DelayListQuery{Status: "lost"})
	var badReq *models.BadRequestError
	assert.ErrorAs(t, err, &badReq)

	_, err = service.List(ctx, DelayListQuery{RouteID: "nope"})
	assert.ErrorAs(t, err, &badReq)
}

func TestDelayService_UpvoteToggle(t *testing.T) {
	service, _, route := setupDelayService(t)
	ctx := context.Background()
	report := reportDelay(t, service, route.ID, 15)

	u1, u2 := uuid.New(), uuid.New()

	result, err := service.Vote(ctx, report.ID.String(), &u1, "", models.VoteUp)
	require.NoError(t, err)
	assert.True(t, result.Voted)

	result, err = service.Vote(ctx, report.ID.String(), nil, u2.String(), models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Upvotes)
	assert.Equal(t, 2, result.ConfidenceScore())

	result, err = service.Vote(ctx, report.ID.String(), &u1, "", models.VoteUp)
	require.NoError(t, err)
	assert.False(t, result.Voted)
	assert.Equal(t, 1, result.Upvotes)

	got, err := service.Get(ctx, report.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpvoteCount)
	assert.Equal(t, 1, got.ConfidenceScore)
}

func TestDelayService_DoubleToggleRestoresVotes(t *testing.T) {
	service, _, route := setupDelayService(t)
	ctx := context.Background()
	report := reportDelay(t, service, route.ID, 15)

	other := uuid.New()
	_, err := service.Vote(ctx, report.ID.String(), &other, "", models.VoteUp)
	require.NoError(t, err)

	before, err := service.Get(ctx, report.ID.String())
	require.NoError(t, err)

	user := uuid.New()
	_, err = service.Vote(ctx, report.ID.String(), &user, "", models.VoteUp)
	require.NoError(t, err)
	_, err = service.Vote(ctx, report.ID.String(), &user, "", models.VoteUp)
	require.NoError(t, err)

	after, err := service.Get(ctx, report.ID.String())
	require.NoError(t, err)
	assert.ElementsMatch(t, before.Upvotes, after.Upvotes)
	assert.Equal(t, before.ConfidenceScore, after.ConfidenceScore)
}

func TestDelayService_DownvoteReplacesUpvote(t *testing.T) {
	service, _, route := setupDelayService(t)
	ctx := context.Background()
	report := reportDelay(t, service, route.ID, 15)
	user := uuid.New()

	_, err := service.Vote(ctx, report.ID.String(), &user, "", models.VoteUp)
	require.NoError(t, err)

	result, err := service.Vote(ctx, report.ID.String(), &user, "", models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Upvotes)
	assert.Equal(t, 1, result.Downvotes)
	assert.Equal(t, -1, result.ConfidenceScore())
}

func TestDelayService_VoteErrors(t *testing.T) {
	service, _, route := setupDelayService(t)
	ctx := context.Background()
	report := reportDelay(t, service, route.ID, 15)

	t.Run("no user", func(t *testing.T) {
		_, err := service.Vote(ctx, report.ID.String(), nil, "", models.VoteUp)
		var badReq *models.BadRequestError
		assert.ErrorAs(t, err, &badReq)
	})

	t.Run("malformed body user", func(t *testing.T) {
		_, err := service.Vote(ctx, report.ID.String(), nil, "someone", models.VoteUp)
		var badReq *models.BadRequestError
		assert.ErrorAs(t, err, &badReq)
	})

	t.Run("unknown report", func(t *testing.T) {
		user := uuid.New()
		_, err := service.Vote(ctx, uuid.NewString(), &user, "", models.VoteUp)
		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestDelayService_Moderation(t *testing.T) {
	service, _, route := setupDelayService(t)
	ctx := context.Background()
	admin := uuid.New()

	report := reportDelay(t, service, route.ID, 20)

	t.Run("resolve before verify", func(t *testing.T) {
		_, err := service.Resolve(ctx, report.ID.String())
		var conflict *models.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, models.CodeInvalidTransition, conflict.Code)
	})

	verified, err := service.Verify(ctx, report.ID.String(), &admin)
	require.NoError(t, err)
	assert.Equal(t, models.DelayVerified, verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, admin, *verified.VerifiedBy)
	assert.NotNil(t, verified.VerifiedAt)

	resolved, err := service.Resolve(ctx, report.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.DelayResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	t.Run("terminal", func(t *testing.T) {
		_, err := service.Reject(ctx, report.ID.String())
		var conflict *models.ConflictError
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("reject pending", func(t *testing.T) {
		other := reportDelay(t, service, route.ID, 3)
		rejected, err := service.Reject(ctx, other.ID.String())
		require.NoError(t, err)
		assert.Equal(t, models.DelayFalseReport, rejected.Status)
	})

	t.Run("unknown report", func(t *testing.T) {
		_, err := service.Verify(ctx, uuid.NewString(), &admin)
		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

// staleStatusStore refuses every status change, as if another moderator had won the race
type staleStatusStore struct {
	repository.DelayReportStore
}

func (s staleStatusStore) ApplyStatusChange(ctx context.Context, id uuid.UUID, change models.StatusChange) (*models.DelayReport, bool, error) {
	return nil, false, nil
}

func TestDelayService_ModerationLostRace(t *testing.T) {
	stores := newTestStores()
	route := seedRoute(t, stores, "138")
	service := NewDelayService(staleStatusStore{stores.Delays}, stores.Routes, stores.Users, testLogger())
	admin := uuid.New()

	report := reportDelay(t, service, route.ID, 20)

	_, err := service.Verify(context.Background(), report.ID.String(), &admin)
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.CodeConflict, conflict.Code)

	_, err = service.Resolve(context.Background(), report.ID.String())
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.CodeInvalidTransition, conflict.Code)
}

func TestDelayService_BulkAction(t *testing.T) {
	service, _, route := setupDelayService(t)
	ctx := context.Background()

	pending := reportDelay(t, service, route.ID, 10)
	done := reportDelay(t, service, route.ID, 10)
	_, err := service.Reject(ctx, done.ID.String())
	require.NoError(t, err)
	missing := uuid.NewString()

	resp, err := service.BulkAction(ctx, models.BulkActionRequest{
		ReportIDs: []string{pending.ID.String(), done.ID.String(), missing},
		Action:    "verify",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ActionVerify, resp.Action)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Results, 3)

	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, models.DelayVerified, resp.Results[0].Status)
	assert.False(t, resp.Results[1].Success)
	assert.Contains(t, resp.Results[1].Error, "false_report")
	assert.Equal(t, "delay report not found", resp.Results[2].Error)

	t.Run("invalid request", func(t *testing.T) {
		_, err := service.BulkAction(ctx, models.BulkActionRequest{Action: "archive"}, nil)
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

var delayRowColumns = []string{
	"id", "route_id", "reported_by", "delay_minutes", "reason", "description",
	"location_lat", "location_lng", "stop_name", "affected_direction", "upvotes", "downvotes",
	"status", "severity", "verified_by", "verified_at", "resolved_at", "created_at", "updated_at",
}

func TestDelayReportRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDelayReportRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		id, routeID, voter := uuid.New(), uuid.New(), uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM delay_reports WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(delayRowColumns).AddRow(
				id.String(), routeID.String(), nil, 45, "traffic", "Jam at junction",
				6.91, 79.86, "Borella", "inbound", []byte("{"+voter.String()+"}"), []byte("{}"),
				"pending", "high", nil, nil, nil, now, now,
			))

		report, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, routeID, report.RouteID)
		assert.Nil(t, report.ReportedBy)
		require.NotNil(t, report.Location)
		assert.Equal(t, 6.91, report.Location.Lat)
		assert.Equal(t, models.UUIDSet{voter}, report.Upvotes)
		assert.Empty(t, report.Downvotes)
		assert.Equal(t, models.SeverityHigh, report.Severity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM delay_reports WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, models.ErrNoRecord)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelayReportRepository_ToggleVote(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDelayReportRepository(db)
	ctx := context.Background()

	t.Run("Upvote", func(t *testing.T) {
		id, user := uuid.New(), uuid.New()

		mock.ExpectQuery(`UPDATE delay_reports SET upvotes = CASE (.+) downvotes = array_remove\(downvotes, \$2::uuid\)`).
			WithArgs(id, user).
			WillReturnRows(sqlmock.NewRows([]string{"upvotes", "downvotes", "voted"}).AddRow(3, 1, true))

		result, err := repo.ToggleVote(ctx, id, user, models.VoteUp)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Upvotes)
		assert.Equal(t, 1, result.Downvotes)
		assert.True(t, result.Voted)
		assert.Equal(t, 2, result.ConfidenceScore())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Downvote", func(t *testing.T) {
		id, user := uuid.New(), uuid.New()

		mock.ExpectQuery(`UPDATE delay_reports SET downvotes = CASE (.+) upvotes = array_remove\(upvotes, \$2::uuid\)`).
			WithArgs(id, user).
			WillReturnRows(sqlmock.NewRows([]string{"upvotes", "downvotes", "voted"}).AddRow(0, 0, false))

		result, err := repo.ToggleVote(ctx, id, user, models.VoteDown)
		require.NoError(t, err)
		assert.False(t, result.Voted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE delay_reports SET upvotes`).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.ToggleVote(ctx, uuid.New(), uuid.New(), models.VoteUp)
		assert.ErrorIs(t, err, models.ErrNoRecord)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelayReportRepository_ApplyStatusChange(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDelayReportRepository(db)
	ctx := context.Background()

	admin := uuid.New()
	change := models.StatusChange{
		From:       []models.DelayStatus{models.DelayPending},
		To:         models.DelayVerified,
		VerifiedBy: &admin,
		At:         time.Now(),
	}

	t.Run("Applied", func(t *testing.T) {
		id, routeID := uuid.New(), uuid.New()
		now := time.Now()

		mock.ExpectQuery(`UPDATE delay_reports SET status = \$2,(.+) WHERE id = \$1 AND status = ANY\(\$7::text\[\]\)`).
			WithArgs(id, "verified", admin, sqlmock.AnyArg(), nil, sqlmock.AnyArg(), `{"pending"}`).
			WillReturnRows(sqlmock.NewRows(delayRowColumns).AddRow(
				id.String(), routeID.String(), nil, 12, "other", "",
				nil, nil, "", "", []byte("{}"), []byte("{}"),
				"verified", "medium", admin.String(), now, nil, now, now,
			))

		report, ok, err := repo.ApplyStatusChange(ctx, id, change)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.DelayVerified, report.Status)
		require.NotNil(t, report.VerifiedBy)
		assert.Equal(t, admin, *report.VerifiedBy)
		assert.Nil(t, report.Location)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Status Does Not Allow Change", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(`UPDATE delay_reports SET status`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		report, ok, err := repo.ApplyStatusChange(ctx, id, change)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, report)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Report", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(`UPDATE delay_reports SET status`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, ok, err := repo.ApplyStatusChange(ctx, id, change)
		assert.False(t, ok)
		assert.ErrorIs(t, err, models.ErrNoRecord)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelayReportRepository_WeekdayStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDelayReportRepository(db)

	since := time.Now().AddDate(0, 0, -7)

	mock.ExpectQuery(`EXTRACT\(DOW FROM created_at AT TIME ZONE 'UTC'\)::int AS weekday`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"weekday", "count", "total_minutes"}).
			AddRow(1, 4, 60).
			AddRow(5, 2, 90))

	stats, err := repo.WeekdayStats(context.Background(), &since)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, time.Monday, stats[0].Weekday)
	assert.Equal(t, 4, stats[0].Count)
	assert.Equal(t, time.Friday, stats[1].Weekday)
	assert.Equal(t, 90, stats[1].TotalMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelayReportRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDelayReportRepository(db)

	routeID := uuid.New()

	mock.ExpectQuery(`WHERE route_id = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs(routeID, "pending", 50).
		WillReturnRows(sqlmock.NewRows(delayRowColumns))

	reports, err := repo.List(context.Background(), models.DelayFilter{
		RouteID: &routeID,
		Status:  models.DelayPending,
		Limit:   50,
	})
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.NoError(t, mock.ExpectationsWereMet())
}

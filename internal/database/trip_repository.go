package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

const tripColumns = `id, user_id, route_id, route_number, route_name, start_stop, end_stop,
	scheduled_time, actual_time, duration, status, delay_minutes, created_at`

// TripRepository handles trip history database operations
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{db: db}
}

// Create inserts a trip
func (r *TripRepository) Create(ctx context.Context, trip *models.TripHistory) error {
	query := `
		INSERT INTO trip_history (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		trip.ID,
		trip.UserID,
		trip.RouteID,
		trip.RouteNumber,
		trip.RouteName,
		trip.StartStop,
		trip.EndStop,
		trip.ScheduledTime,
		trip.ActualTime,
		trip.Duration,
		trip.Status,
		trip.DelayMinutes,
		trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", translate(err))
	}

	return nil
}

// ListByUser returns the user's trips newest first; limit <= 0 returns all of them
func (r *TripRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.TripHistory, error) {
	trips := []models.TripHistory{}

	query := `
		SELECT ` + tripColumns + `
		FROM trip_history
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	if err := r.db.SelectContext(ctx, &trips, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	return trips, nil
}

// CompletionSince counts completed trips and the on-time ones among them
func (r *TripRepository) CompletionSince(ctx context.Context, since *time.Time) (*models.TripCompletion, error) {
	var completion models.TripCompletion

	query := `
		SELECT COUNT(*) AS completed,
		       COUNT(*) FILTER (WHERE delay_minutes <= $2) AS on_time
		FROM trip_history
		WHERE status = 'completed'
		  AND ($1::timestamptz IS NULL OR created_at >= $1::timestamptz)
	`

	if err := r.db.GetContext(ctx, &completion, query, since, models.OnTimeThresholdMinutes); err != nil {
		return nil, fmt.Errorf("failed to count completed trips: %w", err)
	}

	return &completion, nil
}

// TopTraveledRoutes ranks routes by completed trips since the given time
func (r *TripRepository) TopTraveledRoutes(ctx context.Context, since *time.Time, limit int) ([]models.RouteCount, error) {
	counts := []models.RouteCount{}

	query := `
		SELECT t.route_id, r.route_number, r.name, COUNT(*) AS count
		FROM trip_history t
		JOIN routes r ON r.id = t.route_id
		WHERE t.status = 'completed'
		  AND ($1::timestamptz IS NULL OR t.created_at >= $1::timestamptz)
		GROUP BY t.route_id, r.route_number, r.name
		ORDER BY count DESC, r.route_number ASC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &counts, query, since, limit); err != nil {
		return nil, fmt.Errorf("failed to get top traveled routes: %w", err)
	}

	return counts, nil
}

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

const delayReportColumns = `id, route_id, reported_by, delay_minutes, reason, description,
	location_lat, location_lng, stop_name, affected_direction, upvotes, downvotes,
	status, severity, verified_by, verified_at, resolved_at, created_at, updated_at`

// delayReportRow flattens the optional location into two nullable columns
type delayReportRow struct {
	models.DelayReport
	LocationLat *float64 `db:"location_lat"`
	LocationLng *float64 `db:"location_lng"`
}

func (row *delayReportRow) report() *models.DelayReport {
	report := row.DelayReport
	if row.LocationLat != nil && row.LocationLng != nil {
		report.Location = &models.Coordinates{Lat: *row.LocationLat, Lng: *row.LocationLng}
	}
	if report.Upvotes == nil {
		report.Upvotes = models.UUIDSet{}
	}
	if report.Downvotes == nil {
		report.Downvotes = models.UUIDSet{}
	}
	return &report
}

// DelayReportRepository handles delay report database operations
type DelayReportRepository struct {
	db DB
}

// NewDelayReportRepository creates a new delay report repository
func NewDelayReportRepository(db DB) *DelayReportRepository {
	return &DelayReportRepository{db: db}
}

// Create inserts a new delay report
func (r *DelayReportRepository) Create(ctx context.Context, report *models.DelayReport) error {
	var lat, lng *float64
	if report.Location != nil {
		lat, lng = &report.Location.Lat, &report.Location.Lng
	}

	query := `
		INSERT INTO delay_reports (` + delayReportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.RouteID,
		report.ReportedBy,
		report.DelayMinutes,
		report.Reason,
		report.Description,
		lat,
		lng,
		report.StopName,
		report.AffectedDirection,
		report.Upvotes,
		report.Downvotes,
		report.Status,
		report.Severity,
		report.VerifiedBy,
		report.VerifiedAt,
		report.ResolvedAt,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create delay report: %w", translate(err))
	}

	return nil
}

// GetByID retrieves a delay report by ID
func (r *DelayReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DelayReport, error) {
	var row delayReportRow

	query := `SELECT ` + delayReportColumns + ` FROM delay_reports WHERE id = $1`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("failed to get delay report by ID: %w", translate(err))
	}

	return row.report(), nil
}

// List returns reports matching filter, newest first
func (r *DelayReportRepository) List(ctx context.Context, filter models.DelayFilter) ([]models.DelayReport, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.RouteID != nil {
		args = append(args, *filter.RouteID)
		conditions = append(conditions, fmt.Sprintf("route_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	query := fmt.Sprintf(`
		SELECT %s FROM delay_reports
		%s
		ORDER BY created_at DESC
		LIMIT $%d
	`, delayReportColumns, where, len(args))

	var rows []delayReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list delay reports: %w", err)
	}

	reports := make([]models.DelayReport, 0, len(rows))
	for i := range rows {
		reports = append(reports, *rows[i].report())
	}

	return reports, nil
}

// ToggleVote adds or removes userID from one vote set in a single UPDATE.
// Every SET expression reads the pre-update row, so adding to one set and
// clearing the other happen together.
func (r *DelayReportRepository) ToggleVote(ctx context.Context, id, userID uuid.UUID, direction models.VoteDirection) (*models.VoteResult, error) {
	own, other := "upvotes", "downvotes"
	if direction == models.VoteDown {
		own, other = "downvotes", "upvotes"
	}

	query := fmt.Sprintf(`
		UPDATE delay_reports SET
			%[1]s = CASE
				WHEN $2::uuid = ANY(%[1]s) THEN array_remove(%[1]s, $2::uuid)
				ELSE array_append(%[1]s, $2::uuid)
			END,
			%[2]s = array_remove(%[2]s, $2::uuid),
			updated_at = NOW()
		WHERE id = $1
		RETURNING cardinality(upvotes), cardinality(downvotes), $2::uuid = ANY(%[1]s)
	`, own, other)

	var result models.VoteResult
	err := r.db.QueryRowxContext(ctx, query, id, userID).Scan(&result.Upvotes, &result.Downvotes, &result.Voted)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle vote: %w", translate(err))
	}

	return &result, nil
}

// ApplyStatusChange updates the status only when the current status is one of change.From
func (r *DelayReportRepository) ApplyStatusChange(ctx context.Context, id uuid.UUID, change models.StatusChange) (*models.DelayReport, bool, error) {
	var verifiedBy *uuid.UUID
	var verifiedAt, resolvedAt *time.Time
	switch change.To {
	case models.DelayVerified:
		verifiedBy, verifiedAt = change.VerifiedBy, &change.At
	case models.DelayResolved:
		resolvedAt = &change.At
	}

	from := make([]string, len(change.From))
	for i, s := range change.From {
		from[i] = string(s)
	}

	query := `
		UPDATE delay_reports SET
			status = $2,
			verified_by = COALESCE($3, verified_by),
			verified_at = COALESCE($4, verified_at),
			resolved_at = COALESCE($5, resolved_at),
			updated_at = $6
		WHERE id = $1 AND status = ANY($7::text[])
		RETURNING ` + delayReportColumns

	var row delayReportRow
	err := r.db.GetContext(ctx, &row, query,
		id, change.To, verifiedBy, verifiedAt, resolvedAt, change.At, stringArray(from))
	if err == nil {
		return row.report(), true, nil
	}
	if !errors.Is(translate(err), models.ErrNoRecord) {
		return nil, false, fmt.Errorf("failed to change delay report status: %w", err)
	}

	// No row matched: either the report is missing or its status does not allow the change
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM delay_reports WHERE id = $1)`, id); err != nil {
		return nil, false, fmt.Errorf("failed to check delay report: %w", err)
	}
	if !exists {
		return nil, false, fmt.Errorf("failed to change delay report status: %w", models.ErrNoRecord)
	}

	return nil, false, nil
}

// CountByStatus returns the number of reports currently in status
func (r *DelayReportRepository) CountByStatus(ctx context.Context, status models.DelayStatus) (int, error) {
	var count int

	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM delay_reports WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("failed to count delay reports: %w", err)
	}

	return count, nil
}

// WeekdayStats groups reports created since the given time by UTC weekday (Sunday = 0).
// A nil since covers every report.
func (r *DelayReportRepository) WeekdayStats(ctx context.Context, since *time.Time) ([]models.WeekdayDelayStat, error) {
	stats := []models.WeekdayDelayStat{}

	query := `
		SELECT EXTRACT(DOW FROM created_at AT TIME ZONE 'UTC')::int AS weekday,
		       COUNT(*) AS count,
		       COALESCE(SUM(delay_minutes), 0) AS total_minutes
		FROM delay_reports
		WHERE ($1::timestamptz IS NULL OR created_at >= $1::timestamptz)
		GROUP BY weekday
		ORDER BY weekday
	`

	if err := r.db.SelectContext(ctx, &stats, query, since); err != nil {
		return nil, fmt.Errorf("failed to get weekday delay stats: %w", err)
	}

	return stats, nil
}

// TopDelayedRoutes ranks routes by the number of reports created since the given time
func (r *DelayReportRepository) TopDelayedRoutes(ctx context.Context, since *time.Time, limit int) ([]models.RouteCount, error) {
	counts := []models.RouteCount{}

	query := `
		SELECT d.route_id, r.route_number, r.name, COUNT(*) AS count
		FROM delay_reports d
		JOIN routes r ON r.id = d.route_id
		WHERE ($1::timestamptz IS NULL OR d.created_at >= $1::timestamptz)
		GROUP BY d.route_id, r.route_number, r.name
		ORDER BY count DESC, r.route_number ASC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &counts, query, since, limit); err != nil {
		return nil, fmt.Errorf("failed to get top delayed routes: %w", err)
	}

	return counts, nil
}

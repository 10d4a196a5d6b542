package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

const routeColumns = `id, route_number, name, description, transport_type, stops, schedule, fare,
	operator, color, distance_km, estimated_duration, popularity_score, is_active,
	created_at, updated_at`

// RouteRepository handles route database operations
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create inserts a new route
func (r *RouteRepository) Create(ctx context.Context, route *models.Route) error {
	query := `
		INSERT INTO routes (` + routeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		route.ID,
		route.RouteNumber,
		route.Name,
		route.Description,
		route.TransportType,
		route.Stops,
		route.Schedule,
		route.Fare,
		route.Operator,
		route.Color,
		route.DistanceKm,
		route.EstimatedDuration,
		route.PopularityScore,
		route.IsActive,
		route.CreatedAt,
		route.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", translate(err))
	}

	return nil
}

// Update overwrites the mutable fields of a route; popularity is left untouched
func (r *RouteRepository) Update(ctx context.Context, route *models.Route) error {
	query := `
		UPDATE routes SET
			route_number = $2,
			name = $3,
			description = $4,
			transport_type = $5,
			stops = $6,
			schedule = $7,
			fare = $8,
			operator = $9,
			color = $10,
			distance_km = $11,
			estimated_duration = $12,
			is_active = $13,
			updated_at = $14
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		route.ID,
		route.RouteNumber,
		route.Name,
		route.Description,
		route.TransportType,
		route.Stops,
		route.Schedule,
		route.Fare,
		route.Operator,
		route.Color,
		route.DistanceKm,
		route.EstimatedDuration,
		route.IsActive,
		route.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update route: %w", translate(err))
	}

	return requireAffected(result, "update route")
}

// GetByID retrieves a route by ID regardless of its active flag
func (r *RouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	var route models.Route

	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`

	if err := r.db.GetContext(ctx, &route, query, id); err != nil {
		return nil, fmt.Errorf("failed to get route by ID: %w", translate(err))
	}

	return &route, nil
}

// GetSummaries returns summaries of the given routes keyed by id
func (r *RouteRepository) GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RouteSummary, error) {
	summaries := make(map[uuid.UUID]models.RouteSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	var rows []models.RouteSummary
	query := `
		SELECT id, route_number, name, transport_type
		FROM routes
		WHERE id = ANY($1::uuid[])
	`

	if err := r.db.SelectContext(ctx, &rows, query, uuidArray(ids)); err != nil {
		return nil, fmt.Errorf("failed to get route summaries: %w", err)
	}

	for _, row := range rows {
		summaries[row.ID] = row
	}

	return summaries, nil
}

// ExistsByNumber checks whether any route, active or not, already uses routeNumber
func (r *RouteRepository) ExistsByNumber(ctx context.Context, routeNumber string, excludeID *uuid.UUID) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS (
			SELECT 1 FROM routes
			WHERE route_number = $1 AND ($2::uuid IS NULL OR id <> $2::uuid)
		)
	`

	if err := r.db.GetContext(ctx, &exists, query, routeNumber, excludeID); err != nil {
		return false, fmt.Errorf("failed to check route number: %w", err)
	}

	return exists, nil
}

// List returns one page of routes and the total number of matching routes
func (r *RouteRepository) List(ctx context.Context, filter models.RouteFilter) ([]models.Route, int, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.TransportType != "" {
		args = append(args, filter.TransportType)
		conditions = append(conditions, fmt.Sprintf("transport_type = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM routes `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count routes: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM routes
		%s
		ORDER BY popularity_score DESC, route_number ASC
		LIMIT $%d OFFSET $%d
	`, routeColumns, where, len(args)-1, len(args))

	routes := []models.Route{}
	if err := r.db.SelectContext(ctx, &routes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list routes: %w", err)
	}

	return routes, total, nil
}

// Search matches term against route number, name and stop names of active routes
func (r *RouteRepository) Search(ctx context.Context, term string, transportType models.TransportType, limit int) ([]models.Route, error) {
	conditions := []string{"is_active = TRUE"}
	var args []interface{}

	if term != "" {
		args = append(args, likePattern(term))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(`(
			route_number ILIKE $%[1]d
			OR name ILIKE $%[1]d
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(stops) AS stop
				WHERE stop->>'name' ILIKE $%[1]d
			)
		)`, n))
	}
	if transportType != "" {
		args = append(args, transportType)
		conditions = append(conditions, fmt.Sprintf("transport_type = $%d", len(args)))
	}

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT %s FROM routes
		WHERE %s
		ORDER BY popularity_score DESC, route_number ASC
		LIMIT $%d
	`, routeColumns, strings.Join(conditions, " AND "), len(args))

	routes := []models.Route{}
	if err := r.db.SelectContext(ctx, &routes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search routes: %w", err)
	}

	return routes, nil
}

// ListActive returns every active route
func (r *RouteRepository) ListActive(ctx context.Context) ([]models.Route, error) {
	routes := []models.Route{}

	query := `SELECT ` + routeColumns + ` FROM routes WHERE is_active = TRUE`

	if err := r.db.SelectContext(ctx, &routes, query); err != nil {
		return nil, fmt.Errorf("failed to list active routes: %w", err)
	}

	return routes, nil
}

// IncrementPopularity adds by to the popularity score of every route in ids
func (r *RouteRepository) IncrementPopularity(ctx context.Context, ids []uuid.UUID, by int) error {
	if len(ids) == 0 || by == 0 {
		return nil
	}

	query := `
		UPDATE routes
		SET popularity_score = popularity_score + $2
		WHERE id = ANY($1::uuid[])
	`

	if _, err := r.db.ExecContext(ctx, query, uuidArray(ids), by); err != nil {
		return fmt.Errorf("failed to increment popularity: %w", err)
	}

	return nil
}

// SetActive flips the active flag of a route
func (r *RouteRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE routes SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to set route active flag: %w", err)
	}

	return requireAffected(result, "set route active flag")
}

// CountActive returns the number of active routes
func (r *RouteRepository) CountActive(ctx context.Context) (int, error) {
	var count int

	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM routes WHERE is_active = TRUE`); err != nil {
		return 0, fmt.Errorf("failed to count active routes: %w", err)
	}

	return count, nil
}

// TransportDistribution counts active routes per transport type, largest first
func (r *RouteRepository) TransportDistribution(ctx context.Context) ([]models.TransportTypeCount, error) {
	counts := []models.TransportTypeCount{}

	query := `
		SELECT transport_type, COUNT(*) AS count
		FROM routes
		WHERE is_active = TRUE
		GROUP BY transport_type
		ORDER BY count DESC, transport_type ASC
	`

	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to get transport distribution: %w", err)
	}

	return counts, nil
}

// Package repository declares the storage ports used by the services.
// internal/database implements them on PostgreSQL and internal/memstore in memory.
//
// Implementations return models.ErrNoRecord when a single record lookup
// misses and models.ErrDuplicateKey when a unique constraint is violated.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// RouteStore persists routes
type RouteStore interface {
	Create(ctx context.Context, route *models.Route) error
	Update(ctx context.Context, route *models.Route) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Route, error)
	GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RouteSummary, error)
	ExistsByNumber(ctx context.Context, routeNumber string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter models.RouteFilter) ([]models.Route, int, error)
	// Search matches term case-insensitively against route number, name and stop names
	// of active routes, ordered by popularity. An empty term matches every active route.
	Search(ctx context.Context, term string, transportType models.TransportType, limit int) ([]models.Route, error)
	ListActive(ctx context.Context) ([]models.Route, error)
	// IncrementPopularity adds by to the popularity score of every route in ids in one atomic step
	IncrementPopularity(ctx context.Context, ids []uuid.UUID, by int) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	CountActive(ctx context.Context) (int, error)
	TransportDistribution(ctx context.Context) ([]models.TransportTypeCount, error)
}

// DelayReportStore persists delay reports
type DelayReportStore interface {
	Create(ctx context.Context, report *models.DelayReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DelayReport, error)
	List(ctx context.Context, filter models.DelayFilter) ([]models.DelayReport, error)
	// ToggleVote adds or removes userID from the chosen vote set in one atomic step.
	// Adding a vote removes the user's vote in the opposite set.
	ToggleVote(ctx context.Context, id, userID uuid.UUID, direction models.VoteDirection) (*models.VoteResult, error)
	// ApplyStatusChange moves the report to change.To only when its current status is in change.From.
	// It returns the updated report, or ok=false when the report exists but is in another status.
	ApplyStatusChange(ctx context.Context, id uuid.UUID, change models.StatusChange) (report *models.DelayReport, ok bool, err error)

	CountByStatus(ctx context.Context, status models.DelayStatus) (int, error)
	WeekdayStats(ctx context.Context, since *time.Time) ([]models.WeekdayDelayStat, error)
	TopDelayedRoutes(ctx context.Context, since *time.Time, limit int) ([]models.RouteCount, error)
}

// FavoriteStore persists favorite routes
type FavoriteStore interface {
	Create(ctx context.Context, favorite *models.FavoriteRoute) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.FavoriteRoute, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// TripStore persists trip history
type TripStore interface {
	Create(ctx context.Context, trip *models.TripHistory) error
	// ListByUser returns the user's trips newest first; limit <= 0 returns all of them
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.TripHistory, error)

	CompletionSince(ctx context.Context, since *time.Time) (*models.TripCompletion, error)
	TopTraveledRoutes(ctx context.Context, since *time.Time, limit int) ([]models.RouteCount, error)
}

// UserStore persists user accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.UserSummary, error)
	Count(ctx context.Context) (int, error)
}

// Stores bundles every store the services need
type Stores struct {
	Routes    RouteStore
	Delays    DelayReportStore
	Favorites FavoriteStore
	Trips     TripStore
	Users     UserStore

	// Ping reports store health; nil means always healthy
	Ping func(ctx context.Context) error
	// Close releases the backing connection; may be nil
	Close func() error
}

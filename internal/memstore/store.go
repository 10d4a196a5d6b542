// Package memstore keeps every entity in process memory behind one RWMutex.
// It backs the services when no database is configured and in tests.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

var (
	_ repository.RouteStore       = (*RouteStore)(nil)
	_ repository.DelayReportStore = (*DelayReportStore)(nil)
	_ repository.FavoriteStore    = (*FavoriteStore)(nil)
	_ repository.TripStore        = (*TripStore)(nil)
	_ repository.UserStore        = (*UserStore)(nil)
)

// Store holds all collections. Each store method takes the lock once,
// so single-record updates are atomic with respect to each other.
type Store struct {
	mu sync.RWMutex

	routes    map[uuid.UUID]*models.Route
	delays    map[uuid.UUID]*models.DelayReport
	favorites map[uuid.UUID]*models.FavoriteRoute
	trips     map[uuid.UUID]*models.TripHistory
	users     map[uuid.UUID]*models.User
}

// New creates an empty store
func New() *Store {
	return &Store{
		routes:    make(map[uuid.UUID]*models.Route),
		delays:    make(map[uuid.UUID]*models.DelayReport),
		favorites: make(map[uuid.UUID]*models.FavoriteRoute),
		trips:     make(map[uuid.UUID]*models.TripHistory),
		users:     make(map[uuid.UUID]*models.User),
	}
}

// Stores exposes the store through the repository ports
func (s *Store) Stores() *repository.Stores {
	return &repository.Stores{
		Routes:    &RouteStore{s: s},
		Delays:    &DelayReportStore{s: s},
		Favorites: &FavoriteStore{s: s},
		Trips:     &TripStore{s: s},
		Users:     &UserStore{s: s},
		Ping:      func(context.Context) error { return nil },
	}
}

func copyRoute(r *models.Route) *models.Route {
	out := *r
	out.Stops = append(models.Stops{}, r.Stops...)
	out.Schedule = append(models.Schedule{}, r.Schedule...)
	return &out
}

func copyReport(r *models.DelayReport) *models.DelayReport {
	out := *r
	out.Upvotes = append(models.UUIDSet{}, r.Upvotes...)
	out.Downvotes = append(models.UUIDSet{}, r.Downvotes...)
	if r.Location != nil {
		loc := *r.Location
		out.Location = &loc
	}
	return &out
}

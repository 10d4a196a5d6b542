package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// RouteStore implements repository.RouteStore
type RouteStore struct {
	s *Store
}

func (r *RouteStore) Create(ctx context.Context, route *models.Route) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.routes[route.ID]; ok {
		return models.ErrDuplicateKey
	}
	if r.numberTaken(route.RouteNumber, route.ID) {
		return models.ErrDuplicateKey
	}
	r.s.routes[route.ID] = copyRoute(route)
	return nil
}

func (r *RouteStore) Update(ctx context.Context, route *models.Route) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.routes[route.ID]
	if !ok {
		return models.ErrNoRecord
	}
	if r.numberTaken(route.RouteNumber, route.ID) {
		return models.ErrDuplicateKey
	}

	updated := copyRoute(route)
	updated.PopularityScore = existing.PopularityScore
	updated.CreatedAt = existing.CreatedAt
	r.s.routes[route.ID] = updated
	return nil
}

func (r *RouteStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	route, ok := r.s.routes[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	return copyRoute(route), nil
}

func (r *RouteStore) GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RouteSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[uuid.UUID]models.RouteSummary, len(ids))
	for _, id := range ids {
		if route, ok := r.s.routes[id]; ok {
			out[id] = *route.Summary()
		}
	}
	return out, nil
}

func (r *RouteStore) ExistsByNumber(ctx context.Context, routeNumber string, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	exclude := uuid.Nil
	if excludeID != nil {
		exclude = *excludeID
	}
	return r.numberTaken(routeNumber, exclude), nil
}

// numberTaken must be called with the lock held
func (r *RouteStore) numberTaken(routeNumber string, exclude uuid.UUID) bool {
	for id, route := range r.s.routes {
		if id != exclude && route.RouteNumber == routeNumber {
			return true
		}
	}
	return false
}

func (r *RouteStore) List(ctx context.Context, filter models.RouteFilter) ([]models.Route, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.collect(func(route *models.Route) bool {
		if filter.ActiveOnly && !route.IsActive {
			return false
		}
		return filter.TransportType == "" || route.TransportType == filter.TransportType
	})

	total := len(matched)
	start := filter.Offset()
	if start < 0 || start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}

	return matched[start:end], total, nil
}

func (r *RouteStore) Search(ctx context.Context, term string, transportType models.TransportType, limit int) ([]models.Route, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(term)
	matched := r.collect(func(route *models.Route) bool {
		if !route.IsActive {
			return false
		}
		if transportType != "" && route.TransportType != transportType {
			return false
		}
		return needle == "" || routeMatches(route, needle)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func routeMatches(route *models.Route, needle string) bool {
	if strings.Contains(strings.ToLower(route.RouteNumber), needle) ||
		strings.Contains(strings.ToLower(route.Name), needle) {
		return true
	}
	for _, stop := range route.Stops {
		if strings.Contains(strings.ToLower(stop.Name), needle) {
			return true
		}
	}
	return false
}

func (r *RouteStore) ListActive(ctx context.Context) ([]models.Route, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(func(route *models.Route) bool { return route.IsActive }), nil
}

// collect returns copies of the routes accepted by keep, by popularity then route number.
// Must be called with the lock held.
func (r *RouteStore) collect(keep func(*models.Route) bool) []models.Route {
	out := []models.Route{}
	for _, route := range r.s.routes {
		if keep(route) {
			out = append(out, *copyRoute(route))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PopularityScore != out[j].PopularityScore {
			return out[i].PopularityScore > out[j].PopularityScore
		}
		return out[i].RouteNumber < out[j].RouteNumber
	})
	return out
}

func (r *RouteStore) IncrementPopularity(ctx context.Context, ids []uuid.UUID, by int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if route, ok := r.s.routes[id]; ok {
			route.PopularityScore += by
		}
	}
	return nil
}

func (r *RouteStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	route, ok := r.s.routes[id]
	if !ok {
		return models.ErrNoRecord
	}
	route.IsActive = active
	route.UpdatedAt = time.Now()
	return nil
}

func (r *RouteStore) CountActive(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, route := range r.s.routes {
		if route.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *RouteStore) TransportDistribution(ctx context.Context) ([]models.TransportTypeCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[models.TransportType]int{}
	for _, route := range r.s.routes {
		if route.IsActive {
			counts[route.TransportType]++
		}
	}

	out := make([]models.TransportTypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, models.TransportTypeCount{TransportType: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].TransportType < out[j].TransportType
	})
	return out, nil
}

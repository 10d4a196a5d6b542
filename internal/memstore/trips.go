package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// TripStore implements repository.TripStore
type TripStore struct {
	s *Store
}

func (t *TripStore) Create(ctx context.Context, trip *models.TripHistory) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.trips[trip.ID]; ok {
		return models.ErrDuplicateKey
	}
	stored := *trip
	t.s.trips[trip.ID] = &stored
	return nil
}

func (t *TripStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.TripHistory, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	out := []models.TripHistory{}
	for _, trip := range t.s.trips {
		if trip.UserID == userID {
			out = append(out, *trip)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *TripStore) CompletionSince(ctx context.Context, since *time.Time) (*models.TripCompletion, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var c models.TripCompletion
	for _, trip := range t.s.trips {
		if !completedSince(trip, since) {
			continue
		}
		c.Completed++
		if trip.DelayMinutes <= models.OnTimeThresholdMinutes {
			c.OnTime++
		}
	}
	return &c, nil
}

func (t *TripStore) TopTraveledRoutes(ctx context.Context, since *time.Time, limit int) ([]models.RouteCount, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	counts := map[uuid.UUID]int{}
	for _, trip := range t.s.trips {
		if completedSince(trip, since) {
			counts[trip.RouteID]++
		}
	}
	return t.s.rankRoutes(counts, limit), nil
}

func completedSince(trip *models.TripHistory, since *time.Time) bool {
	if trip.Status != models.TripCompleted {
		return false
	}
	return since == nil || !trip.CreatedAt.Before(*since)
}

package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// FavoriteStore implements repository.FavoriteStore
type FavoriteStore struct {
	s *Store
}

func (f *FavoriteStore) Create(ctx context.Context, favorite *models.FavoriteRoute) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, existing := range f.s.favorites {
		if existing.UserID == favorite.UserID && existing.RouteID == favorite.RouteID {
			return models.ErrDuplicateKey
		}
	}
	stored := *favorite
	f.s.favorites[favorite.ID] = &stored
	return nil
}

func (f *FavoriteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.FavoriteRoute, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	out := []models.FavoriteRoute{}
	for _, favorite := range f.s.favorites {
		if favorite.UserID == userID {
			out = append(out, *favorite)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AddedAt.After(out[j].AddedAt)
	})
	return out, nil
}

func (f *FavoriteStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	favorite, ok := f.s.favorites[id]
	if !ok || favorite.UserID != userID {
		return models.ErrNoRecord
	}
	delete(f.s.favorites, id)
	return nil
}

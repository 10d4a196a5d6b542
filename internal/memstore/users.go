package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// UserStore implements repository.UserStore
type UserStore struct {
	s *Store
}

func (u *UserStore) Create(ctx context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for id, existing := range u.s.users {
		if id == user.ID || existing.Email == user.Email {
			return models.ErrDuplicateKey
		}
	}
	stored := *user
	u.s.users[user.ID] = &stored
	return nil
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	out := *user
	return &out, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, user := range u.s.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, models.ErrNoRecord
}

func (u *UserStore) GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.UserSummary, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	out := make(map[uuid.UUID]models.UserSummary, len(ids))
	for _, id := range ids {
		if user, ok := u.s.users[id]; ok {
			out[id] = *user.Summary()
		}
	}
	return out, nil
}

func (u *UserStore) Count(ctx context.Context) (int, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	return len(u.s.users), nil
}

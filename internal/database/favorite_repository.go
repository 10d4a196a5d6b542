package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// FavoriteRepository handles favorite route database operations
type FavoriteRepository struct {
	db DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Create stores a favorite; a second favorite of the same route by the same user is a duplicate key
func (r *FavoriteRepository) Create(ctx context.Context, favorite *models.FavoriteRoute) error {
	query := `
		INSERT INTO favorite_routes (id, user_id, route_id, note, added_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		favorite.ID,
		favorite.UserID,
		favorite.RouteID,
		favorite.Note,
		favorite.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create favorite: %w", translate(err))
	}

	return nil
}

// ListByUser returns the user's favorites, newest first
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.FavoriteRoute, error) {
	favorites := []models.FavoriteRoute{}

	query := `
		SELECT id, user_id, route_id, note, added_at
		FROM favorite_routes
		WHERE user_id = $1
		ORDER BY added_at DESC
	`

	if err := r.db.SelectContext(ctx, &favorites, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return favorites, nil
}

// Delete removes a favorite owned by userID
func (r *FavoriteRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM favorite_routes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	return requireAffected(result, "delete favorite")
}

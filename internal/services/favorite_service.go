package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

// FavoriteService manages a user's bookmarked routes
type FavoriteService struct {
	favorites repository.FavoriteStore
	routes    repository.RouteStore
	logger    *logrus.Logger
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(favorites repository.FavoriteStore, routes repository.RouteStore, logger *logrus.Logger) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		routes:    routes,
		logger:    logger,
	}
}

// Add bookmarks a route for the user
func (s *FavoriteService) Add(ctx context.Context, userID uuid.UUID, req models.AddFavoriteRequest) (*models.FavoriteView, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	routeID, err := parseResourceID(req.RouteID, "route")
	if err != nil {
		return nil, err
	}
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, storeError(err, "route", "get route")
	}

	favorite := &models.FavoriteRoute{
		ID:      uuid.New(),
		UserID:  userID,
		RouteID: route.ID,
		AddedAt: time.Now().UTC(),
		Note:    strings.TrimSpace(req.Note),
	}
	if err := s.favorites.Create(ctx, favorite); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			return nil, models.ErrConflict("route is already in favorites")
		}
		return nil, storeError(err, "favorite", "create favorite")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"route_id": route.ID,
	}).Info("Favorite added")

	return &models.FavoriteView{FavoriteRoute: *favorite, Route: route.Summary()}, nil
}

// List returns the user's favorites newest first
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.FavoriteView, error) {
	favorites, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "favorite", "list favorites")
	}

	ids := make([]uuid.UUID, len(favorites))
	for i, f := range favorites {
		ids[i] = f.RouteID
	}
	summaries, err := s.routes.GetSummaries(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, storeError(err, "route", "load route summaries")
	}

	views := make([]models.FavoriteView, 0, len(favorites))
	for _, f := range favorites {
		view := models.FavoriteView{FavoriteRoute: f}
		if summary, ok := summaries[f.RouteID]; ok {
			view.Route = &summary
		}
		views = append(views, view)
	}
	return views, nil
}

// Remove deletes one of the user's favorites; favorites of other users are not found
func (s *FavoriteService) Remove(ctx context.Context, userID uuid.UUID, rawID string) error {
	id, err := parseResourceID(rawID, "favorite")
	if err != nil {
		return err
	}

	if err := s.favorites.Delete(ctx, id, userID); err != nil {
		return storeError(err, "favorite", "delete favorite")
	}
	return nil
}

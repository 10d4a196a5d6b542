package models

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteRoute is a user's bookmark of a route
type FavoriteRoute struct {
	ID      uuid.UUID `json:"id" db:"id"`
	UserID  uuid.UUID `json:"userId" db:"user_id"`
	RouteID uuid.UUID `json:"routeId" db:"route_id"`
	AddedAt time.Time `json:"addedAt" db:"added_at"`
	Note    string    `json:"note,omitempty" db:"note"`
}

// FavoriteView is a favorite joined with its route summary
type FavoriteView struct {
	FavoriteRoute
	Route *RouteSummary `json:"route,omitempty"`
}

// AddFavoriteRequest is the body of POST /api/favorites
type AddFavoriteRequest struct {
	RouteID string `json:"routeId" validate:"required,uuid"`
	Note    string `json:"note" validate:"max=500"`
}

package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

func TestFavoriteService(t *testing.T) {
	stores := newTestStores()
	service := NewFavoriteService(stores.Favorites, stores.Routes, testLogger())
	ctx := context.Background()

	route := seedRoute(t, stores, "400")
	user := uuid.New()

	favorite, err := service.Add(ctx, user, models.AddFavoriteRequest{RouteID: route.ID.String(), Note: " work "})
	require.NoError(t, err)
	assert.Equal(t, "work", favorite.Note)
	require.NotNil(t, favorite.Route)
	assert.Equal(t, "400", favorite.Route.RouteNumber)

	t.Run("duplicate", func(t *testing.T) {
		_, err := service.Add(ctx, user, models.AddFavoriteRequest{RouteID: route.ID.String()})
		var conflict *models.ConflictError
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("unknown route", func(t *testing.T) {
		_, err := service.Add(ctx, user, models.AddFavoriteRequest{RouteID: uuid.NewString()})
		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("list", func(t *testing.T) {
		list, err := service.List(ctx, user)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, route.ID, list[0].Route.ID)

		others, err := service.List(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, others)
	})

	t.Run("remove someone else's favorite", func(t *testing.T) {
		err := service.Remove(ctx, uuid.New(), favorite.ID.String())
		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, service.Remove(ctx, user, favorite.ID.String()))

		list, err := service.List(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

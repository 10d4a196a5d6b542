package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/transitpulse/transit-assistant-backend/internal/memstore"
	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestStores() *repository.Stores {
	return memstore.New().Stores()
}

// seedRoute stores an active bus route with stops at the given coordinates
func seedRoute(t *testing.T, stores *repository.Stores, number string, stops ...models.Stop) *models.Route {
	t.Helper()

	for i := range stops {
		stops[i].Sequence = i + 1
	}
	route := &models.Route{
		ID:            uuid.New(),
		RouteNumber:   number,
		Name:          "Route " + number,
		TransportType: models.TransportBus,
		Stops:         stops,
		Color:         models.DefaultRouteColor,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, stores.Routes.Create(context.Background(), route))
	return route
}

func stopAt(name string, lat, lng float64) models.Stop {
	return models.Stop{Name: name, Location: models.Coordinates{Lat: lat, Lng: lng}}
}

func seedUser(t *testing.T, stores *repository.Stores, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Test",
		LastName:  "Rider",
		Role:      models.RolePassenger,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, stores.Users.Create(context.Background(), user))
	return user
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

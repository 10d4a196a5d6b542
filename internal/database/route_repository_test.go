package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

var routeRowColumns = []string{
	"id", "route_number", "name", "description", "transport_type", "stops", "schedule", "fare",
	"operator", "color", "distance_km", "estimated_duration", "popularity_score", "is_active",
	"created_at", "updated_at",
}

func routeRow(rows *sqlmock.Rows, id uuid.UUID, number string, popularity int, active bool) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id.String(), number, "Fort - Kaduwela", "", "bus",
		[]byte(`[{"name":"Central Station","location":{"lat":6.93,"lng":79.85},"sequence":1,"isTerminal":true}]`),
		[]byte(`[{"day":"all","departureTimes":["06:00","06:30"],"frequency":30}]`),
		[]byte(`{"adult":80}`),
		"SLTB", "#2563eb", 18.5, 55, popularity, active, now, now,
	)
}

func TestRouteRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM routes WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(routeRow(sqlmock.NewRows(routeRowColumns), id, "177", 4, false))

		route, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, route.ID)
		assert.Equal(t, "177", route.RouteNumber)
		assert.Equal(t, models.TransportBus, route.TransportType)
		require.Len(t, route.Stops, 1)
		assert.Equal(t, "Central Station", route.Stops[0].Name)
		require.Len(t, route.Schedule, 1)
		assert.Equal(t, 30, *route.Schedule[0].Frequency)
		require.NotNil(t, route.Fare.Adult)
		assert.Equal(t, 80.0, *route.Fare.Adult)
		assert.Equal(t, 18.5, *route.DistanceKm)
		assert.False(t, route.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM routes WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		route, err := repo.GetByID(ctx, id)
		assert.Nil(t, route)
		assert.ErrorIs(t, err, models.ErrNoRecord)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRouteRepository_ExistsByNumber(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("177", nil).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByNumber(context.Background(), "177", nil)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM routes WHERE is_active = TRUE AND transport_type = \$1`).
		WithArgs("bus").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

	mock.ExpectQuery(`ORDER BY popularity_score DESC, route_number ASC LIMIT \$2 OFFSET \$3`).
		WithArgs("bus", 20, 20).
		WillReturnRows(routeRow(sqlmock.NewRows(routeRowColumns), uuid.New(), "100", 9, true))

	routes, total, err := repo.List(context.Background(), models.RouteFilter{
		TransportType: models.TransportBus,
		ActiveOnly:    true,
		Page:          2,
		Limit:         20,
	})
	require.NoError(t, err)
	assert.Equal(t, 41, total)
	require.Len(t, routes, 1)
	assert.Equal(t, "100", routes[0].RouteNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteRepository_Search(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)
	ctx := context.Background()

	t.Run("Matches stop names", func(t *testing.T) {
		mock.ExpectQuery(`jsonb_array_elements\(stops\)`).
			WithArgs("%Central%", 20).
			WillReturnRows(routeRow(sqlmock.NewRows(routeRowColumns), uuid.New(), "177", 3, true))

		routes, err := repo.Search(ctx, "Central", "", 20)
		require.NoError(t, err)
		assert.Len(t, routes, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Escapes wildcards", func(t *testing.T) {
		mock.ExpectQuery(`transport_type = \$2`).
			WithArgs(`%50\%\_off%`, "train", 20).
			WillReturnRows(sqlmock.NewRows(routeRowColumns))

		routes, err := repo.Search(ctx, "50%_off", models.TransportTrain, 20)
		require.NoError(t, err)
		assert.Empty(t, routes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRouteRepository_IncrementPopularity(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)
	ctx := context.Background()

	t.Run("Single statement", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()

		mock.ExpectExec(`UPDATE routes SET popularity_score = popularity_score \+ \$2 WHERE id = ANY\(\$1::uuid\[\]\)`).
			WithArgs("{\""+a.String()+"\",\""+b.String()+"\"}", 1).
			WillReturnResult(sqlmock.NewResult(0, 2))

		require.NoError(t, repo.IncrementPopularity(ctx, []uuid.UUID{a, b}, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nothing to increment", func(t *testing.T) {
		require.NoError(t, repo.IncrementPopularity(ctx, nil, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRouteRepository_SetActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectExec(`UPDATE routes SET is_active`).
			WithArgs(id, false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetActive(ctx, id, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectExec(`UPDATE routes SET is_active`).
			WithArgs(id, false).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetActive(ctx, id, false)
		assert.ErrorIs(t, err, models.ErrNoRecord)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRouteRepository_TransportDistribution(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRouteRepository(db)

	mock.ExpectQuery(`GROUP BY transport_type`).
		WillReturnRows(sqlmock.NewRows([]string{"transport_type", "count"}).
			AddRow("bus", 12).
			AddRow("train", 3))

	counts, err := repo.TransportDistribution(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.TransportBus, counts[0].TransportType)
	assert.Equal(t, 12, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

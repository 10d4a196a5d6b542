package database

import (
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

// NewStores wires every PostgreSQL repository onto db
func NewStores(db *PostgresDB) *repository.Stores {
	return &repository.Stores{
		Routes:    NewRouteRepository(db),
		Delays:    NewDelayReportRepository(db),
		Favorites: NewFavoriteRepository(db),
		Trips:     NewTripRepository(db),
		Users:     NewUserRepository(db),
		Ping:      db.PingContext,
		Close:     db.Close,
	}
}

package database

import (
	"context"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'passenger',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY,
		route_number TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		transport_type TEXT NOT NULL,
		stops JSONB NOT NULL DEFAULT '[]',
		schedule JSONB NOT NULL DEFAULT '[]',
		fare JSONB NOT NULL DEFAULT '{}',
		operator TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '#2563eb',
		distance_km DOUBLE PRECISION,
		estimated_duration INTEGER,
		popularity_score INTEGER NOT NULL DEFAULT 0 CHECK (popularity_score >= 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_routes_active_popularity
		ON routes (is_active, popularity_score DESC, route_number)`,
	`CREATE TABLE IF NOT EXISTS delay_reports (
		id UUID PRIMARY KEY,
		route_id UUID NOT NULL REFERENCES routes(id),
		reported_by UUID REFERENCES users(id) ON DELETE SET NULL,
		delay_minutes INTEGER NOT NULL CHECK (delay_minutes BETWEEN 1 AND 180),
		reason TEXT NOT NULL DEFAULT 'other',
		description TEXT NOT NULL DEFAULT '',
		location_lat DOUBLE PRECISION,
		location_lng DOUBLE PRECISION,
		stop_name TEXT NOT NULL DEFAULT '',
		affected_direction TEXT NOT NULL DEFAULT '',
		upvotes UUID[] NOT NULL DEFAULT '{}',
		downvotes UUID[] NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'pending',
		severity TEXT NOT NULL,
		verified_by UUID REFERENCES users(id) ON DELETE SET NULL,
		verified_at TIMESTAMPTZ,
		resolved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_delay_reports_route_created
		ON delay_reports (route_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_delay_reports_status
		ON delay_reports (status)`,
	`CREATE TABLE IF NOT EXISTS favorite_routes (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		route_id UUID NOT NULL REFERENCES routes(id),
		note TEXT NOT NULL DEFAULT '',
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, route_id)
	)`,
	`CREATE TABLE IF NOT EXISTS trip_history (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		route_id UUID NOT NULL REFERENCES routes(id),
		route_number TEXT NOT NULL,
		route_name TEXT NOT NULL,
		start_stop TEXT NOT NULL DEFAULT '',
		end_stop TEXT NOT NULL DEFAULT '',
		scheduled_time TIMESTAMPTZ,
		actual_time TIMESTAMPTZ,
		duration INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'completed',
		delay_minutes INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trip_history_user_created
		ON trip_history (user_id, created_at DESC)`,
}

// EnsureSchema creates every table and index that does not exist yet, in one transaction
func EnsureSchema(ctx context.Context, db DB) error {
	if db == nil {
		return errors.New("ensure schema: DB is nil")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ensure schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ensure schema: commit: %w", err)
	}
	return nil
}

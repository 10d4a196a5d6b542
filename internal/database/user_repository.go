package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, role, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", translate(err))
	}

	return &user, nil
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translate(err))
	}

	return &user, nil
}

// GetSummaries returns the reporter summaries of the given users keyed by id
func (r *UserRepository) GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.UserSummary, error) {
	summaries := make(map[uuid.UUID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	var rows []struct {
		ID        uuid.UUID `db:"id"`
		FirstName string    `db:"first_name"`
		LastName  string    `db:"last_name"`
		Email     string    `db:"email"`
	}

	query := `
		SELECT id, first_name, last_name, email
		FROM users
		WHERE id = ANY($1::uuid[])
	`

	if err := r.db.SelectContext(ctx, &rows, query, uuidArray(ids)); err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}

	for _, row := range rows {
		summaries[row.ID] = models.UserSummary{
			ID:        row.ID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email,
		}
	}

	return summaries, nil
}

// Count returns the total number of users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int

	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hidaya/internal/errorz"
	"hidaya/internal/models"

	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE user_id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, errorz.ErrNotFound)
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetFirstByRole(ctx context.Context, role models.Role) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE role = $1 ORDER BY created_at LIMIT 1`

	err := r.db.GetContext(ctx, &user, query, string(role))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with role %s: %w", role, errorz.ErrNotFound)
		}
		return nil, fmt.Errorf("error getting user by role: %w", err)
	}

	return &user, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hidaya/internal/errorz"
	"hidaya/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FlagRepositoryImpl struct {
	DB *sqlx.DB
}

var _ FlagRepository = (*FlagRepositoryImpl)(nil)

func NewFlagRepository(db *sqlx.DB) *FlagRepositoryImpl {
	return &FlagRepositoryImpl{DB: db}
}

func (r *FlagRepositoryImpl) Create(ctx context.Context, flag *models.Flag) error {
	query := `
		INSERT INTO flags (flag_id, item_type, item_id, reported_by, reason, status, created_at)
		VALUES (:flag_id, :item_type, :item_id, :reported_by, :reason, :status, :created_at)
	`

	if flag.FlagID == "" {
		flag.FlagID = uuid.New().String()
	}
	flag.Status = models.FlagPending
	flag.CreatedAt = time.Now()

	if _, err := r.DB.NamedExecContext(ctx, query, flag); err != nil {
		return fmt.Errorf("error creating flag: %w", err)
	}

	return nil
}

func (r *FlagRepositoryImpl) GetByID(ctx context.Context, flagID string) (*models.Flag, error) {
	query := `SELECT * FROM flags WHERE flag_id = $1`

	var flag models.Flag
	err := r.DB.GetContext(ctx, &flag, query, flagID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("flag %s: %w", flagID, errorz.ErrNotFound)
		}
		return nil, fmt.Errorf("error getting flag: %w", err)
	}

	return &flag, nil
}

// Transition moves a pending flag to a terminal status. A flag that is no
// longer pending yields errorz.ErrConflict.
func (r *FlagRepositoryImpl) Transition(ctx context.Context, flagID string, to models.FlagStatus, at time.Time) (*models.Flag, error) {
	if !to.Terminal() {
		return nil, fmt.Errorf("flag status %q is not terminal: %w", to, errorz.ErrInvalidInput)
	}

	query := `
		UPDATE flags SET
			status = $2,
			notification_sent_at_dismissed = COALESCE($3, notification_sent_at_dismissed)
		WHERE flag_id = $1 AND status = 'pending'
		RETURNING *
	`

	var dismissedAt *time.Time
	if to == models.FlagDismissed {
		dismissedAt = &at
	}

	var flag models.Flag
	err := r.DB.GetContext(ctx, &flag, query, flagID, string(to), dismissedAt)
	if err == nil {
		return &flag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("error updating flag status: %w", err)
	}

	existing, err := r.GetByID(ctx, flagID)
	if err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("flag %s is already %s: %w", flagID, existing.Status, errorz.ErrConflict)
}

func (r *FlagRepositoryImpl) MarkNotificationSent(ctx context.Context, flagID string, at time.Time) error {
	query := `UPDATE flags SET notification_sent_at = $2 WHERE flag_id = $1`

	result, err := r.DB.ExecContext(ctx, query, flagID, at)
	if err != nil {
		return fmt.Errorf("error stamping flag notification: %w", err)
	}

	return requireAffected(result, "flag", flagID)
}

func (r *FlagRepositoryImpl) MarkDismissedNotified(ctx context.Context, flagID string, at time.Time) error {
	query := `UPDATE flags SET notification_sent_at_dismissed = $2 WHERE flag_id = $1`

	result, err := r.DB.ExecContext(ctx, query, flagID, at)
	if err != nil {
		return fmt.Errorf("error stamping dismissed flag notification: %w", err)
	}

	return requireAffected(result, "flag", flagID)
}

func (r *FlagRepositoryImpl) Delete(ctx context.Context, flagID string) error {
	query := `DELETE FROM flags WHERE flag_id = $1`

	result, err := r.DB.ExecContext(ctx, query, flagID)
	if err != nil {
		return fmt.Errorf("error deleting flag: %w", err)
	}

	return requireAffected(result, "flag", flagID)
}

// DeleteExpired removes terminal flags whose notifications went out before
// cutoff. Pending and dismissed flags are kept.
func (r *FlagRepositoryImpl) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM flags
		WHERE notification_sent_at <= $1
			AND status NOT IN ('pending', 'dismissed')
	`

	result, err := r.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired flags: %w", err)
	}

	return result.RowsAffected()
}

func (r *FlagRepositoryImpl) ListDismissedDue(ctx context.Context, cutoff time.Time) ([]*models.Flag, error) {
	query := `
		SELECT * FROM flags
		WHERE status = 'dismissed'
			AND (notification_sent_at_dismissed IS NULL OR notification_sent_at_dismissed <= $1)
		ORDER BY created_at
	`

	var flags []*models.Flag
	if err := r.DB.SelectContext(ctx, &flags, query, cutoff); err != nil {
		return nil, fmt.Errorf("error listing dismissed flags: %w", err)
	}

	return flags, nil
}

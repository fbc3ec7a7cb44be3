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

type AnswerRepositoryImpl struct {
	DB *sqlx.DB
}

var _ AnswerRepository = (*AnswerRepositoryImpl)(nil)

func NewAnswerRepository(db *sqlx.DB) *AnswerRepositoryImpl {
	return &AnswerRepositoryImpl{DB: db}
}

func (r *AnswerRepositoryImpl) Create(ctx context.Context, answer *models.Answer) error {
	query := `
		INSERT INTO answers
		(answer_id, question_id, text, answered_by, language, upvotes_count, is_flagged, is_hidden, hidden_temporary, created_at, updated_at)
		VALUES
		(:answer_id, :question_id, :text, :answered_by, :language, :upvotes_count, :is_flagged, :is_hidden, :hidden_temporary, :created_at, :updated_at)
	`

	if answer.AnswerID == "" {
		answer.AnswerID = uuid.New().String()
	}

	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now()
	}
	answer.UpdatedAt = answer.CreatedAt

	if _, err := r.DB.NamedExecContext(ctx, query, answer); err != nil {
		return fmt.Errorf("error creating answer: %w", err)
	}

	return nil
}

func (r *AnswerRepositoryImpl) GetByID(ctx context.Context, answerID string) (*models.Answer, error) {
	query := `SELECT * FROM answers WHERE answer_id = $1`

	var answer models.Answer
	err := r.DB.GetContext(ctx, &answer, query, answerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("answer %s: %w", answerID, errorz.ErrNotFound)
		}
		return nil, fmt.Errorf("error getting answer: %w", err)
	}

	return &answer, nil
}

func (r *AnswerRepositoryImpl) GetByQuestionID(ctx context.Context, questionID string) ([]*models.Answer, error) {
	query := `SELECT * FROM answers WHERE question_id = $1 ORDER BY created_at`

	var answers []*models.Answer
	if err := r.DB.SelectContext(ctx, &answers, query, questionID); err != nil {
		return nil, fmt.Errorf("error getting answers: %w", err)
	}

	return answers, nil
}

func (r *AnswerRepositoryImpl) GetEligibleByQuestionID(ctx context.Context, questionID string) ([]*models.Answer, error) {
	query := `
		SELECT * FROM answers
		WHERE question_id = $1
			AND NOT is_flagged
			AND NOT is_hidden
			AND NOT hidden_temporary
		ORDER BY upvotes_count DESC, created_at ASC
	`

	var answers []*models.Answer
	if err := r.DB.SelectContext(ctx, &answers, query, questionID); err != nil {
		return nil, fmt.Errorf("error getting eligible answers: %w", err)
	}

	return answers, nil
}

// AddUpvotes applies delta to the vote counter, never going below zero.
func (r *AnswerRepositoryImpl) AddUpvotes(ctx context.Context, answerID string, delta int) error {
	query := `
		UPDATE answers SET
			upvotes_count = GREATEST(upvotes_count + $2, 0)
		WHERE answer_id = $1
	`

	result, err := r.DB.ExecContext(ctx, query, answerID, delta)
	if err != nil {
		return fmt.Errorf("error updating upvotes: %w", err)
	}

	return requireAffected(result, "answer", answerID)
}

func (r *AnswerRepositoryImpl) UpdateByAdmin(ctx context.Context, answerID, text string) error {
	query := `
		UPDATE answers SET
			text = $2,
			upvotes_count = 0,
			updated_at = $3
		WHERE answer_id = $1
	`

	result, err := r.DB.ExecContext(ctx, query, answerID, text, time.Now())
	if err != nil {
		return fmt.Errorf("error updating answer: %w", err)
	}

	return requireAffected(result, "answer", answerID)
}

func (r *AnswerRepositoryImpl) Review(ctx context.Context, answerID, text string) error {
	query := `
		UPDATE answers SET
			text = $2,
			hidden_temporary = FALSE,
			upvotes_count = 0,
			updated_at = $3
		WHERE answer_id = $1
	`

	result, err := r.DB.ExecContext(ctx, query, answerID, text, time.Now())
	if err != nil {
		return fmt.Errorf("error reviewing answer: %w", err)
	}

	return requireAffected(result, "answer", answerID)
}

func (r *AnswerRepositoryImpl) SetHidden(ctx context.Context, answerID string, hidden bool) error {
	query := `UPDATE answers SET is_hidden = $2 WHERE answer_id = $1`

	result, err := r.DB.ExecContext(ctx, query, answerID, hidden)
	if err != nil {
		return fmt.Errorf("error hiding answer: %w", err)
	}

	return requireAffected(result, "answer", answerID)
}

func (r *AnswerRepositoryImpl) SetFlagged(ctx context.Context, answerID string, flagged bool) error {
	query := `UPDATE answers SET is_flagged = $2 WHERE answer_id = $1`

	result, err := r.DB.ExecContext(ctx, query, answerID, flagged)
	if err != nil {
		return fmt.Errorf("error flagging answer: %w", err)
	}

	return requireAffected(result, "answer", answerID)
}

func (r *AnswerRepositoryImpl) HideAllTemporarily(ctx context.Context, questionID string) (int64, error) {
	query := `UPDATE answers SET hidden_temporary = TRUE WHERE question_id = $1`

	result, err := r.DB.ExecContext(ctx, query, questionID)
	if err != nil {
		return 0, fmt.Errorf("error hiding answers of question: %w", err)
	}

	return result.RowsAffected()
}

func (r *AnswerRepositoryImpl) Delete(ctx context.Context, answerID string) error {
	query := `DELETE FROM answers WHERE answer_id = $1`

	result, err := r.DB.ExecContext(ctx, query, answerID)
	if err != nil {
		return fmt.Errorf("error deleting answer: %w", err)
	}

	return requireAffected(result, "answer", answerID)
}

func (r *AnswerRepositoryImpl) DeleteByQuestionID(ctx context.Context, questionID string) (int64, error) {
	query := `DELETE FROM answers WHERE question_id = $1`

	result, err := r.DB.ExecContext(ctx, query, questionID)
	if err != nil {
		return 0, fmt.Errorf("error deleting answers of question: %w", err)
	}

	return result.RowsAffected()
}

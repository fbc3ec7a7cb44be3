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
	"github.com/lib/pq"
)

type QuestionRepositoryImpl struct {
	DB *sqlx.DB
}

var _ QuestionRepository = (*QuestionRepositoryImpl)(nil)

func NewQuestionRepository(db *sqlx.DB) *QuestionRepositoryImpl {
	return &QuestionRepositoryImpl{DB: db}
}

func (r *QuestionRepositoryImpl) Create(ctx context.Context, question *models.Question) error {
	query := `
        INSERT INTO questions
        (question_id, text, is_public, asked_by, ai_answer, top_answer_id, tags, category, is_flagged, created_at, updated_at)
        VALUES
        (:question_id, :text, :is_public, :asked_by, :ai_answer, :top_answer_id, :tags, :category, :is_flagged, :created_at, :updated_at)
    `

	if question.QuestionID == "" {
		question.QuestionID = uuid.New().String()
	}
	if question.Tags == nil {
		question.Tags = pq.StringArray{}
	}

	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now

	if _, err := r.DB.NamedExecContext(ctx, query, question); err != nil {
		return fmt.Errorf("error creating question: %w", err)
	}

	return nil
}

func (r *QuestionRepositoryImpl) GetByID(ctx context.Context, questionID string) (*models.Question, error) {
	query := `SELECT * FROM questions WHERE question_id = $1`

	var question models.Question
	err := r.DB.GetContext(ctx, &question, query, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("question %s: %w", questionID, errorz.ErrNotFound)
		}
		return nil, fmt.Errorf("error getting question: %w", err)
	}

	return &question, nil
}

func (r *QuestionRepositoryImpl) Update(ctx context.Context, question *models.Question) error {
	query := `
		UPDATE questions SET
			text = :text,
			category = :category,
			is_public = :is_public,
			ai_answer = :ai_answer,
			tags = :tags,
			updated_at = :updated_at
		WHERE question_id = :question_id
	`

	if question.Tags == nil {
		question.Tags = pq.StringArray{}
	}
	question.UpdatedAt = time.Now()

	result, err := r.DB.NamedExecContext(ctx, query, question)
	if err != nil {
		return fmt.Errorf("error updating question: %w", err)
	}

	return requireAffected(result, "question", question.QuestionID)
}

func (r *QuestionRepositoryImpl) SetTopAnswer(ctx context.Context, questionID string, answerID *string) error {
	query := `UPDATE questions SET top_answer_id = $2 WHERE question_id = $1`

	result, err := r.DB.ExecContext(ctx, query, questionID, answerID)
	if err != nil {
		return fmt.Errorf("error setting top answer: %w", err)
	}

	return requireAffected(result, "question", questionID)
}

func (r *QuestionRepositoryImpl) SetFlagged(ctx context.Context, questionID string, flagged bool) error {
	query := `UPDATE questions SET is_flagged = $2 WHERE question_id = $1`

	result, err := r.DB.ExecContext(ctx, query, questionID, flagged)
	if err != nil {
		return fmt.Errorf("error flagging question: %w", err)
	}

	return requireAffected(result, "question", questionID)
}

func (r *QuestionRepositoryImpl) Delete(ctx context.Context, questionID string) error {
	query := `DELETE FROM questions WHERE question_id = $1`

	result, err := r.DB.ExecContext(ctx, query, questionID)
	if err != nil {
		return fmt.Errorf("error deleting question: %w", err)
	}

	return requireAffected(result, "question", questionID)
}

func requireAffected(result sql.Result, entity, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, errorz.ErrNotFound)
	}

	return nil
}

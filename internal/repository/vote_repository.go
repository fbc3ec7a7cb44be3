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

const uniqueViolation = "23505"

type VoteRepositoryImpl struct {
	DB *sqlx.DB
}

var _ VoteRepository = (*VoteRepositoryImpl)(nil)

func NewVoteRepository(db *sqlx.DB) *VoteRepositoryImpl {
	return &VoteRepositoryImpl{DB: db}
}

func (r *VoteRepositoryImpl) GetByQuestionAndUser(ctx context.Context, questionID, userID string) (*models.Vote, error) {
	query := `SELECT * FROM votes WHERE question_id = $1 AND voted_by = $2`

	var vote models.Vote
	err := r.DB.GetContext(ctx, &vote, query, questionID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vote of %s on question %s: %w", userID, questionID, errorz.ErrNotFound)
		}
		return nil, fmt.Errorf("error getting vote: %w", err)
	}

	return &vote, nil
}

// Create fails with errorz.ErrConflict when the user already votes on the question.
func (r *VoteRepositoryImpl) Create(ctx context.Context, vote *models.Vote) error {
	query := `
		INSERT INTO votes (vote_id, question_id, answer_id, voted_by, created_at, updated_at)
		VALUES (:vote_id, :question_id, :answer_id, :voted_by, :created_at, :updated_at)
	`

	if vote.VoteID == "" {
		vote.VoteID = uuid.New().String()
	}

	now := time.Now()
	vote.CreatedAt = now
	vote.UpdatedAt = now

	if _, err := r.DB.NamedExecContext(ctx, query, vote); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("vote of %s on question %s already exists: %w", vote.VotedBy, vote.QuestionID, errorz.ErrConflict)
		}
		return fmt.Errorf("error creating vote: %w", err)
	}

	return nil
}

func (r *VoteRepositoryImpl) UpdateAnswer(ctx context.Context, voteID, answerID string) error {
	query := `UPDATE votes SET answer_id = $2, updated_at = $3 WHERE vote_id = $1`

	result, err := r.DB.ExecContext(ctx, query, voteID, answerID, time.Now())
	if err != nil {
		return fmt.Errorf("error switching vote: %w", err)
	}

	return requireAffected(result, "vote", voteID)
}

func (r *VoteRepositoryImpl) Delete(ctx context.Context, voteID string) error {
	query := `DELETE FROM votes WHERE vote_id = $1`

	result, err := r.DB.ExecContext(ctx, query, voteID)
	if err != nil {
		return fmt.Errorf("error deleting vote: %w", err)
	}

	return requireAffected(result, "vote", voteID)
}

func (r *VoteRepositoryImpl) DeleteByAnswerID(ctx context.Context, answerID string) (int64, error) {
	query := `DELETE FROM votes WHERE answer_id = $1`

	result, err := r.DB.ExecContext(ctx, query, answerID)
	if err != nil {
		return 0, fmt.Errorf("error deleting votes of answer: %w", err)
	}

	return result.RowsAffected()
}

func (r *VoteRepositoryImpl) DeleteByQuestionID(ctx context.Context, questionID string) (int64, error) {
	query := `DELETE FROM votes WHERE question_id = $1`

	result, err := r.DB.ExecContext(ctx, query, questionID)
	if err != nil {
		return 0, fmt.Errorf("error deleting votes of question: %w", err)
	}

	return result.RowsAffected()
}

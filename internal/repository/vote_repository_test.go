package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"hidaya/internal/errorz"
	"hidaya/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteRepository_Create(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "created"},
		{name: "already voted", execErr: &pq.Error{Code: "23505"}, wantErr: errorz.ErrConflict},
		{name: "other error", execErr: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewVoteRepository(db)

			exec := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO votes")).
				WithArgs(sqlmock.AnyArg(), "q1", "a1", "u1", sqlmock.AnyArg(), sqlmock.AnyArg())
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			vote := &models.Vote{QuestionID: "q1", AnswerID: "a1", VotedBy: "u1"}
			err := repo.Create(context.Background(), vote)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.execErr != nil:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, errorz.ErrConflict)
			default:
				assert.NoError(t, err)
				assert.NotEmpty(t, vote.VoteID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVoteRepository_GetByQuestionAndUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	columns := []string{"vote_id", "question_id", "answer_id", "voted_by", "created_at", "updated_at"}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM votes WHERE question_id = $1 AND voted_by = $2")).
		WithArgs("q1", "u1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("v1", "q1", "a1", "u1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM votes WHERE question_id = $1 AND voted_by = $2")).
		WithArgs("q1", "u2").
		WillReturnError(sql.ErrNoRows)

	vote, err := repo.GetByQuestionAndUser(ctx, "q1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "a1", vote.AnswerID)

	_, err = repo.GetByQuestionAndUser(ctx, "q1", "u2")
	assert.ErrorIs(t, err, errorz.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_UpdateAnswer(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE votes SET answer_id = $2, updated_at = $3 WHERE vote_id = $1")).
		WithArgs("v1", "a2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE votes SET answer_id = $2, updated_at = $3 WHERE vote_id = $1")).
		WithArgs("v9", "a2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdateAnswer(context.Background(), "v1", "a2"))
	assert.ErrorIs(t, repo.UpdateAnswer(context.Background(), "v9", "a2"), errorz.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_DeleteByAnswerID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM votes WHERE answer_id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM votes WHERE question_id = $1")).
		WithArgs("q1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.DeleteByAnswerID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	removed, err = repo.DeleteByQuestionID(context.Background(), "q1")
	require.NoError(t, err)
	assert.Zero(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

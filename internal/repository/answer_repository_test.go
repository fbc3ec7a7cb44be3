package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"hidaya/internal/errorz"
	"hidaya/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnswerRepository(db)

	answer := &models.Answer{QuestionID: "q1", Text: "Pay 2.5%", AnsweredBy: "v1", Language: "en"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO answers")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), answer))
	assert.NotEmpty(t, answer.AnswerID)
	assert.Zero(t, answer.UpvotesCount)
	assert.False(t, answer.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepository_GetEligibleByQuestionID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnswerRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"answer_id", "question_id", "text", "answered_by", "upvotes_count", "created_at"}).
		AddRow("a2", "q1", "second", "v2", 3, now).
		AddRow("a1", "q1", "first", "v1", 1, now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM answers")).
		WithArgs("q1").
		WillReturnRows(rows)

	answers, err := repo.GetEligibleByQuestionID(context.Background(), "q1")

	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "a2", answers[0].AnswerID)
	assert.Equal(t, 3, answers[0].UpvotesCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepository_AddUpvotes(t *testing.T) {
	tests := []struct {
		name    string
		delta   int
		rows    int64
		wantErr error
	}{
		{name: "increment", delta: 1, rows: 1},
		{name: "decrement", delta: -1, rows: 1},
		{name: "missing answer", delta: 1, rows: 0, wantErr: errorz.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewAnswerRepository(db)

			mock.ExpectExec(regexp.QuoteMeta("upvotes_count = GREATEST(upvotes_count + $2, 0)")).
				WithArgs("a1", tt.delta).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := repo.AddUpvotes(context.Background(), "a1", tt.delta)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAnswerRepository_Review(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnswerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE answers SET")).
		WithArgs("a1", "rewritten", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Review(context.Background(), "a1", "rewritten"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepository_Flags(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnswerRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE answers SET is_flagged = $2 WHERE answer_id = $1")).
		WithArgs("a1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE answers SET is_hidden = $2 WHERE answer_id = $1")).
		WithArgs("a1", true).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE answers SET hidden_temporary = TRUE WHERE question_id = $1")).
		WithArgs("q1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	assert.NoError(t, repo.SetFlagged(ctx, "a1", true))
	assert.ErrorIs(t, repo.SetHidden(ctx, "a1", true), errorz.ErrNotFound)

	hidden, err := repo.HideAllTemporarily(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), hidden)

	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"time"

	"hidaya/internal/models"

	"github.com/jmoiron/sqlx"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, questionID string) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	SetTopAnswer(ctx context.Context, questionID string, answerID *string) error
	SetFlagged(ctx context.Context, questionID string, flagged bool) error
	Delete(ctx context.Context, questionID string) error
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	GetByID(ctx context.Context, answerID string) (*models.Answer, error)
	GetByQuestionID(ctx context.Context, questionID string) ([]*models.Answer, error)
	GetEligibleByQuestionID(ctx context.Context, questionID string) ([]*models.Answer, error)
	AddUpvotes(ctx context.Context, answerID string, delta int) error
	UpdateByAdmin(ctx context.Context, answerID, text string) error
	Review(ctx context.Context, answerID, text string) error
	SetHidden(ctx context.Context, answerID string, hidden bool) error
	SetFlagged(ctx context.Context, answerID string, flagged bool) error
	HideAllTemporarily(ctx context.Context, questionID string) (int64, error)
	Delete(ctx context.Context, answerID string) error
	DeleteByQuestionID(ctx context.Context, questionID string) (int64, error)
}

type VoteRepository interface {
	GetByQuestionAndUser(ctx context.Context, questionID, userID string) (*models.Vote, error)
	Create(ctx context.Context, vote *models.Vote) error
	UpdateAnswer(ctx context.Context, voteID, answerID string) error
	Delete(ctx context.Context, voteID string) error
	DeleteByAnswerID(ctx context.Context, answerID string) (int64, error)
	DeleteByQuestionID(ctx context.Context, questionID string) (int64, error)
}

type FlagRepository interface {
	Create(ctx context.Context, flag *models.Flag) error
	GetByID(ctx context.Context, flagID string) (*models.Flag, error)
	Transition(ctx context.Context, flagID string, to models.FlagStatus, at time.Time) (*models.Flag, error)
	MarkNotificationSent(ctx context.Context, flagID string, at time.Time) error
	MarkDismissedNotified(ctx context.Context, flagID string, at time.Time) error
	Delete(ctx context.Context, flagID string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	ListDismissedDue(ctx context.Context, cutoff time.Time) ([]*models.Flag, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetFirstByRole(ctx context.Context, role models.Role) (*models.User, error)
}

type Repository struct {
	Question QuestionRepository
	Answer   AnswerRepository
	Vote     VoteRepository
	Flag     FlagRepository
	User     UserRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Question: NewQuestionRepository(db),
		Answer:   NewAnswerRepository(db),
		Vote:     NewVoteRepository(db),
		Flag:     NewFlagRepository(db),
		User:     NewUserRepository(db),
	}
}

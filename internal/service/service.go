package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"hidaya/internal/config"
	"hidaya/internal/errorz"
	"hidaya/internal/lock"
	"hidaya/internal/notify"
	"hidaya/internal/repository"
	"hidaya/internal/storage"

	"github.com/go-playground/validator/v10"
)

type Service struct {
	TopAnswer  TopAnswerService
	Vote       VoteService
	Question   QuestionService
	Answer     AnswerService
	Moderation ModerationService
	Sweeper    *Sweeper
}

// NewService wires every operation over one shared engine. archive may be nil
// when removed content should not be kept.
func NewService(rep *repository.Repository, cfg *config.Config, locker lock.Locker, notifier notify.Notifier, archive storage.Archive) *Service {
	e := newEngine(rep, locker, notifier)

	return &Service{
		TopAnswer:  &topAnswerService{engine: e},
		Vote:       &voteService{engine: e},
		Question:   &questionService{engine: e},
		Answer:     &answerService{engine: e},
		Moderation: &moderationService{engine: e, archive: archive, adminUserID: cfg.Moderation.AdminUserID},
		Sweeper:    NewSweeper(rep.Flag, rep.User, notifier, cfg.Moderation),
	}
}

// engine holds what every consistency operation needs: stores, the
// per-question lock and the notifier.
type engine struct {
	repo     *repository.Repository
	locker   lock.Locker
	notifier notify.Notifier
	validate *validator.Validate
	now      func() time.Time
}

func newEngine(rep *repository.Repository, locker lock.Locker, notifier notify.Notifier) *engine {
	return &engine{
		repo:     rep,
		locker:   locker,
		notifier: notifier,
		validate: validator.New(),
		now:      time.Now,
	}
}

// withQuestionLock runs fn while holding the question's lock. Every answer-set
// mutation and the recalculation that follows it go through here.
func (e *engine) withQuestionLock(ctx context.Context, questionID string, fn func() error) error {
	unlock, err := e.locker.Lock(ctx, lock.QuestionKey(questionID))
	if err != nil {
		return fmt.Errorf("error locking question %s: %w", questionID, err)
	}
	defer unlock()

	return fn()
}

func (e *engine) validateStruct(v any) error {
	if err := e.validate.Struct(v); err != nil {
		return fmt.Errorf("%v: %w", err, errorz.ErrInvalidInput)
	}
	return nil
}

// send delivers a notification and only logs failures.
func (e *engine) send(ctx context.Context, req notify.Request) notify.Result {
	result := e.notifier.Send(ctx, req)
	for _, msg := range result.Errors {
		log.Printf("notification %s to %s: %s", req.Type, req.UserID, msg)
	}
	return result
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

const (
	questionPreviewLen = 50
	flaggedContentLen  = 200
)

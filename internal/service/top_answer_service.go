package service

import (
	"context"
	"fmt"

	"hidaya/internal/models"
	"hidaya/internal/notify"
)

type TopAnswerService interface {
	RecalculateTopAnswer(ctx context.Context, questionID string) (*TopAnswerChange, error)
}

// TopAnswerChange describes one recalculation. Previous and Current are nil
// when the question had or has no top answer.
type TopAnswerChange struct {
	QuestionID   string
	AskedBy      string
	QuestionText string
	Previous     *string
	Current      *string
}

func (c *TopAnswerChange) Changed() bool {
	if c.Previous == nil || c.Current == nil {
		return c.Previous != c.Current
	}
	return *c.Previous != *c.Current
}

type topAnswerService struct {
	*engine
}

func (s *topAnswerService) RecalculateTopAnswer(ctx context.Context, questionID string) (*TopAnswerChange, error) {
	var change *TopAnswerChange

	err := s.withQuestionLock(ctx, questionID, func() error {
		var err error
		change, err = s.recalculate(ctx, questionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyTopAnswer(ctx, change)
	return change, nil
}

// recalculate re-derives topAnswerId from the full eligible answer set.
// Callers must hold the question lock.
func (e *engine) recalculate(ctx context.Context, questionID string) (*TopAnswerChange, error) {
	question, err := e.repo.Question.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answers, err := e.repo.Answer.GetEligibleByQuestionID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	change := &TopAnswerChange{
		QuestionID:   questionID,
		AskedBy:      question.AskedBy,
		QuestionText: question.Text,
		Previous:     question.TopAnswerID,
	}
	if top := pickTopAnswer(answers); top != nil {
		id := top.AnswerID
		change.Current = &id
	}

	if err := e.repo.Question.SetTopAnswer(ctx, questionID, change.Current); err != nil {
		return nil, fmt.Errorf("error saving top answer of question %s: %w", questionID, err)
	}

	return change, nil
}

// pickTopAnswer returns the eligible answer with the most upvotes. Ties go to
// the earliest answer, then to the smaller id.
func pickTopAnswer(answers []*models.Answer) *models.Answer {
	var top *models.Answer
	for _, a := range answers {
		if !a.Eligible() {
			continue
		}
		if top == nil || ranksAbove(a, top) {
			top = a
		}
	}
	return top
}

func ranksAbove(a, b *models.Answer) bool {
	if a.UpvotesCount != b.UpvotesCount {
		return a.UpvotesCount > b.UpvotesCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.AnswerID < b.AnswerID
}

// notifyTopAnswer tells the asker about a new top answer. Losing the top
// answer entirely is not announced.
func (e *engine) notifyTopAnswer(ctx context.Context, change *TopAnswerChange) {
	if change == nil || change.Current == nil || !change.Changed() {
		return
	}

	e.send(ctx, notify.Request{
		UserID:  change.AskedBy,
		Type:    models.NotiTopAnswerChanged,
		Title:   "New Top Answer",
		Message: fmt.Sprintf("Your question \"%s\" has a new top answer.", truncate(change.QuestionText, questionPreviewLen)),
		Data: map[string]any{
			"questionId": change.QuestionID,
			"answerId":   *change.Current,
		},
	})
}

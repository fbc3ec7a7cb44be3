package service

import (
	"context"
	"fmt"

	"hidaya/internal/errorz"
	"hidaya/internal/models"
	"hidaya/internal/notify"

	"github.com/lib/pq"
)

type QuestionService interface {
	SubmitQuestion(ctx context.Context, req SubmitQuestionRequest) (*models.Question, error)
	EditQuestion(ctx context.Context, req EditQuestionRequest) (*models.Question, error)
	UpdateQuestionByAdmin(ctx context.Context, req EditQuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, actor models.Actor, questionID string) error
}

type SubmitQuestionRequest struct {
	AskedBy  string   `json:"-" validate:"required"`
	Text     string   `json:"text" validate:"required,max=5000"`
	Category string   `json:"category" validate:"max=100"`
	IsPublic bool     `json:"isPublic"`
	Tags     []string `json:"tags" validate:"max=10,dive,required,max=50"`
	AIAnswer string   `json:"aiAnswer"`
}

// EditQuestionRequest carries the new question fields. Nil pointers keep the
// stored value.
type EditQuestionRequest struct {
	QuestionID string   `json:"-" validate:"required"`
	UserID     string   `json:"-"`
	Text       string   `json:"text" validate:"required,max=5000"`
	Category   *string  `json:"category" validate:"omitempty,max=100"`
	IsPublic   *bool    `json:"isPublic"`
	Tags       []string `json:"tags" validate:"omitempty,max=10,dive,required,max=50"`
}

type questionService struct {
	*engine
}

func (s *questionService) SubmitQuestion(ctx context.Context, req SubmitQuestionRequest) (*models.Question, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	question := &models.Question{
		Text:     req.Text,
		IsPublic: req.IsPublic,
		AskedBy:  req.AskedBy,
		AIAnswer: req.AIAnswer,
		Tags:     pq.StringArray(req.Tags),
		Category: req.Category,
	}

	if err := s.repo.Question.Create(ctx, question); err != nil {
		return nil, err
	}

	return question, nil
}

// EditQuestion lets the asker change their question. Every existing answer is
// hidden until its author reviews it again.
func (s *questionService) EditQuestion(ctx context.Context, req EditQuestionRequest) (*models.Question, error) {
	return s.edit(ctx, req, true)
}

func (s *questionService) UpdateQuestionByAdmin(ctx context.Context, req EditQuestionRequest) (*models.Question, error) {
	return s.edit(ctx, req, false)
}

func (s *questionService) edit(ctx context.Context, req EditQuestionRequest, ownerOnly bool) (*models.Question, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	var (
		question *models.Question
		answers  []*models.Answer
	)

	err := s.withQuestionLock(ctx, req.QuestionID, func() error {
		var err error
		question, err = s.repo.Question.GetByID(ctx, req.QuestionID)
		if err != nil {
			return err
		}
		if ownerOnly && question.AskedBy != req.UserID {
			return fmt.Errorf("question %s belongs to another user: %w", req.QuestionID, errorz.ErrUnauthorized)
		}

		question.Text = req.Text
		if req.Category != nil {
			question.Category = *req.Category
		}
		if req.IsPublic != nil {
			question.IsPublic = *req.IsPublic
		}
		if req.Tags != nil {
			question.Tags = pq.StringArray(req.Tags)
		}

		if err := s.repo.Question.Update(ctx, question); err != nil {
			return err
		}

		if _, err := s.repo.Answer.HideAllTemporarily(ctx, req.QuestionID); err != nil {
			return err
		}

		answers, err = s.repo.Answer.GetByQuestionID(ctx, req.QuestionID)
		if err != nil {
			return err
		}

		change, err := s.recalculate(ctx, req.QuestionID)
		if err != nil {
			return fmt.Errorf("question updated, top answer not recalculated: %w", err)
		}
		question.TopAnswerID = change.Current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyAnswerers(ctx, question, answers)
	return question, nil
}

// notifyAnswerers asks every volunteer who answered the question to review
// their answer. Each volunteer is notified once.
func (s *questionService) notifyAnswerers(ctx context.Context, question *models.Question, answers []*models.Answer) {
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		if seen[a.AnsweredBy] {
			continue
		}
		seen[a.AnsweredBy] = true

		s.send(ctx, notify.Request{
			UserID:  a.AnsweredBy,
			Type:    models.NotiQuestionUpdated,
			Title:   "Question Updated",
			Message: fmt.Sprintf("The question \"%s\" was edited. Please review your answer.", truncate(question.Text, questionPreviewLen)),
			Data: map[string]any{
				"questionId": question.QuestionID,
				"answerId":   a.AnswerID,
			},
		})
	}
}

// DeleteQuestion removes a question with its answers and votes. Only the
// asker or an admin may do it.
func (s *questionService) DeleteQuestion(ctx context.Context, actor models.Actor, questionID string) error {
	if questionID == "" {
		return fmt.Errorf("question id is required: %w", errorz.ErrInvalidInput)
	}

	return s.withQuestionLock(ctx, questionID, func() error {
		question, err := s.repo.Question.GetByID(ctx, questionID)
		if err != nil {
			return err
		}
		if question.AskedBy != actor.UserID && !actor.IsAdmin() {
			return fmt.Errorf("question %s belongs to another user: %w", questionID, errorz.ErrUnauthorized)
		}

		return s.deleteQuestionTree(ctx, questionID)
	})
}

// deleteQuestionTree removes votes, answers and then the question itself.
// Callers must hold the question lock.
func (e *engine) deleteQuestionTree(ctx context.Context, questionID string) error {
	if _, err := e.repo.Vote.DeleteByQuestionID(ctx, questionID); err != nil {
		return err
	}
	if _, err := e.repo.Answer.DeleteByQuestionID(ctx, questionID); err != nil {
		return err
	}
	return e.repo.Question.Delete(ctx, questionID)
}

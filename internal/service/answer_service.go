package service

import (
	"context"
	"fmt"

	"hidaya/internal/errorz"
	"hidaya/internal/models"
	"hidaya/internal/notify"
)

type AnswerService interface {
	SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*models.Answer, error)
	ReviewAndUpdateAnswer(ctx context.Context, userID, answerID, text string) (*models.Answer, error)
	UpdateAnswerByAdmin(ctx context.Context, answerID, text string) (*models.Answer, error)
	HideAnswer(ctx context.Context, answerID string, hidden bool) (*models.Answer, error)
	DeleteAnswer(ctx context.Context, answerID string) error
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"-" validate:"required"`
	AnsweredBy string `json:"-" validate:"required"`
	Text       string `json:"text" validate:"required,max=10000"`
	Language   string `json:"language" validate:"omitempty,max=10"`
}

type answerTextRequest struct {
	AnswerID string `validate:"required"`
	Text     string `validate:"required,max=10000"`
}

type answerService struct {
	*engine
}

func (s *answerService) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*models.Answer, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	answer := &models.Answer{
		QuestionID: req.QuestionID,
		Text:       req.Text,
		AnsweredBy: req.AnsweredBy,
		Language:   req.Language,
	}

	var question *models.Question
	err := s.withQuestionLock(ctx, req.QuestionID, func() error {
		var err error
		question, err = s.repo.Question.GetByID(ctx, req.QuestionID)
		if err != nil {
			return err
		}

		if err := s.repo.Answer.Create(ctx, answer); err != nil {
			return err
		}

		if _, err := s.recalculate(ctx, req.QuestionID); err != nil {
			return fmt.Errorf("answer saved, top answer not recalculated: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if question.AskedBy != req.AnsweredBy {
		s.send(ctx, notify.Request{
			UserID:  question.AskedBy,
			Type:    models.NotiQuestionAnswered,
			Title:   "Question Answered",
			Message: fmt.Sprintf("Your question \"%s\" has a new answer.", truncate(question.Text, questionPreviewLen)),
			Data: map[string]any{
				"questionId": question.QuestionID,
				"answerId":   answer.AnswerID,
			},
		})
	}

	return answer, nil
}

// ReviewAndUpdateAnswer is the author's re-submission after the question was
// edited. It makes the answer eligible again with a fresh vote count.
func (s *answerService) ReviewAndUpdateAnswer(ctx context.Context, userID, answerID, text string) (*models.Answer, error) {
	if err := s.validateStruct(answerTextRequest{AnswerID: answerID, Text: text}); err != nil {
		return nil, err
	}

	return s.mutateAnswer(ctx, answerID, func(answer *models.Answer) error {
		if answer.AnsweredBy != userID {
			return fmt.Errorf("answer %s belongs to another user: %w", answerID, errorz.ErrUnauthorized)
		}
		if err := s.repo.Answer.Review(ctx, answerID, text); err != nil {
			return err
		}
		_, err := s.repo.Vote.DeleteByAnswerID(ctx, answerID)
		return err
	})
}

// UpdateAnswerByAdmin replaces the text and resets the answer's votes.
func (s *answerService) UpdateAnswerByAdmin(ctx context.Context, answerID, text string) (*models.Answer, error) {
	if err := s.validateStruct(answerTextRequest{AnswerID: answerID, Text: text}); err != nil {
		return nil, err
	}

	return s.mutateAnswer(ctx, answerID, func(*models.Answer) error {
		if err := s.repo.Answer.UpdateByAdmin(ctx, answerID, text); err != nil {
			return err
		}
		_, err := s.repo.Vote.DeleteByAnswerID(ctx, answerID)
		return err
	})
}

func (s *answerService) HideAnswer(ctx context.Context, answerID string, hidden bool) (*models.Answer, error) {
	if answerID == "" {
		return nil, fmt.Errorf("answer id is required: %w", errorz.ErrInvalidInput)
	}

	return s.mutateAnswer(ctx, answerID, func(*models.Answer) error {
		return s.repo.Answer.SetHidden(ctx, answerID, hidden)
	})
}

func (s *answerService) DeleteAnswer(ctx context.Context, answerID string) error {
	if answerID == "" {
		return fmt.Errorf("answer id is required: %w", errorz.ErrInvalidInput)
	}

	answer, err := s.repo.Answer.GetByID(ctx, answerID)
	if err != nil {
		return err
	}

	var change *TopAnswerChange
	err = s.withQuestionLock(ctx, answer.QuestionID, func() error {
		if err := s.deleteAnswer(ctx, answerID); err != nil {
			return err
		}

		var err error
		change, err = s.recalculate(ctx, answer.QuestionID)
		if err != nil {
			return fmt.Errorf("answer deleted, top answer not recalculated: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifyTopAnswer(ctx, change)
	return nil
}

// deleteAnswer removes an answer with its votes. Callers must hold the
// question lock.
func (e *engine) deleteAnswer(ctx context.Context, answerID string) error {
	if _, err := e.repo.Vote.DeleteByAnswerID(ctx, answerID); err != nil {
		return err
	}
	return e.repo.Answer.Delete(ctx, answerID)
}

// mutateAnswer runs fn on the current answer under its question's lock, then
// recalculates the top answer and returns the updated answer.
func (e *engine) mutateAnswer(ctx context.Context, answerID string, fn func(answer *models.Answer) error) (*models.Answer, error) {
	answer, err := e.repo.Answer.GetByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	questionID := answer.QuestionID

	var change *TopAnswerChange
	err = e.withQuestionLock(ctx, questionID, func() error {
		current, err := e.repo.Answer.GetByID(ctx, answerID)
		if err != nil {
			return err
		}

		if err := fn(current); err != nil {
			return err
		}

		change, err = e.recalculate(ctx, questionID)
		if err != nil {
			return fmt.Errorf("answer updated, top answer not recalculated: %w", err)
		}

		answer, err = e.repo.Answer.GetByID(ctx, answerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.notifyTopAnswer(ctx, change)
	return answer, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"hidaya/internal/errorz"
	"hidaya/internal/models"
	"hidaya/internal/notify"
)

type VoteService interface {
	CastVote(ctx context.Context, questionID, answerID, userID string) (*models.Answer, error)
	GetVotedAnswer(ctx context.Context, questionID, userID string) (*string, error)
}

type VoteOutcome int

const (
	VoteAdded VoteOutcome = iota
	VoteRemoved
	VoteSwitched
)

type castVoteRequest struct {
	QuestionID string `validate:"required"`
	AnswerID   string `validate:"required"`
	UserID     string `validate:"required"`
}

type voteService struct {
	*engine
}

// CastVote toggles the user's single vote on a question: a first vote is
// added, voting the same answer again removes it, and voting another answer
// moves it. The question's top answer is recalculated in the same lock scope.
func (s *voteService) CastVote(ctx context.Context, questionID, answerID, userID string) (*models.Answer, error) {
	if err := s.validateStruct(castVoteRequest{QuestionID: questionID, AnswerID: answerID, UserID: userID}); err != nil {
		return nil, err
	}

	var (
		answer  *models.Answer
		outcome VoteOutcome
		change  *TopAnswerChange
	)

	err := s.withQuestionLock(ctx, questionID, func() error {
		if _, err := s.repo.Question.GetByID(ctx, questionID); err != nil {
			return err
		}

		target, err := s.repo.Answer.GetByID(ctx, answerID)
		if err != nil {
			return err
		}
		if target.QuestionID != questionID {
			return fmt.Errorf("answer %s does not belong to question %s: %w", answerID, questionID, errorz.ErrInvalidInput)
		}

		outcome, err = s.applyVote(ctx, questionID, answerID, userID)
		if err != nil {
			return err
		}

		change, err = s.recalculate(ctx, questionID)
		if err != nil {
			return fmt.Errorf("vote applied, top answer not recalculated: %w", err)
		}

		answer, err = s.repo.Answer.GetByID(ctx, answerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyTopAnswer(ctx, change)
	if outcome != VoteRemoved && answer.AnsweredBy != userID {
		s.send(ctx, notify.Request{
			UserID:  answer.AnsweredBy,
			Type:    models.NotiAnswerUpvoted,
			Title:   "Answer Upvoted",
			Message: "Someone found your answer helpful.",
			Data: map[string]any{
				"questionId": questionID,
				"answerId":   answerID,
			},
		})
	}

	return answer, nil
}

func (s *voteService) applyVote(ctx context.Context, questionID, answerID, userID string) (VoteOutcome, error) {
	existing, err := s.repo.Vote.GetByQuestionAndUser(ctx, questionID, userID)
	if err != nil && !errors.Is(err, errorz.ErrNotFound) {
		return 0, err
	}

	switch {
	case existing == nil:
		vote := &models.Vote{QuestionID: questionID, AnswerID: answerID, VotedBy: userID}
		if err := s.repo.Vote.Create(ctx, vote); err != nil {
			return 0, err
		}
		return VoteAdded, s.repo.Answer.AddUpvotes(ctx, answerID, 1)

	case existing.AnswerID == answerID:
		if err := s.repo.Vote.Delete(ctx, existing.VoteID); err != nil {
			return 0, err
		}
		return VoteRemoved, s.repo.Answer.AddUpvotes(ctx, answerID, -1)

	default:
		previous := existing.AnswerID
		if err := s.repo.Vote.UpdateAnswer(ctx, existing.VoteID, answerID); err != nil {
			return 0, err
		}
		// The previous answer may have been removed since the vote was cast.
		if err := s.repo.Answer.AddUpvotes(ctx, previous, -1); err != nil && !errors.Is(err, errorz.ErrNotFound) {
			return 0, err
		}
		return VoteSwitched, s.repo.Answer.AddUpvotes(ctx, answerID, 1)
	}
}

func (s *voteService) GetVotedAnswer(ctx context.Context, questionID, userID string) (*string, error) {
	vote, err := s.repo.Vote.GetByQuestionAndUser(ctx, questionID, userID)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	answerID := vote.AnswerID
	return &answerID, nil
}

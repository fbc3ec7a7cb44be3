package handlers_test

import (
	"context"

	"hidaya/internal/models"
	"hidaya/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockVoteService struct {
	mock.Mock
}

func (m *MockVoteService) CastVote(ctx context.Context, questionID, answerID, userID string) (*models.Answer, error) {
	args := m.Called(ctx, questionID, answerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

func (m *MockVoteService) GetVotedAnswer(ctx context.Context, questionID, userID string) (*string, error) {
	args := m.Called(ctx, questionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) SubmitQuestion(ctx context.Context, req service.SubmitQuestionRequest) (*models.Question, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) EditQuestion(ctx context.Context, req service.EditQuestionRequest) (*models.Question, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) UpdateQuestionByAdmin(ctx context.Context, req service.EditQuestionRequest) (*models.Question, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) DeleteQuestion(ctx context.Context, actor models.Actor, questionID string) error {
	args := m.Called(ctx, actor, questionID)
	return args.Error(0)
}

type MockAnswerService struct {
	mock.Mock
}

func (m *MockAnswerService) SubmitAnswer(ctx context.Context, req service.SubmitAnswerRequest) (*models.Answer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

func (m *MockAnswerService) ReviewAndUpdateAnswer(ctx context.Context, userID, answerID, text string) (*models.Answer, error) {
	args := m.Called(ctx, userID, answerID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

func (m *MockAnswerService) UpdateAnswerByAdmin(ctx context.Context, answerID, text string) (*models.Answer, error) {
	args := m.Called(ctx, answerID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

func (m *MockAnswerService) HideAnswer(ctx context.Context, answerID string, hidden bool) (*models.Answer, error) {
	args := m.Called(ctx, answerID, hidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

func (m *MockAnswerService) DeleteAnswer(ctx context.Context, answerID string) error {
	args := m.Called(ctx, answerID)
	return args.Error(0)
}

type MockModerationService struct {
	mock.Mock
}

func (m *MockModerationService) SubmitFlag(ctx context.Context, req service.SubmitFlagRequest) (*models.Flag, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flag), args.Error(1)
}

func (m *MockModerationService) ResolveFlag(ctx context.Context, flagID string) (*models.Flag, error) {
	return m.flagResult(m.Called(ctx, flagID))
}

func (m *MockModerationService) RejectFlag(ctx context.Context, flagID string) (*models.Flag, error) {
	return m.flagResult(m.Called(ctx, flagID))
}

func (m *MockModerationService) DismissFlag(ctx context.Context, flagID string) (*models.Flag, error) {
	return m.flagResult(m.Called(ctx, flagID))
}

func (m *MockModerationService) DeleteFlagByAdmin(ctx context.Context, flagID string) error {
	args := m.Called(ctx, flagID)
	return args.Error(0)
}

func (m *MockModerationService) flagResult(args mock.Arguments) (*models.Flag, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flag), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck() error {
	args := m.Called()
	return args.Error(0)
}

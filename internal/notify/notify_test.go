package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"hidaya/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInbox struct {
	mock.Mock
}

func (m *MockInbox) Save(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Push(ctx context.Context, userID, title, message string, data map[string]any) error {
	args := m.Called(ctx, userID, title, message, data)
	return args.Error(0)
}

func validRequest() Request {
	return Request{
		UserID:  "user-1",
		Type:    models.NotiFlagResolved,
		Title:   "Flag Resolved",
		Message: "Your report has been resolved.",
		Data:    map[string]any{"flagId": "flag-1"},
	}
}

func TestService_Send(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("push and inbox succeed", func(t *testing.T) {
		inbox := new(MockInbox)
		push := new(MockPushSender)

		push.On("Push", ctx, "user-1", "Flag Resolved", "Your report has been resolved.",
			map[string]any{"flagId": "flag-1", "type": "flag_resolved"}).Return(nil)
		inbox.On("Save", ctx, mock.MatchedBy(func(n *models.Notification) bool {
			return n.UserID == "user-1" && n.Type == models.NotiFlagResolved &&
				n.ID != "" && !n.Read && n.CreatedAt.Equal(fixed) && n.Data["flagId"] == "flag-1"
		})).Return(nil)

		svc := NewService(inbox, push)
		svc.now = func() time.Time { return fixed }

		result := svc.Send(ctx, validRequest())

		assert.True(t, result.PushSent)
		assert.True(t, result.DatabaseSaved)
		assert.Empty(t, result.Errors)
		assert.False(t, result.Failed())
		inbox.AssertExpectations(t)
		push.AssertExpectations(t)
	})

	t.Run("no push sender still saves to inbox", func(t *testing.T) {
		inbox := new(MockInbox)
		inbox.On("Save", ctx, mock.Anything).Return(nil)

		result := NewService(inbox, nil).Send(ctx, validRequest())

		assert.False(t, result.PushSent)
		assert.True(t, result.DatabaseSaved)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, ErrPushNotConfigured.Error(), result.Errors[0])
	})

	t.Run("failures are collected, not returned", func(t *testing.T) {
		inbox := new(MockInbox)
		push := new(MockPushSender)
		push.On("Push", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("onesignal down"))
		inbox.On("Save", ctx, mock.Anything).Return(errors.New("mongo down"))

		result := NewService(inbox, push).Send(ctx, validRequest())

		assert.False(t, result.PushSent)
		assert.False(t, result.DatabaseSaved)
		assert.Len(t, result.Errors, 2)
		assert.True(t, result.Failed())
	})

	t.Run("missing fields are rejected before delivery", func(t *testing.T) {
		inbox := new(MockInbox)
		req := validRequest()
		req.UserID = ""

		result := NewService(inbox, nil).Send(ctx, req)

		assert.False(t, result.DatabaseSaved)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "invalid notification")
		inbox.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

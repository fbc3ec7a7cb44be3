package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hidaya/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrPushNotConfigured = errors.New("push delivery is not configured")

type Request struct {
	UserID  string                  `validate:"required"`
	Type    models.NotificationType `validate:"required"`
	Title   string                  `validate:"required"`
	Message string                  `validate:"required"`
	Data    map[string]any
}

type Result struct {
	PushSent      bool     `json:"pushSent"`
	DatabaseSaved bool     `json:"databaseSaved"`
	Errors        []string `json:"errors"`
}

func (r Result) Failed() bool {
	return len(r.Errors) > 0
}

// Notifier never returns an error: every failure is reported in Result.
type Notifier interface {
	Send(ctx context.Context, req Request) Result
}

type Inbox interface {
	Save(ctx context.Context, notification *models.Notification) error
}

type PushSender interface {
	Push(ctx context.Context, userID, title, message string, data map[string]any) error
}

type Service struct {
	inbox    Inbox
	push     PushSender
	validate *validator.Validate
	now      func() time.Time
}

var _ Notifier = (*Service)(nil)

// NewService builds a Notifier. push may be nil, in which case only the inbox
// copy is written.
func NewService(inbox Inbox, push PushSender) *Service {
	return &Service{
		inbox:    inbox,
		push:     push,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *Service) Send(ctx context.Context, req Request) Result {
	result := Result{Errors: []string{}}

	if err := s.validate.Struct(req); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid notification: %v", err))
		return result
	}

	data := req.Data
	if data == nil {
		data = map[string]any{}
	}

	if s.push == nil {
		result.Errors = append(result.Errors, ErrPushNotConfigured.Error())
	} else if err := s.push.Push(ctx, req.UserID, req.Title, req.Message, withType(data, req.Type)); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("push notification error: %v", err))
	} else {
		result.PushSent = true
	}

	notification := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      data,
		Read:      false,
		CreatedAt: s.now().UTC(),
	}

	if err := s.inbox.Save(ctx, notification); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("database error: %v", err))
	} else {
		result.DatabaseSaved = true
	}

	return result
}

func withType(data map[string]any, typ models.NotificationType) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["type"] = string(typ)
	return out
}

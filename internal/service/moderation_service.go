package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"hidaya/internal/errorz"
	"hidaya/internal/models"
	"hidaya/internal/notify"
	"hidaya/internal/repository"
	"hidaya/internal/storage"
)

type ModerationService interface {
	SubmitFlag(ctx context.Context, req SubmitFlagRequest) (*models.Flag, error)
	ResolveFlag(ctx context.Context, flagID string) (*models.Flag, error)
	RejectFlag(ctx context.Context, flagID string) (*models.Flag, error)
	DismissFlag(ctx context.Context, flagID string) (*models.Flag, error)
	DeleteFlagByAdmin(ctx context.Context, flagID string) error
}

type SubmitFlagRequest struct {
	ItemType   models.ItemType `json:"itemType" validate:"required,oneof=question answer message"`
	ItemID     string          `json:"itemId" validate:"required"`
	ReportedBy string          `json:"-" validate:"required"`
	Reason     string          `json:"reason" validate:"required,max=1000"`
}

type moderationService struct {
	*engine
	archive     storage.Archive
	adminUserID string
}

// flaggedItem is what a flag points at, loaded before a transition.
type flaggedItem struct {
	questionID string
	ownerID    string
	text       string
	content    any
	found      bool
}

func (s *moderationService) SubmitFlag(ctx context.Context, req SubmitFlagRequest) (*models.Flag, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	flag := &models.Flag{
		ItemType:   req.ItemType,
		ItemID:     req.ItemID,
		ReportedBy: req.ReportedBy,
		Reason:     req.Reason,
	}

	switch req.ItemType {
	case models.ItemAnswer:
		_, err := s.mutateAnswer(ctx, req.ItemID, func(*models.Answer) error {
			if err := s.repo.Flag.Create(ctx, flag); err != nil {
				return err
			}
			return s.repo.Answer.SetFlagged(ctx, req.ItemID, true)
		})
		if err != nil {
			return nil, err
		}

	case models.ItemQuestion:
		err := s.withQuestionLock(ctx, req.ItemID, func() error {
			if _, err := s.repo.Question.GetByID(ctx, req.ItemID); err != nil {
				return err
			}
			if err := s.repo.Flag.Create(ctx, flag); err != nil {
				return err
			}
			return s.repo.Question.SetFlagged(ctx, req.ItemID, true)
		})
		if err != nil {
			return nil, err
		}

	default:
		// Messages live in another service; only the report is kept here.
		if err := s.repo.Flag.Create(ctx, flag); err != nil {
			return nil, err
		}
	}

	return flag, nil
}

// ResolveFlag accepts the report and deletes the flagged content.
func (s *moderationService) ResolveFlag(ctx context.Context, flagID string) (*models.Flag, error) {
	var (
		flag   *models.Flag
		item   flaggedItem
		change *TopAnswerChange
	)

	err := s.transition(ctx, flagID, models.FlagResolved, func(f *models.Flag, it flaggedItem) error {
		flag, item = f, it
		if !it.found {
			return nil
		}

		s.archiveRemoved(ctx, f, it.content)

		switch f.ItemType {
		case models.ItemAnswer:
			if err := s.deleteAnswer(ctx, f.ItemID); err != nil && !errors.Is(err, errorz.ErrNotFound) {
				return err
			}
			var err error
			change, err = s.recalculate(ctx, it.questionID)
			if err != nil {
				return fmt.Errorf("answer removed, top answer not recalculated: %w", err)
			}
		case models.ItemQuestion:
			if err := s.deleteQuestionTree(ctx, f.ItemID); err != nil && !errors.Is(err, errorz.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyTopAnswer(ctx, change)
	s.notifyReporter(ctx, flag, item, models.NotiFlagResolved, "Report Resolved",
		"Thank you for your report. The content has been removed.")
	s.notifyOwner(ctx, flag, item, models.NotiContentRemoved, "Content Removed",
		fmt.Sprintf("Your %s was removed after a report was reviewed.", flag.ItemType))

	return flag, nil
}

// RejectFlag keeps the content and clears its flagged mark.
func (s *moderationService) RejectFlag(ctx context.Context, flagID string) (*models.Flag, error) {
	var (
		flag   *models.Flag
		item   flaggedItem
		change *TopAnswerChange
	)

	err := s.transition(ctx, flagID, models.FlagRejected, func(f *models.Flag, it flaggedItem) error {
		flag, item = f, it
		if !it.found {
			return nil
		}

		switch f.ItemType {
		case models.ItemAnswer:
			if err := s.repo.Answer.SetFlagged(ctx, f.ItemID, false); err != nil {
				return err
			}
			var err error
			change, err = s.recalculate(ctx, it.questionID)
			if err != nil {
				return fmt.Errorf("flag rejected, top answer not recalculated: %w", err)
			}
		case models.ItemQuestion:
			return s.repo.Question.SetFlagged(ctx, f.ItemID, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyTopAnswer(ctx, change)
	s.notifyReporter(ctx, flag, item, models.NotiFlagRejected, "Report Reviewed",
		"Thank you for your report. After review the content was found to follow the guidelines.")
	s.notifyOwner(ctx, flag, item, models.NotiFlagRejected, "Report Reviewed",
		fmt.Sprintf("A report against your %s was reviewed and your content was kept.", flag.ItemType))

	return flag, nil
}

// DismissFlag closes the report without touching the content. The designated
// admin is told, not the reporter.
func (s *moderationService) DismissFlag(ctx context.Context, flagID string) (*models.Flag, error) {
	var (
		flag *models.Flag
		item flaggedItem
	)

	err := s.transition(ctx, flagID, models.FlagDismissed, func(f *models.Flag, it flaggedItem) error {
		flag, item = f, it
		return nil
	})
	if err != nil {
		return nil, err
	}

	admin, err := designatedAdmin(ctx, s.repo.User, s.adminUserID)
	if err != nil {
		log.Printf("dismissed flag %s: no admin to notify: %v", flagID, err)
		return flag, nil
	}

	s.send(ctx, dismissedNotice(ctx, s.repo.User, admin, flag, item.text))
	return flag, nil
}

// DeleteFlagByAdmin removes the flag in any status. Deleting it again reports
// errorz.ErrNotFound.
func (s *moderationService) DeleteFlagByAdmin(ctx context.Context, flagID string) error {
	if flagID == "" {
		return fmt.Errorf("flag id is required: %w", errorz.ErrInvalidInput)
	}
	return s.repo.Flag.Delete(ctx, flagID)
}

// transition moves a pending flag to a terminal status under the lock of the
// question its content belongs to, then runs apply in the same scope. Only the
// caller that wins the transition runs apply.
func (s *moderationService) transition(ctx context.Context, flagID string, to models.FlagStatus,
	apply func(flag *models.Flag, item flaggedItem) error) error {
	if flagID == "" {
		return fmt.Errorf("flag id is required: %w", errorz.ErrInvalidInput)
	}

	flag, err := s.repo.Flag.GetByID(ctx, flagID)
	if err != nil {
		return err
	}

	item, err := s.loadItem(ctx, flag)
	if err != nil {
		return err
	}

	run := func() error {
		updated, err := s.repo.Flag.Transition(ctx, flagID, to, s.now())
		if err != nil {
			return err
		}
		return apply(updated, item)
	}

	if item.questionID == "" {
		return run()
	}
	return s.withQuestionLock(ctx, item.questionID, run)
}

func (s *moderationService) loadItem(ctx context.Context, flag *models.Flag) (flaggedItem, error) {
	switch flag.ItemType {
	case models.ItemAnswer:
		answer, err := s.repo.Answer.GetByID(ctx, flag.ItemID)
		if errors.Is(err, errorz.ErrNotFound) {
			return flaggedItem{}, nil
		}
		if err != nil {
			return flaggedItem{}, err
		}
		return flaggedItem{
			questionID: answer.QuestionID,
			ownerID:    answer.AnsweredBy,
			text:       answer.Text,
			content:    answer,
			found:      true,
		}, nil

	case models.ItemQuestion:
		question, err := s.repo.Question.GetByID(ctx, flag.ItemID)
		if errors.Is(err, errorz.ErrNotFound) {
			return flaggedItem{}, nil
		}
		if err != nil {
			return flaggedItem{}, err
		}
		return flaggedItem{
			questionID: question.QuestionID,
			ownerID:    question.AskedBy,
			text:       question.Text,
			content:    question,
			found:      true,
		}, nil
	}

	return flaggedItem{}, nil
}

func (s *moderationService) archiveRemoved(ctx context.Context, flag *models.Flag, content any) {
	if s.archive == nil {
		return
	}
	if _, err := s.archive.ArchiveRemoved(ctx, flag, content); err != nil {
		log.Printf("archive flag %s: %v", flag.FlagID, err)
	}
}

// notifyReporter tells the reporter the outcome and stamps the flag so the
// retention sweep can later purge it.
func (s *moderationService) notifyReporter(ctx context.Context, flag *models.Flag, item flaggedItem,
	typ models.NotificationType, title, message string) {
	result := s.send(ctx, notify.Request{
		UserID:  flag.ReportedBy,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    flagData(flag, item),
	})
	if !result.PushSent && !result.DatabaseSaved {
		return
	}

	if err := s.repo.Flag.MarkNotificationSent(ctx, flag.FlagID, s.now()); err != nil {
		log.Printf("stamp notification of flag %s: %v", flag.FlagID, err)
	}
}

func (s *moderationService) notifyOwner(ctx context.Context, flag *models.Flag, item flaggedItem,
	typ models.NotificationType, title, message string) {
	if !item.found || item.ownerID == "" {
		return
	}

	s.send(ctx, notify.Request{
		UserID:  item.ownerID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    flagData(flag, item),
	})
}

func flagData(flag *models.Flag, item flaggedItem) map[string]any {
	data := map[string]any{
		"flagId":   flag.FlagID,
		"itemType": string(flag.ItemType),
		"itemId":   flag.ItemID,
		"reason":   flag.Reason,
	}
	if item.text != "" {
		data["flaggedContent"] = truncate(item.text, flaggedContentLen)
	}
	if item.questionID != "" {
		data["questionId"] = item.questionID
	}
	return data
}

// designatedAdmin returns the configured admin, or the earliest admin account
// when none is configured.
func designatedAdmin(ctx context.Context, users repository.UserRepository, adminUserID string) (string, error) {
	if adminUserID != "" {
		return adminUserID, nil
	}

	admin, err := users.GetFirstByRole(ctx, models.RoleAdmin)
	if err != nil {
		return "", err
	}
	return admin.UserID, nil
}

func dismissedNotice(ctx context.Context, users repository.UserRepository, adminID string, flag *models.Flag, text string) notify.Request {
	reporter := flag.ReportedBy
	if user, err := users.GetByID(ctx, flag.ReportedBy); err == nil && user.DisplayName != "" {
		reporter = user.DisplayName
	}

	data := map[string]any{
		"flagId":     flag.FlagID,
		"itemType":   string(flag.ItemType),
		"itemId":     flag.ItemID,
		"reason":     flag.Reason,
		"reportedBy": reporter,
	}
	if text != "" {
		data["flaggedContent"] = truncate(text, flaggedContentLen)
	}

	return notify.Request{
		UserID:  adminID,
		Type:    models.NotiFlagDismissed,
		Title:   "Flag Dismissed",
		Message: fmt.Sprintf("A report by %s on a %s was dismissed and still needs attention.", reporter, flag.ItemType),
		Data:    data,
	}
}

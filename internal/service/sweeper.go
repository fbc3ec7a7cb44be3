package service

import (
	"context"
	"log"
	"time"

	"hidaya/internal/config"
	"hidaya/internal/notify"
	"hidaya/internal/repository"
)

// Sweeper runs the periodic flag maintenance jobs. Both jobs only touch rows
// selected by status and age, so they can run next to live moderation.
type Sweeper struct {
	flagRepo repository.FlagRepository
	userRepo repository.UserRepository
	notifier notify.Notifier
	cfg      config.Moderation
	now      func() time.Time
}

func NewSweeper(flagRepo repository.FlagRepository, userRepo repository.UserRepository, notifier notify.Notifier, cfg config.Moderation) *Sweeper {
	return &Sweeper{
		flagRepo: flagRepo,
		userRepo: userRepo,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run sweeps once per SweepInterval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	if n, err := s.PurgeExpiredFlags(ctx); err != nil {
		log.Printf("flag retention sweep: %v", err)
	} else if n > 0 {
		log.Printf("flag retention sweep: deleted %d flags", n)
	}

	if n, err := s.RenotifyDismissed(ctx); err != nil {
		log.Printf("dismissed flag sweep: %v", err)
	} else if n > 0 {
		log.Printf("dismissed flag sweep: notified %d flags", n)
	}
}

// PurgeExpiredFlags deletes resolved and rejected flags whose reporter was
// notified more than FlagRetention ago.
func (s *Sweeper) PurgeExpiredFlags(ctx context.Context) (int64, error) {
	return s.flagRepo.DeleteExpired(ctx, s.now().Add(-s.cfg.FlagRetention))
}

// RenotifyDismissed reminds the designated admin about dismissed flags not
// announced within DismissedRenotifyAfter and returns how many were sent.
func (s *Sweeper) RenotifyDismissed(ctx context.Context) (int, error) {
	now := s.now()

	flags, err := s.flagRepo.ListDismissedDue(ctx, now.Add(-s.cfg.DismissedRenotifyAfter))
	if err != nil {
		return 0, err
	}
	if len(flags) == 0 {
		return 0, nil
	}

	admin, err := designatedAdmin(ctx, s.userRepo, s.cfg.AdminUserID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, flag := range flags {
		req := dismissedNotice(ctx, s.userRepo, admin, flag, "")
		result := s.notifier.Send(ctx, req)
		for _, msg := range result.Errors {
			log.Printf("notification %s to %s: %s", req.Type, req.UserID, msg)
		}
		if !result.PushSent && !result.DatabaseSaved {
			continue
		}

		if err := s.flagRepo.MarkDismissedNotified(ctx, flag.FlagID, now); err != nil {
			log.Printf("stamp dismissed flag %s: %v", flag.FlagID, err)
			continue
		}
		sent++
	}

	return sent, nil
}

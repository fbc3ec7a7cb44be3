package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hidaya/internal/config"
	"hidaya/internal/lock"
	"hidaya/internal/models"
	"hidaya/internal/notify"
	"hidaya/internal/repository"
	"hidaya/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Request
	fail bool
}

func (n *recordingNotifier) Send(_ context.Context, req notify.Request) notify.Result {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, req)
	if n.fail {
		return notify.Result{Errors: []string{"delivery failed"}}
	}
	return notify.Result{PushSent: true, DatabaseSaved: true, Errors: []string{}}
}

func (n *recordingNotifier) to(userID string, typ models.NotificationType) []notify.Request {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []notify.Request
	for _, req := range n.sent {
		if req.UserID == userID && req.Type == typ {
			out = append(out, req)
		}
	}
	return out
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

type recordingArchive struct {
	mu       sync.Mutex
	archived []*models.Flag
	fail     bool
}

func (a *recordingArchive) ArchiveRemoved(_ context.Context, flag *models.Flag, _ any) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fail {
		return "", errors.New("bucket unavailable")
	}
	a.archived = append(a.archived, flag)
	return "flags/" + flag.FlagID, nil
}

const (
	askerID    = "asker"
	vol1ID     = "vol1"
	vol2ID     = "vol2"
	vol3ID     = "vol3"
	reporterID = "reporter"
	adminID    = "admin1"
	questionID = "q1"
)

type fixture struct {
	svc      *Service
	rep      *repository.Repository
	store    *memory.Store
	notifier *recordingNotifier
	archive  *recordingArchive
	base     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	rep, store := memory.NewRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var clockMu sync.Mutex
	clock := base.Add(time.Hour)
	store.Now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	cfg := &config.Config{
		Moderation: config.Moderation{
			FlagRetention:          7 * 24 * time.Hour,
			DismissedRenotifyAfter: time.Hour,
			SweepInterval:          time.Hour,
		},
	}

	n := &recordingNotifier{}
	a := &recordingArchive{}
	svc := NewService(rep, cfg, lock.NewMemoryLocker(), n, a)

	for i, u := range []models.User{
		{UserID: askerID, DisplayName: "Asker", Role: models.RoleUser},
		{UserID: vol1ID, DisplayName: "Volunteer One", Role: models.RoleVolunteer},
		{UserID: vol2ID, DisplayName: "Volunteer Two", Role: models.RoleVolunteer},
		{UserID: vol3ID, DisplayName: "Volunteer Three", Role: models.RoleVolunteer},
		{UserID: reporterID, DisplayName: "Reporter", Role: models.RoleUser},
		{UserID: adminID, DisplayName: "Admin", Role: models.RoleAdmin},
	} {
		u.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		store.PutUser(u)
	}

	store.PutQuestion(models.Question{
		QuestionID: questionID,
		Text:       "How should I prepare for the fast during a long summer day?",
		AskedBy:    askerID,
		IsPublic:   true,
		CreatedAt:  base,
		UpdatedAt:  base,
	})

	return &fixture{svc: svc, rep: rep, store: store, notifier: n, archive: a, base: base}
}

// putAnswer stores an eligible answer to q1 created offset after the base time.
func (f *fixture) putAnswer(id, by string, votes int, offset time.Duration) {
	f.store.PutAnswer(models.Answer{
		AnswerID:     id,
		QuestionID:   questionID,
		Text:         "answer " + id,
		AnsweredBy:   by,
		UpvotesCount: votes,
		CreatedAt:    f.base.Add(offset),
		UpdatedAt:    f.base.Add(offset),
	})
}

func (f *fixture) setTop(answerID string) {
	q, _ := f.store.Question(questionID)
	q.TopAnswerID = &answerID
	f.store.PutQuestion(q)
}

func (f *fixture) topAnswer(t *testing.T) *string {
	t.Helper()
	q, ok := f.store.Question(questionID)
	require.True(t, ok)
	return q.TopAnswerID
}

func (f *fixture) answer(t *testing.T, id string) models.Answer {
	t.Helper()
	a, ok := f.store.Answer(id)
	require.True(t, ok, "answer %s missing", id)
	return a
}

func (f *fixture) mustRecalculate(t *testing.T) *TopAnswerChange {
	t.Helper()
	change, err := f.svc.TopAnswer.RecalculateTopAnswer(context.Background(), questionID)
	require.NoError(t, err)
	return change
}

func strPtr(s string) *string {
	return &s
}

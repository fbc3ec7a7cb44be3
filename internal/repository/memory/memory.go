// Package memory holds map-backed repositories with the same semantics as the
// Postgres ones. Records are copied in and out so callers never share state
// with the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hidaya/internal/errorz"
	"hidaya/internal/models"
	"hidaya/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu        sync.RWMutex
	questions map[string]models.Question
	answers   map[string]models.Answer
	votes     map[string]models.Vote
	flags     map[string]models.Flag
	users     map[string]models.User

	// Now is used for timestamps assigned by the store.
	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		questions: make(map[string]models.Question),
		answers:   make(map[string]models.Answer),
		votes:     make(map[string]models.Vote),
		flags:     make(map[string]models.Flag),
		users:     make(map[string]models.User),
		Now:       time.Now,
	}
}

// NewRepository returns a repository aggregate backed by a fresh Store.
func NewRepository() (*repository.Repository, *Store) {
	s := NewStore()
	return &repository.Repository{
		Question: &Questions{s},
		Answer:   &Answers{s},
		Vote:     &Votes{s},
		Flag:     &Flags{s},
		User:     &Users{s},
	}, s
}

func (s *Store) PutUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = user
}

func (s *Store) PutQuestion(question models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[question.QuestionID] = question
}

func (s *Store) PutAnswer(answer models.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[answer.AnswerID] = answer
}

func (s *Store) PutFlag(flag models.Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[flag.FlagID] = flag
}

func (s *Store) Question(questionID string) (models.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[questionID]
	return q, ok
}

func (s *Store) Answer(answerID string) (models.Answer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.answers[answerID]
	return a, ok
}

func (s *Store) Flag(flagID string) (models.Flag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flags[flagID]
	return f, ok
}

// VotesOf returns every vote row of the user on the question.
func (s *Store) VotesOf(questionID, userID string) []models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Vote
	for _, v := range s.votes {
		if v.QuestionID == questionID && v.VotedBy == userID {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) VoteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.votes)
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, errorz.ErrNotFound)
}

type Questions struct{ s *Store }

func (r *Questions) Create(_ context.Context, question *models.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if question.QuestionID == "" {
		question.QuestionID = uuid.New().String()
	}
	now := r.s.Now()
	question.CreatedAt = now
	question.UpdatedAt = now
	r.s.questions[question.QuestionID] = *question
	return nil
}

func (r *Questions) GetByID(_ context.Context, questionID string) (*models.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q, ok := r.s.questions[questionID]
	if !ok {
		return nil, notFound("question", questionID)
	}
	return &q, nil
}

func (r *Questions) Update(_ context.Context, question *models.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[question.QuestionID]
	if !ok {
		return notFound("question", question.QuestionID)
	}
	q.Text = question.Text
	q.Category = question.Category
	q.IsPublic = question.IsPublic
	q.AIAnswer = question.AIAnswer
	q.Tags = question.Tags
	q.UpdatedAt = r.s.Now()
	question.UpdatedAt = q.UpdatedAt
	r.s.questions[q.QuestionID] = q
	return nil
}

func (r *Questions) SetTopAnswer(_ context.Context, questionID string, answerID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[questionID]
	if !ok {
		return notFound("question", questionID)
	}
	if answerID == nil {
		q.TopAnswerID = nil
	} else {
		id := *answerID
		q.TopAnswerID = &id
	}
	r.s.questions[questionID] = q
	return nil
}

func (r *Questions) SetFlagged(_ context.Context, questionID string, flagged bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[questionID]
	if !ok {
		return notFound("question", questionID)
	}
	q.IsFlagged = flagged
	r.s.questions[questionID] = q
	return nil
}

func (r *Questions) Delete(_ context.Context, questionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.questions[questionID]; !ok {
		return notFound("question", questionID)
	}
	delete(r.s.questions, questionID)
	return nil
}

type Answers struct{ s *Store }

func (r *Answers) Create(_ context.Context, answer *models.Answer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if answer.AnswerID == "" {
		answer.AnswerID = uuid.New().String()
	}
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = r.s.Now()
	}
	answer.UpdatedAt = answer.CreatedAt
	r.s.answers[answer.AnswerID] = *answer
	return nil
}

func (r *Answers) GetByID(_ context.Context, answerID string) (*models.Answer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.answers[answerID]
	if !ok {
		return nil, notFound("answer", answerID)
	}
	return &a, nil
}

func (r *Answers) GetByQuestionID(_ context.Context, questionID string) ([]*models.Answer, error) {
	return r.collect(questionID, func(*models.Answer) bool { return true }), nil
}

func (r *Answers) GetEligibleByQuestionID(_ context.Context, questionID string) ([]*models.Answer, error) {
	answers := r.collect(questionID, (*models.Answer).Eligible)
	sort.SliceStable(answers, func(i, j int) bool {
		if answers[i].UpvotesCount != answers[j].UpvotesCount {
			return answers[i].UpvotesCount > answers[j].UpvotesCount
		}
		return answers[i].CreatedAt.Before(answers[j].CreatedAt)
	})
	return answers, nil
}

func (r *Answers) collect(questionID string, keep func(*models.Answer) bool) []*models.Answer {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.Answer
	for _, a := range r.s.answers {
		a := a
		if a.QuestionID == questionID && keep(&a) {
			out = append(out, &a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *Answers) update(answerID string, fn func(a *models.Answer)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.answers[answerID]
	if !ok {
		return notFound("answer", answerID)
	}
	fn(&a)
	r.s.answers[answerID] = a
	return nil
}

func (r *Answers) AddUpvotes(_ context.Context, answerID string, delta int) error {
	return r.update(answerID, func(a *models.Answer) {
		a.UpvotesCount += delta
		if a.UpvotesCount < 0 {
			a.UpvotesCount = 0
		}
	})
}

func (r *Answers) UpdateByAdmin(_ context.Context, answerID, text string) error {
	return r.update(answerID, func(a *models.Answer) {
		a.Text = text
		a.UpvotesCount = 0
		a.UpdatedAt = r.s.Now()
	})
}

func (r *Answers) Review(_ context.Context, answerID, text string) error {
	return r.update(answerID, func(a *models.Answer) {
		a.Text = text
		a.HiddenTemporary = false
		a.UpvotesCount = 0
		a.UpdatedAt = r.s.Now()
	})
}

func (r *Answers) SetHidden(_ context.Context, answerID string, hidden bool) error {
	return r.update(answerID, func(a *models.Answer) { a.IsHidden = hidden })
}

func (r *Answers) SetFlagged(_ context.Context, answerID string, flagged bool) error {
	return r.update(answerID, func(a *models.Answer) { a.IsFlagged = flagged })
}

func (r *Answers) HideAllTemporarily(_ context.Context, questionID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, a := range r.s.answers {
		if a.QuestionID == questionID {
			a.HiddenTemporary = true
			r.s.answers[id] = a
			n++
		}
	}
	return n, nil
}

func (r *Answers) Delete(_ context.Context, answerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.answers[answerID]; !ok {
		return notFound("answer", answerID)
	}
	delete(r.s.answers, answerID)
	return nil
}

func (r *Answers) DeleteByQuestionID(_ context.Context, questionID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, a := range r.s.answers {
		if a.QuestionID == questionID {
			delete(r.s.answers, id)
			n++
		}
	}
	return n, nil
}

type Votes struct{ s *Store }

func (r *Votes) GetByQuestionAndUser(_ context.Context, questionID, userID string) (*models.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, v := range r.s.votes {
		if v.QuestionID == questionID && v.VotedBy == userID {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("vote of %s on question %s: %w", userID, questionID, errorz.ErrNotFound)
}

func (r *Votes) Create(_ context.Context, vote *models.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, v := range r.s.votes {
		if v.QuestionID == vote.QuestionID && v.VotedBy == vote.VotedBy {
			return fmt.Errorf("vote of %s on question %s already exists: %w", vote.VotedBy, vote.QuestionID, errorz.ErrConflict)
		}
	}
	if vote.VoteID == "" {
		vote.VoteID = uuid.New().String()
	}
	now := r.s.Now()
	vote.CreatedAt = now
	vote.UpdatedAt = now
	r.s.votes[vote.VoteID] = *vote
	return nil
}

func (r *Votes) UpdateAnswer(_ context.Context, voteID, answerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.votes[voteID]
	if !ok {
		return notFound("vote", voteID)
	}
	v.AnswerID = answerID
	v.UpdatedAt = r.s.Now()
	r.s.votes[voteID] = v
	return nil
}

func (r *Votes) Delete(_ context.Context, voteID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.votes[voteID]; !ok {
		return notFound("vote", voteID)
	}
	delete(r.s.votes, voteID)
	return nil
}

func (r *Votes) DeleteByAnswerID(_ context.Context, answerID string) (int64, error) {
	return r.deleteWhere(func(v models.Vote) bool { return v.AnswerID == answerID }), nil
}

func (r *Votes) DeleteByQuestionID(_ context.Context, questionID string) (int64, error) {
	return r.deleteWhere(func(v models.Vote) bool { return v.QuestionID == questionID }), nil
}

func (r *Votes) deleteWhere(match func(models.Vote) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, v := range r.s.votes {
		if match(v) {
			delete(r.s.votes, id)
			n++
		}
	}
	return n
}

type Flags struct{ s *Store }

func (r *Flags) Create(_ context.Context, flag *models.Flag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if flag.FlagID == "" {
		flag.FlagID = uuid.New().String()
	}
	flag.Status = models.FlagPending
	flag.CreatedAt = r.s.Now()
	r.s.flags[flag.FlagID] = *flag
	return nil
}

func (r *Flags) GetByID(_ context.Context, flagID string) (*models.Flag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.flags[flagID]
	if !ok {
		return nil, notFound("flag", flagID)
	}
	return &f, nil
}

func (r *Flags) Transition(_ context.Context, flagID string, to models.FlagStatus, at time.Time) (*models.Flag, error) {
	if !to.Terminal() {
		return nil, fmt.Errorf("flag status %q is not terminal: %w", to, errorz.ErrInvalidInput)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.flags[flagID]
	if !ok {
		return nil, notFound("flag", flagID)
	}
	if f.Status != models.FlagPending {
		return nil, fmt.Errorf("flag %s is already %s: %w", flagID, f.Status, errorz.ErrConflict)
	}
	f.Status = to
	if to == models.FlagDismissed {
		stamp := at
		f.NotificationSentAtDismissed = &stamp
	}
	r.s.flags[flagID] = f
	return &f, nil
}

func (r *Flags) stamp(flagID string, fn func(f *models.Flag)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.flags[flagID]
	if !ok {
		return notFound("flag", flagID)
	}
	fn(&f)
	r.s.flags[flagID] = f
	return nil
}

func (r *Flags) MarkNotificationSent(_ context.Context, flagID string, at time.Time) error {
	return r.stamp(flagID, func(f *models.Flag) { f.NotificationSentAt = &at })
}

func (r *Flags) MarkDismissedNotified(_ context.Context, flagID string, at time.Time) error {
	return r.stamp(flagID, func(f *models.Flag) { f.NotificationSentAtDismissed = &at })
}

func (r *Flags) Delete(_ context.Context, flagID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.flags[flagID]; !ok {
		return notFound("flag", flagID)
	}
	delete(r.s.flags, flagID)
	return nil
}

func (r *Flags) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, f := range r.s.flags {
		if f.Status == models.FlagPending || f.Status == models.FlagDismissed {
			continue
		}
		if f.NotificationSentAt != nil && !f.NotificationSentAt.After(cutoff) {
			delete(r.s.flags, id)
			n++
		}
	}
	return n, nil
}

func (r *Flags) ListDismissedDue(_ context.Context, cutoff time.Time) ([]*models.Flag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.Flag
	for _, f := range r.s.flags {
		f := f
		if f.Status != models.FlagDismissed {
			continue
		}
		if f.NotificationSentAtDismissed == nil || !f.NotificationSentAtDismissed.After(cutoff) {
			out = append(out, &f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type Users struct{ s *Store }

func (r *Users) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return &u, nil
}

func (r *Users) GetFirstByRole(_ context.Context, role models.Role) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var first *models.User
	for _, u := range r.s.users {
		u := u
		if u.Role != role {
			continue
		}
		if first == nil || u.CreatedAt.Before(first.CreatedAt) ||
			(u.CreatedAt.Equal(first.CreatedAt) && u.UserID < first.UserID) {
			first = &u
		}
	}
	if first == nil {
		return nil, fmt.Errorf("user with role %s: %w", role, errorz.ErrNotFound)
	}
	return first, nil
}

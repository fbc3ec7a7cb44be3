package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"hidaya/internal/errorz"
	"hidaya/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickTopAnswer(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	tests := []struct {
		name    string
		answers []*models.Answer
		want    string
	}{
		{
			name: "no answers",
			want: "",
		},
		{
			name: "most votes wins",
			answers: []*models.Answer{
				{AnswerID: "a1", UpvotesCount: 1, CreatedAt: t1},
				{AnswerID: "a2", UpvotesCount: 3, CreatedAt: t2},
			},
			want: "a2",
		},
		{
			name: "tie goes to earlier answer",
			answers: []*models.Answer{
				{AnswerID: "a2", UpvotesCount: 2, CreatedAt: t2},
				{AnswerID: "a1", UpvotesCount: 2, CreatedAt: t1},
			},
			want: "a1",
		},
		{
			name: "identical rank goes to smaller id",
			answers: []*models.Answer{
				{AnswerID: "b", UpvotesCount: 2, CreatedAt: t1},
				{AnswerID: "a", UpvotesCount: 2, CreatedAt: t1},
			},
			want: "a",
		},
		{
			name: "ineligible answers are skipped",
			answers: []*models.Answer{
				{AnswerID: "flagged", UpvotesCount: 9, IsFlagged: true, CreatedAt: t1},
				{AnswerID: "hidden", UpvotesCount: 8, IsHidden: true, CreatedAt: t1},
				{AnswerID: "temp", UpvotesCount: 7, HiddenTemporary: true, CreatedAt: t1},
				{AnswerID: "ok", UpvotesCount: 0, CreatedAt: t2},
			},
			want: "ok",
		},
		{
			name: "nothing eligible",
			answers: []*models.Answer{
				{AnswerID: "flagged", UpvotesCount: 9, IsFlagged: true, CreatedAt: t1},
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := pickTopAnswer(tt.answers)
			if tt.want == "" {
				assert.Nil(t, top)
				return
			}
			require.NotNil(t, top)
			assert.Equal(t, tt.want, top.AnswerID)
		})
	}
}

func TestTopAnswerChange_Changed(t *testing.T) {
	tests := []struct {
		name     string
		previous *string
		current  *string
		want     bool
	}{
		{"both empty", nil, nil, false},
		{"gained", nil, strPtr("a1"), true},
		{"lost", strPtr("a1"), nil, true},
		{"same", strPtr("a1"), strPtr("a1"), false},
		{"moved", strPtr("a1"), strPtr("a2"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &TopAnswerChange{Previous: tt.previous, Current: tt.current}
			assert.Equal(t, tt.want, c.Changed())
		})
	}
}

func TestRecalculateTopAnswer_TieBreakScenario(t *testing.T) {
	f := newFixture(t)
	f.putAnswer("a1", vol1ID, 2, time.Minute)
	f.putAnswer("a2", vol2ID, 2, 2*time.Minute)

	change := f.mustRecalculate(t)

	assert.Nil(t, change.Previous)
	require.NotNil(t, change.Current)
	assert.Equal(t, "a1", *change.Current)
	assert.Equal(t, "a1", *f.topAnswer(t))
	assert.Len(t, f.notifier.to(askerID, models.NotiTopAnswerChanged), 1)
}

func TestRecalculateTopAnswer_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.putAnswer("a1", vol1ID, 1, time.Minute)
	f.putAnswer("a2", vol2ID, 4, 2*time.Minute)

	first := f.mustRecalculate(t)
	second := f.mustRecalculate(t)

	assert.Equal(t, *first.Current, *second.Current)
	assert.False(t, second.Changed())
	assert.Len(t, f.notifier.to(askerID, models.NotiTopAnswerChanged), 1)
}

func TestRecalculateTopAnswer_ClearsWhenNothingEligible(t *testing.T) {
	f := newFixture(t)
	f.putAnswer("a1", vol1ID, 3, time.Minute)
	f.setTop("a1")

	a := f.answer(t, "a1")
	a.IsFlagged = true
	f.store.PutAnswer(a)

	change := f.mustRecalculate(t)

	assert.True(t, change.Changed())
	assert.Nil(t, change.Current)
	assert.Nil(t, f.topAnswer(t))
	assert.Empty(t, f.notifier.to(askerID, models.NotiTopAnswerChanged))
}

func TestRecalculateTopAnswer_UnknownQuestion(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.TopAnswer.RecalculateTopAnswer(context.Background(), "missing")
	assert.ErrorIs(t, err, errorz.ErrNotFound)
}

// After any sequence of votes, hides and flags, the top answer is either empty
// with nothing eligible or an eligible answer no other eligible answer beats.
func TestTopAnswer_RandomOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	answerIDs := []string{"a1", "a2", "a3", "a4"}
	authors := []string{vol1ID, vol2ID, vol3ID, vol1ID}
	for i, id := range answerIDs {
		f.putAnswer(id, authors[i], 0, time.Duration(i+1)*time.Minute)
	}
	voters := []string{"u1", "u2", "u3", "u4", "u5", "u6"}

	for step := 0; step < 300; step++ {
		id := answerIDs[rng.Intn(len(answerIDs))]

		switch rng.Intn(4) {
		case 0, 1:
			_, err := f.svc.Vote.CastVote(ctx, questionID, id, voters[rng.Intn(len(voters))])
			require.NoError(t, err)
		case 2:
			_, err := f.svc.Answer.HideAnswer(ctx, id, rng.Intn(2) == 0)
			require.NoError(t, err)
		case 3:
			flag, err := f.svc.Moderation.SubmitFlag(ctx, SubmitFlagRequest{
				ItemType: models.ItemAnswer, ItemID: id, ReportedBy: reporterID, Reason: "spam",
			})
			require.NoError(t, err)
			_, err = f.svc.Moderation.RejectFlag(ctx, flag.FlagID)
			require.NoError(t, err)
		}

		assertTopAnswerConsistent(t, f)
		for _, voter := range voters {
			assert.LessOrEqual(t, len(f.store.VotesOf(questionID, voter)), 1)
		}
	}
}

func assertTopAnswerConsistent(t *testing.T, f *fixture) {
	t.Helper()

	answers, err := f.rep.Answer.GetByQuestionID(context.Background(), questionID)
	require.NoError(t, err)

	var eligible []*models.Answer
	for _, a := range answers {
		assert.GreaterOrEqual(t, a.UpvotesCount, 0)
		if a.Eligible() {
			eligible = append(eligible, a)
		}
	}

	top := f.topAnswer(t)
	if len(eligible) == 0 {
		assert.Nil(t, top)
		return
	}
	require.NotNil(t, top)

	winner := f.answer(t, *top)
	require.True(t, winner.Eligible())
	for _, a := range eligible {
		if a.AnswerID == winner.AnswerID {
			continue
		}
		better := a.UpvotesCount > winner.UpvotesCount ||
			(a.UpvotesCount == winner.UpvotesCount && a.CreatedAt.Before(winner.CreatedAt))
		assert.False(t, better, "answer %s outranks top answer %s", a.AnswerID, winner.AnswerID)
	}
}

package quizflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/quiz"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/reward"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	submissions int
	fail        error
	reject      bool
}

func (f *fakeLedger) SubmitQuizCompletion(_ context.Context, _ session.ID, score, totalQuestions int) (reward.Outcome, error) {
	f.submissions++
	if f.fail != nil {
		return reward.Outcome{}, f.fail
	}
	passed := score >= quiz.PassingScore && !f.reject
	outcome := reward.Outcome{
		Passed:         passed,
		PassingScore:   quiz.PassingScore,
		TotalQuestions: totalQuestions,
		NewBadges:      []string{},
	}
	if passed {
		outcome.PointsAwarded = score * quiz.PointsPerCorrectAnswer
	}
	return outcome, nil
}

type fakeClaimCache struct {
	claimed  map[string]bool
	failRead error
}

func newFakeClaimCache() *fakeClaimCache {
	return &fakeClaimCache{claimed: make(map[string]bool)}
}

func (f *fakeClaimCache) key(userID session.UserID, sessionID session.ID) string {
	return string(userID) + "/" + string(sessionID)
}

func (f *fakeClaimCache) IsClaimed(_ context.Context, userID session.UserID, sessionID session.ID) (bool, error) {
	if f.failRead != nil {
		return false, f.failRead
	}
	return f.claimed[f.key(userID, sessionID)], nil
}

func (f *fakeClaimCache) MarkClaimed(_ context.Context, userID session.UserID, sessionID session.ID) error {
	f.claimed[f.key(userID, sessionID)] = true
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func quizSession(t *testing.T, questions int) *session.Session {
	t.Helper()
	set := make([]session.QuizQuestion, 0, questions)
	for i := 0; i < questions; i++ {
		answer := fmt.Sprintf("right-%d", i)
		q, err := session.NewQuizQuestion(
			fmt.Sprintf("question %d", i),
			[]string{answer, "wrong-1", "wrong-2"},
			answer,
		)
		assert.NoError(t, err)
		set = append(set, q)
	}
	return &session.Session{
		ID:            "sess-quiz",
		Creator:       session.UserRefFromID("user-2"),
		Title:         "Physics Recap",
		Type:          session.TypeVideo,
		Duration:      time.Hour,
		ScheduledAt:   time.Now().Add(-2 * time.Hour),
		QuizQuestions: set,
	}
}

// completeAttempt answers correct questions correctly and the rest wrong,
// then submits.
func completeAttempt(t *testing.T, a *quiz.Attempt, correct int) {
	t.Helper()
	for i := 0; i < a.Total(); i++ {
		answer := "wrong-1"
		if i < correct {
			answer = fmt.Sprintf("right-%d", i)
		}
		assert.NoError(t, a.Answer(answer))
		if i < a.Total()-1 {
			assert.NoError(t, a.Next())
		}
	}
	_, err := a.Submit()
	assert.NoError(t, err)
}

func newEngine(ledger *fakeLedger, cache *fakeClaimCache) *Engine {
	if cache == nil {
		cache = newFakeClaimCache()
	}
	return New(Config{UserID: "me", Ledger: ledger, Claims: cache})
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestOpen_MemoizesAttemptPerSession(t *testing.T) {
	e := newEngine(&fakeLedger{}, nil)
	sess := quizSession(t, 6)

	first, err := e.Open(sess)
	assert.NoError(t, err)
	second, err := e.Open(sess)
	assert.NoError(t, err)
	assert.Same(t, first, second)

	e.Close(sess.ID)
	third, err := e.Open(sess)
	assert.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestOpen_RequiresQuestionSet(t *testing.T) {
	e := newEngine(&fakeLedger{}, nil)
	sess := quizSession(t, 6)
	sess.QuizQuestions = nil

	_, err := e.Open(sess)
	assert.ErrorIs(t, err, shared.ErrQuizNotAvailable)
}

func TestSubmit_ScoresAndRequiresCompletion(t *testing.T) {
	e := newEngine(&fakeLedger{}, nil)
	attempt, err := e.Open(quizSession(t, 6))
	assert.NoError(t, err)

	_, err = e.Submit(attempt)
	assert.ErrorIs(t, err, shared.ErrQuizIncomplete)

	for i := 0; i < attempt.Total(); i++ {
		assert.NoError(t, attempt.Answer(fmt.Sprintf("right-%d", i)))
		if i < attempt.Total()-1 {
			assert.NoError(t, attempt.Next())
		}
	}
	score, err := e.Submit(attempt)
	assert.NoError(t, err)
	assert.Equal(t, 6, score)
	assert.True(t, attempt.HasPassed())
}

func TestClaim_GrantsRewardOnPassingAttempt(t *testing.T) {
	ledger := &fakeLedger{}
	cache := newFakeClaimCache()
	e := newEngine(ledger, cache)
	sess := quizSession(t, 6)

	attempt, err := e.Open(sess)
	assert.NoError(t, err)
	completeAttempt(t, attempt, 5)
	assert.True(t, e.CanClaim(context.Background(), attempt))

	outcome, err := e.Claim(context.Background(), attempt)
	assert.NoError(t, err)
	assert.True(t, outcome.Passed)
	assert.Equal(t, 50, outcome.PointsAwarded)
	assert.Equal(t, 1, ledger.submissions)

	claimed, _ := cache.IsClaimed(context.Background(), "me", sess.ID)
	assert.True(t, claimed)
	assert.False(t, e.CanClaim(context.Background(), attempt))
}

func TestClaim_RepeatIsNoOpReturningPriorOutcome(t *testing.T) {
	ledger := &fakeLedger{}
	e := newEngine(ledger, nil)
	attempt, err := e.Open(quizSession(t, 6))
	assert.NoError(t, err)
	completeAttempt(t, attempt, 4)

	first, err := e.Claim(context.Background(), attempt)
	assert.NoError(t, err)

	second, err := e.Claim(context.Background(), attempt)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, ledger.submissions, "a repeat must not hit the ledger again")
}

func TestClaim_EarlierRunFlagBlocksWithAlreadyClaimed(t *testing.T) {
	ledger := &fakeLedger{}
	cache := newFakeClaimCache()
	sess := quizSession(t, 6)
	assert.NoError(t, cache.MarkClaimed(context.Background(), "me", sess.ID))

	e := newEngine(ledger, cache)
	attempt, err := e.Open(sess)
	assert.NoError(t, err)
	completeAttempt(t, attempt, 5)

	_, err = e.Claim(context.Background(), attempt)
	assert.ErrorIs(t, err, shared.ErrAlreadyClaimed)
	assert.Zero(t, ledger.submissions)
}

func TestClaim_WithoutPassIsBlockedLocally(t *testing.T) {
	ledger := &fakeLedger{}
	e := newEngine(ledger, nil)
	attempt, err := e.Open(quizSession(t, 6))
	assert.NoError(t, err)

	// Incomplete attempt
	_, err = e.Claim(context.Background(), attempt)
	assert.ErrorIs(t, err, shared.ErrClaimNotAllowed)

	// Completed but failing
	completeAttempt(t, attempt, 3)
	assert.False(t, e.CanClaim(context.Background(), attempt))
	_, err = e.Claim(context.Background(), attempt)
	assert.ErrorIs(t, err, shared.ErrClaimNotAllowed)
	assert.Zero(t, ledger.submissions)
}

func TestClaim_LedgerFailureLeavesRetryPossible(t *testing.T) {
	ledger := &fakeLedger{fail: errors.New("ledger down")}
	cache := newFakeClaimCache()
	e := newEngine(ledger, cache)
	attempt, err := e.Open(quizSession(t, 6))
	assert.NoError(t, err)
	completeAttempt(t, attempt, 5)

	_, err = e.Claim(context.Background(), attempt)
	assert.ErrorIs(t, err, shared.ErrExternalService)

	claimed, _ := cache.IsClaimed(context.Background(), "me", attempt.SessionID())
	assert.False(t, claimed, "a failed claim must not be marked claimed")

	ledger.fail = nil
	outcome, err := e.Claim(context.Background(), attempt)
	assert.NoError(t, err)
	assert.True(t, outcome.Passed)
	assert.Equal(t, 2, ledger.submissions)
}

func TestClaim_LedgerRejectionKeepsGateOpen(t *testing.T) {
	ledger := &fakeLedger{reject: true}
	cache := newFakeClaimCache()
	e := newEngine(ledger, cache)
	attempt, err := e.Open(quizSession(t, 6))
	assert.NoError(t, err)
	completeAttempt(t, attempt, 5)

	outcome, err := e.Claim(context.Background(), attempt)
	assert.ErrorIs(t, err, shared.ErrClaimRejected)
	assert.False(t, outcome.Passed)

	claimed, _ := cache.IsClaimed(context.Background(), "me", attempt.SessionID())
	assert.False(t, claimed)

	// The ledger reconsiders; the retry goes through.
	ledger.reject = false
	outcome, err = e.Claim(context.Background(), attempt)
	assert.NoError(t, err)
	assert.True(t, outcome.Passed)
}

func TestCanClaim_FlagReadFailureLeavesClaimingAllowed(t *testing.T) {
	cache := newFakeClaimCache()
	cache.failRead = errors.New("cache unreachable")
	e := newEngine(&fakeLedger{}, cache)
	attempt, err := e.Open(quizSession(t, 6))
	assert.NoError(t, err)
	completeAttempt(t, attempt, 5)

	assert.True(t, e.CanClaim(context.Background(), attempt))
}

func TestRetake_ResetsAttemptButNotClaim(t *testing.T) {
	ledger := &fakeLedger{}
	e := newEngine(ledger, nil)
	attempt, err := e.Open(quizSession(t, 6))
	assert.NoError(t, err)
	completeAttempt(t, attempt, 4)

	_, err = e.Claim(context.Background(), attempt)
	assert.NoError(t, err)

	attempt.Retake()
	completeAttempt(t, attempt, 6)

	// The claim gate remembers the grant across retakes.
	outcome, err := e.Claim(context.Background(), attempt)
	assert.NoError(t, err)
	assert.Equal(t, 40, outcome.PointsAwarded, "repeat returns the original outcome, not the retake score")
	assert.Equal(t, 1, ledger.submissions)
}

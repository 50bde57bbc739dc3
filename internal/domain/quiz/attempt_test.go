package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

func quizSession(t *testing.T, n int) *session.Session {
	t.Helper()
	questions := make([]session.QuizQuestion, 0, n)
	answers := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}
	for i := 0; i < n; i++ {
		q, err := session.NewQuizQuestion(
			"question "+answers[i],
			[]string{answers[i], "wrong-1", "wrong-2"},
			answers[i],
		)
		assert.NoError(t, err)
		questions = append(questions, q)
	}
	return &session.Session{
		ID:            "sess-quiz",
		Creator:       session.UserRefFromID("user-1"),
		Title:         "Go Basics",
		Type:          session.TypeVideo,
		Duration:      time.Hour,
		ScheduledAt:   time.Now().Add(-2 * time.Hour),
		QuizQuestions: questions,
	}
}

func answerAll(t *testing.T, a *Attempt, correct int) {
	t.Helper()
	for i := 0; i < a.Total(); i++ {
		choice := a.Current().Answer
		if i >= correct {
			choice = "wrong-1"
		}
		assert.NoError(t, a.Answer(choice))
		if i < a.Total()-1 {
			assert.NoError(t, a.Next())
		}
	}
}

func TestNewAttempt_RequiresQuestionSet(t *testing.T) {
	s := quizSession(t, 0)
	_, err := NewAttempt(s)
	assert.ErrorIs(t, err, shared.ErrQuizNotAvailable)
	assert.ErrorIs(t, err, shared.ErrNotAvailable)
}

func TestAttempt_NextRequiresAnswer(t *testing.T) {
	a, err := NewAttempt(quizSession(t, 3))
	assert.NoError(t, err)
	assert.Equal(t, StateNotStarted, a.State())

	assert.ErrorIs(t, a.Next(), shared.ErrQuestionUnanswered)
	assert.Equal(t, 0, a.Step())

	assert.NoError(t, a.Answer(a.Current().Answer))
	assert.Equal(t, StateAnswering, a.State())
	assert.NoError(t, a.Next())
	assert.Equal(t, 1, a.Step())
}

func TestAttempt_BackBoundedAtZero(t *testing.T) {
	a, _ := NewAttempt(quizSession(t, 3))
	a.Back()
	assert.Equal(t, 0, a.Step())

	assert.NoError(t, a.Answer(a.Current().Answer))
	assert.NoError(t, a.Next())
	a.Back()
	a.Back()
	assert.Equal(t, 0, a.Step())
}

func TestAttempt_AnswerMustBeAnOption(t *testing.T) {
	a, _ := NewAttempt(quizSession(t, 2))
	err := a.Answer("not an option")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAttempt_SubmitRequiresAllAnswered(t *testing.T) {
	a, _ := NewAttempt(quizSession(t, 3))
	assert.NoError(t, a.Answer(a.Current().Answer))

	_, err := a.Submit()
	assert.ErrorIs(t, err, shared.ErrQuizIncomplete)
}

func TestAttempt_ScoringIsExactAndDeterministic(t *testing.T) {
	a, _ := NewAttempt(quizSession(t, 6))
	answerAll(t, a, 5)

	score, err := a.Submit()
	assert.NoError(t, err)
	assert.Equal(t, 5, score)
	assert.True(t, a.HasPassed())
	assert.Equal(t, 50, a.EstimatedPoints())

	// Identical answer set on retake yields the identical score.
	a.Retake()
	assert.Equal(t, StateAnswering, a.State())
	assert.Equal(t, 0, a.Step())
	answerAll(t, a, 5)
	score, err = a.Submit()
	assert.NoError(t, err)
	assert.Equal(t, 5, score)
}

func TestAttempt_FixedPassThreshold(t *testing.T) {
	a, _ := NewAttempt(quizSession(t, 6))
	answerAll(t, a, 3)
	score, err := a.Submit()
	assert.NoError(t, err)
	assert.Equal(t, 3, score)
	assert.False(t, a.HasPassed())

	b, _ := NewAttempt(quizSession(t, 6))
	answerAll(t, b, 4)
	score, err = b.Submit()
	assert.NoError(t, err)
	assert.Equal(t, 4, score)
	assert.True(t, b.HasPassed())
}

func TestAttempt_ShortSetCannotPass(t *testing.T) {
	// The threshold is fixed at PassingScore regardless of set size: a
	// 3-question set is structurally unpassable, and CanPass says so.
	a, _ := NewAttempt(quizSession(t, 3))
	assert.False(t, a.CanPass())

	answerAll(t, a, 3)
	score, err := a.Submit()
	assert.NoError(t, err)
	assert.Equal(t, 3, score)
	assert.False(t, a.HasPassed())
}

func TestAttempt_CompletedRejectsFurtherTransitions(t *testing.T) {
	a, _ := NewAttempt(quizSession(t, 4))
	answerAll(t, a, 4)
	_, err := a.Submit()
	assert.NoError(t, err)

	assert.ErrorIs(t, a.Answer("alpha"), shared.ErrStateTransition)
	assert.ErrorIs(t, a.Next(), shared.ErrStateTransition)
	_, err = a.Submit()
	assert.ErrorIs(t, err, shared.ErrStateTransition)
}

func TestAttempt_ScoreOnlyWhenCompleted(t *testing.T) {
	a, _ := NewAttempt(quizSession(t, 2))
	_, err := a.Score()
	assert.ErrorIs(t, err, shared.ErrQuizNotCompleted)
}

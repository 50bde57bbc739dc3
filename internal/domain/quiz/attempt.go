// Package quiz contains the per-session quiz attempt state machine: stepping
// through questions, scoring, and the pass rule gating a reward claim.
//
// An attempt is ephemeral client state. It is never persisted; closing the
// quiz discards it, and only the claim outcome survives (in the reward
// ledger and the local claim flag).
package quiz

import (
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

// State of a quiz attempt.
type State string

const (
	// StateNotStarted - the attempt exists but no question was shown yet.
	StateNotStarted State = "not_started"

	// StateAnswering - the user is stepping through questions.
	StateAnswering State = "answering"

	// StateCompleted - all answers submitted and scored.
	StateCompleted State = "completed"
)

// PassingScore is the fixed number of correct answers required to pass,
// independent of how many questions the set contains. With fewer than
// PassingScore questions passing is structurally impossible; CanPass exposes
// that to the caller instead of hiding it.
const PassingScore = 4

// PointsPerCorrectAnswer is the local reward estimate per correct answer.
// The authoritative amount comes from the reward ledger, never from this.
const PointsPerCorrectAnswer = 10

// Attempt is the state machine for one run through a session's quiz.
type Attempt struct {
	sessionID session.ID
	questions []session.QuizQuestion
	answers   map[int]string
	step      int
	score     int
	state     State
}

// NewAttempt opens an attempt over the session's pre-generated question set.
// Returns ErrQuizNotAvailable when the session carries no questions: there
// is no on-demand generation fallback at quiz-open time.
func NewAttempt(s *session.Session) (*Attempt, error) {
	if s == nil || !s.HasQuiz() {
		return nil, shared.ErrQuizNotAvailable
	}
	return &Attempt{
		sessionID: s.ID,
		questions: s.QuizQuestions,
		answers:   make(map[int]string, len(s.QuizQuestions)),
		state:     StateNotStarted,
	}, nil
}

// SessionID returns the session this attempt belongs to.
func (a *Attempt) SessionID() session.ID {
	return a.sessionID
}

// State returns the current state.
func (a *Attempt) State() State {
	return a.state
}

// Step returns the current question index (0-based).
func (a *Attempt) Step() int {
	return a.step
}

// Total returns the number of questions in the set.
func (a *Attempt) Total() int {
	return len(a.questions)
}

// Current returns the question at the cursor.
func (a *Attempt) Current() session.QuizQuestion {
	return a.questions[a.step]
}

// AnswerAt returns the recorded answer for a question index, if any.
func (a *Attempt) AnswerAt(i int) (string, bool) {
	ans, ok := a.answers[i]
	return ans, ok
}

// Answer records the answer for the current question and moves the attempt
// into the answering state. The answer must be one of the question's
// options; anything else is a UI bug and is rejected.
func (a *Attempt) Answer(option string) error {
	if a.state == StateCompleted {
		return shared.NewDomainError("quiz", "Answer", shared.ErrStateTransition, "attempt already completed")
	}
	valid := false
	for _, opt := range a.Current().Options {
		if opt == option {
			valid = true
			break
		}
	}
	if !valid {
		return shared.NewDomainError("quiz", "Answer", shared.ErrInvalidInput, "answer is not one of the question's options")
	}
	a.answers[a.step] = option
	a.state = StateAnswering
	return nil
}

// Next advances the cursor. It refuses to move past an unanswered question
// and refuses to step beyond the last question.
func (a *Attempt) Next() error {
	if a.state == StateCompleted {
		return shared.NewDomainError("quiz", "Next", shared.ErrStateTransition, "attempt already completed")
	}
	if _, ok := a.answers[a.step]; !ok {
		return shared.ErrQuestionUnanswered
	}
	if a.step >= len(a.questions)-1 {
		return shared.NewDomainError("quiz", "Next", shared.ErrValueOutOfRange, "already at the last question")
	}
	a.step++
	return nil
}

// Back moves the cursor one question back, bounded at zero.
func (a *Attempt) Back() {
	if a.state == StateCompleted {
		return
	}
	if a.step > 0 {
		a.step--
	}
}

// AllAnswered reports whether every question has a recorded answer.
func (a *Attempt) AllAnswered() bool {
	return len(a.answers) == len(a.questions)
}

// Submit scores the attempt and completes it. Enabled only once every
// question is answered. Scoring is exact string equality against each
// question's recorded answer, so identical answer sets always produce the
// same score.
func (a *Attempt) Submit() (int, error) {
	if a.state == StateCompleted {
		return 0, shared.NewDomainError("quiz", "Submit", shared.ErrStateTransition, "attempt already completed")
	}
	if !a.AllAnswered() {
		return 0, shared.ErrQuizIncomplete
	}

	score := 0
	for i, q := range a.questions {
		if a.answers[i] == q.Answer {
			score++
		}
	}
	a.score = score
	a.state = StateCompleted
	return score, nil
}

// Score returns the final score of a completed attempt.
func (a *Attempt) Score() (int, error) {
	if a.state != StateCompleted {
		return 0, shared.ErrQuizNotCompleted
	}
	return a.score, nil
}

// HasPassed reports the fixed-threshold pass rule on a completed attempt.
func (a *Attempt) HasPassed() bool {
	return a.state == StateCompleted && a.score >= PassingScore
}

// CanPass reports whether the set is large enough for passing to be possible
// at all. False for short sets (fewer than PassingScore questions).
func (a *Attempt) CanPass() bool {
	return len(a.questions) >= PassingScore
}

// EstimatedPoints is the local score-based reward estimate shown while the
// claim is pending. Display-only.
func (a *Attempt) EstimatedPoints() int {
	return a.score * PointsPerCorrectAnswer
}

// Retake clears answers, cursor, and score and returns to the first
// question. Claim state is untouched: a granted claim stays granted.
func (a *Attempt) Retake() {
	a.answers = make(map[int]string, len(a.questions))
	a.step = 0
	a.score = 0
	a.state = StateAnswering
}

// Package quizflow orchestrates the post-session knowledge check: opening a
// quiz attempt over a session's pre-generated question set and redeeming a
// passing result through the reward ledger exactly once.
package quizflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/quiz"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/reward"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
	"github.com/peerlink-hub/peerlink-sessions/pkg/mutation"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLLABORATOR CONTRACTS
// ══════════════════════════════════════════════════════════════════════════════

// RewardLedger is the remote reward ledger. It independently judges
// pass/fail; its outcome is authoritative over any local estimate.
type RewardLedger interface {
	SubmitQuizCompletion(ctx context.Context, sessionID session.ID, score, totalQuestions int) (reward.Outcome, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Config wires the engine's collaborators.
type Config struct {
	UserID session.UserID
	Ledger RewardLedger
	Claims session.ClaimCacheRepository
	Events shared.EventPublisher
	Logger *slog.Logger
}

// Engine manages quiz attempts and the claim gate for the current user.
type Engine struct {
	userID session.UserID
	ledger RewardLedger
	claims session.ClaimCacheRepository
	events shared.EventPublisher
	logger *slog.Logger
	guard  *mutation.InflightGuard

	mu       sync.RWMutex
	attempts map[session.ID]*quiz.Attempt
	records  map[reward.ClaimKey]reward.ClaimRecord
}

// New creates an Engine.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		userID:   cfg.UserID,
		ledger:   cfg.Ledger,
		claims:   cfg.Claims,
		events:   cfg.Events,
		logger:   cfg.Logger,
		guard:    mutation.NewInflightGuard(),
		attempts: make(map[session.ID]*quiz.Attempt),
		records:  make(map[reward.ClaimKey]reward.ClaimRecord),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPTS
// ══════════════════════════════════════════════════════════════════════════════

// Open returns the attempt for a session, creating one over the session's
// pre-generated question set. Opening fails with ErrQuizNotAvailable when
// the set is empty; there is no on-demand generation at this point.
func (e *Engine) Open(s *session.Session) (*quiz.Attempt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if attempt, ok := e.attempts[s.ID]; ok {
		return attempt, nil
	}
	attempt, err := quiz.NewAttempt(s)
	if err != nil {
		return nil, err
	}
	e.attempts[s.ID] = attempt
	return attempt, nil
}

// Submit scores a finished attempt and announces the result. Scoring itself
// is the attempt's job; the engine only adds the event so the UI can flip to
// the result view.
func (e *Engine) Submit(attempt *quiz.Attempt) (int, error) {
	if attempt == nil {
		return 0, shared.ErrQuizNotAvailable
	}
	score, err := attempt.Submit()
	if err != nil {
		return 0, err
	}
	e.publish(shared.NewBaseEvent(shared.EventQuizSubmitted, attempt.SessionID().String(), map[string]interface{}{
		"score":  score,
		"total":  attempt.Total(),
		"passed": attempt.HasPassed(),
	}))
	return score, nil
}

// Close discards the session's attempt. The claim state is unaffected.
func (e *Engine) Close(sessionID session.ID) {
	e.mu.Lock()
	delete(e.attempts, sessionID)
	e.mu.Unlock()
}

// ══════════════════════════════════════════════════════════════════════════════
// CLAIM GATE
// ══════════════════════════════════════════════════════════════════════════════

// CanClaim reports whether the claim button should be enabled: a completed,
// passing attempt and no prior successful claim for this session.
func (e *Engine) CanClaim(ctx context.Context, attempt *quiz.Attempt) bool {
	if attempt == nil || !attempt.HasPassed() {
		return false
	}
	claimed, err := e.claimedLocally(ctx, attempt.SessionID())
	if err != nil {
		// If the flag cannot be read, claiming stays allowed; the ledger
		// still rejects duplicates authoritatively.
		e.logger.Error("read claim flag failed", "session_id", attempt.SessionID(), "error", err)
		return true
	}
	return !claimed
}

// Claim redeems a passing attempt through the reward ledger.
//
// At-most-once per (session, user): a repeat against an outcome recorded in
// this process is a no-op returning the prior outcome; a repeat against a
// claim cached from an earlier run fails with ErrAlreadyClaimed (the prior
// outcome is no longer known client-side). On ledger failure nothing is
// marked claimed, so a retry remains possible. A granted claim publishes a
// full user-state resync request instead of incrementing any local points
// counter: the local estimate is never trusted as final state.
func (e *Engine) Claim(ctx context.Context, attempt *quiz.Attempt) (reward.Outcome, error) {
	if attempt == nil {
		return reward.Outcome{}, shared.ErrClaimNotAllowed
	}
	score, err := attempt.Score()
	if err != nil {
		return reward.Outcome{}, shared.ErrClaimNotAllowed
	}
	if !attempt.HasPassed() {
		return reward.Outcome{}, shared.ErrClaimNotAllowed
	}

	sessionID := attempt.SessionID()
	key := reward.ClaimKey{SessionID: sessionID, UserID: e.userID}

	e.mu.RLock()
	record, recorded := e.records[key]
	e.mu.RUnlock()
	if recorded {
		return record.Outcome, nil
	}

	claimed, err := e.claimedLocally(ctx, sessionID)
	if err != nil {
		e.logger.Error("read claim flag failed", "session_id", sessionID, "error", err)
	} else if claimed {
		return reward.Outcome{}, shared.ErrAlreadyClaimed
	}

	if !e.guard.TryBegin(sessionID.String()) {
		return reward.Outcome{}, shared.ErrSessionActionBusy
	}
	defer e.guard.End(sessionID.String())

	var outcome reward.Outcome
	strategy := mutation.ConfirmFirst{Apply: func() {
		// Only a granted claim is recorded; a ledger rejection must leave
		// the gate open for a retry.
		if !outcome.Passed {
			return
		}
		e.mu.Lock()
		e.records[key] = reward.ClaimRecord{Key: key, Outcome: outcome, ClaimedAt: time.Now().UTC()}
		e.mu.Unlock()
	}}
	err = strategy.Run(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = e.ledger.SubmitQuizCompletion(ctx, sessionID, score, attempt.Total())
		return err
	})
	if err != nil {
		e.logger.Error("claim failed", "session_id", sessionID, "score", score, "error", err)
		return reward.Outcome{}, shared.WrapError("reward", "Claim", shared.ErrExternalService, "reward claim failed", err)
	}
	if !outcome.Passed {
		// The ledger disagreed with the local pass estimate. Nothing is
		// marked claimed; the user may retake and try again.
		return outcome, shared.ErrClaimRejected
	}

	if err := e.claims.MarkClaimed(ctx, e.userID, sessionID); err != nil {
		// The claim was granted; a missing local flag only costs one
		// ledger-rejected repeat later.
		e.logger.Error("mark claimed failed", "session_id", sessionID, "error", err)
	}

	e.publish(shared.NewBaseEvent(shared.EventRewardClaimed, sessionID.String(), map[string]interface{}{
		"points_awarded": outcome.PointsAwarded,
		"new_badges":     outcome.NewBadges,
	}))
	e.publish(shared.NewBaseEvent(shared.EventUserResyncRequested, e.userID.String(), nil))
	return outcome, nil
}

// IsClaiming reports whether a claim for the session is in flight.
func (e *Engine) IsClaiming(sessionID session.ID) bool {
	return e.guard.IsPending(sessionID.String())
}

func (e *Engine) claimedLocally(ctx context.Context, sessionID session.ID) (bool, error) {
	e.mu.RLock()
	_, recorded := e.records[reward.ClaimKey{SessionID: sessionID, UserID: e.userID}]
	e.mu.RUnlock()
	if recorded {
		return true, nil
	}
	return e.claims.IsClaimed(ctx, e.userID, sessionID)
}

func (e *Engine) publish(event shared.Event) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(event); err != nil {
		e.logger.Error("publish event failed", "event_type", event.EventType(), "error", err)
	}
}

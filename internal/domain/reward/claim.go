// Package reward contains the claim record tied to a session's quiz result.
// The authoritative ledger is remote; this package models its outcome and
// the at-most-once discipline the client enforces around it.
package reward

import (
	"time"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
)

// ClaimKey identifies a claim: one per (session, user).
type ClaimKey struct {
	SessionID session.ID
	UserID    session.UserID
}

// Outcome is the reward ledger's judgement of a quiz completion. The ledger
// decides pass/fail and the awarded points independently of the client's
// local estimate.
type Outcome struct {
	Passed         bool
	PointsAwarded  int
	PassingScore   int
	TotalQuestions int
	NewBadges      []string
}

// ClaimRecord is the locally cached result of a granted claim. A second
// claim for the same key is a no-op that returns the recorded outcome
// instead of reaching the ledger again.
type ClaimRecord struct {
	Key       ClaimKey
	Outcome   Outcome
	ClaimedAt time.Time
}

package session

import "time"

// Status is the display status of a session, derived from wall-clock time
// and the manual override. It is never stored; every read recomputes it.
type Status string

const (
	// StatusUpcoming - the session has not started yet.
	StatusUpcoming Status = "upcoming"

	// StatusInProgress - the current instant falls inside the scheduled slot.
	StatusInProgress Status = "in_progress"

	// StatusCompleted - the session has ended.
	StatusCompleted Status = "completed"

	// StatusCancelled - the creator cancelled the session. Terminal; wins
	// over every time-derived status.
	StatusCancelled Status = "cancelled"
)

// IsValid checks the status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the session can still change state on its own.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// GracePeriod nominally delays the switch to "completed" after a session's
// scheduled end. The fallthrough in ResolveStatus makes it behaviorally
// inert: the 0-60 minute window after the end also resolves to "completed".
// Kept because the platform API documents the same threshold.
const GracePeriod = 60 * time.Minute

// ResolveStatus derives the display status of a session at the given instant.
// It is the single canonical status computation; list partitioning and card
// labels must all go through it. Pure and total: exactly one status is
// returned for every (session, now) pair.
//
// Rule order matters:
//  1. a manual cancellation wins unconditionally;
//  2. past the grace period after the end -> completed;
//  3. inside the scheduled slot (boundaries inclusive) -> in progress;
//  4. before the start -> upcoming;
//  5. otherwise (ended less than GracePeriod ago) -> completed.
func ResolveStatus(s *Session, now time.Time) Status {
	if s.ManualStatus == ManualStatusCancelled {
		return StatusCancelled
	}

	end := s.EndsAt()
	if now.After(end.Add(GracePeriod)) {
		return StatusCompleted
	}
	if !now.Before(s.ScheduledAt) && !now.After(end) {
		return StatusInProgress
	}
	if now.Before(s.ScheduledAt) {
		return StatusUpcoming
	}
	return StatusCompleted
}

// IsPast reports whether the session is over (completed or cancelled) at the
// given instant. Used when partitioning joined sessions; defined in terms of
// ResolveStatus so the two views can never diverge.
func IsPast(s *Session, now time.Time) bool {
	return ResolveStatus(s, now).IsTerminal()
}

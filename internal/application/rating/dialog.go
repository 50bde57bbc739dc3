// Package rating implements the session rating dialog flow: preloading the
// user's existing rating and submitting a new one through the Session Store.
package rating

import (
	"context"
	"log/slog"

	"github.com/peerlink-hub/peerlink-sessions/internal/application/store"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

// Rater submits a rating. Implemented by the Session Store.
type Rater interface {
	Rate(ctx context.Context, sub store.RatingSubmission) error
}

// Dialog is the open rating dialog's state.
type Dialog struct {
	SessionID session.ID

	// Existing is the user's previously stored rating, preloaded on open so
	// the dialog shows the stars already given. Nil on a first rating.
	Existing *session.UserRating

	// Rating and Comment are the dialog's editable fields.
	Rating  session.Rating
	Comment string

	// Err is the last submission error, shown inline while the dialog stays
	// open.
	Err error
}

// Flow opens and submits rating dialogs.
type Flow struct {
	userID session.UserID
	rater  Rater
	logger *slog.Logger
}

// New creates a Flow.
func New(userID session.UserID, rater Rater, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{userID: userID, rater: rater, logger: logger}
}

// Open builds a dialog for the session, preloading the current user's
// existing rating. The rating list holds duck-typed user references; the
// scan resolves them uniformly through UserRef, never by shape.
func (f *Flow) Open(s *session.Session) *Dialog {
	d := &Dialog{SessionID: s.ID}
	if existing, ok := s.RatingBy(f.userID); ok {
		e := existing
		d.Existing = &e
		d.Rating = existing.Rating
		d.Comment = existing.Comment
	}
	return d
}

// Submit validates and submits the dialog. On success the dialog closes
// (returns true); on failure it stays open with the error set. Resubmitting
// overwrites the user's stored rating server-side, it never appends.
func (f *Flow) Submit(ctx context.Context, d *Dialog) bool {
	if d.Rating <= 0 {
		d.Err = shared.ErrInvalidRatingValue
		return false
	}
	err := f.rater.Rate(ctx, store.RatingSubmission{
		SessionID: d.SessionID,
		Rating:    d.Rating,
		Comment:   d.Comment,
	})
	if err != nil {
		f.logger.Error("rating submit failed", "session_id", d.SessionID, "error", err)
		d.Err = err
		return false
	}
	d.Err = nil
	return true
}

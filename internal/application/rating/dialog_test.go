package rating

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peerlink-hub/peerlink-sessions/internal/application/store"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

type fakeRater struct {
	submissions []store.RatingSubmission
	fail        error
}

func (f *fakeRater) Rate(_ context.Context, sub store.RatingSubmission) error {
	if f.fail != nil {
		return f.fail
	}
	f.submissions = append(f.submissions, sub)
	return nil
}

func ratedSession() *session.Session {
	return &session.Session{
		ID: "sess-1",
		Ratings: []session.UserRating{
			{User: session.UserRefFromID("user-2"), Rating: 5},
			{User: session.UserRefFromSummary(session.UserSummary{ID: "me", Name: "Self"}), Rating: 3, Comment: "okay"},
		},
	}
}

func TestOpen_PreloadsExistingRating(t *testing.T) {
	f := New("me", &fakeRater{}, nil)

	d := f.Open(ratedSession())
	assert.NotNil(t, d.Existing)
	assert.Equal(t, session.Rating(3), d.Rating)
	assert.Equal(t, "okay", d.Comment)
}

func TestOpen_FirstRatingStartsEmpty(t *testing.T) {
	f := New("me", &fakeRater{}, nil)

	d := f.Open(&session.Session{ID: "sess-1"})
	assert.Nil(t, d.Existing)
	assert.Zero(t, d.Rating)
}

func TestSubmit_ClosesOnSuccess(t *testing.T) {
	rater := &fakeRater{}
	f := New("me", rater, nil)

	d := f.Open(&session.Session{ID: "sess-1"})
	d.Rating = 4
	d.Comment = "great session"

	assert.True(t, f.Submit(context.Background(), d))
	assert.Nil(t, d.Err)
	assert.Equal(t, []store.RatingSubmission{{SessionID: "sess-1", Rating: 4, Comment: "great session"}}, rater.submissions)
}

func TestSubmit_NoStarsSelectedStaysOpen(t *testing.T) {
	rater := &fakeRater{}
	f := New("me", rater, nil)

	d := f.Open(&session.Session{ID: "sess-1"})
	assert.False(t, f.Submit(context.Background(), d))
	assert.ErrorIs(t, d.Err, shared.ErrInvalidRatingValue)
	assert.Empty(t, rater.submissions)
}

func TestSubmit_FailureKeepsDialogOpenWithError(t *testing.T) {
	rater := &fakeRater{fail: errors.New("remote says no")}
	f := New("me", rater, nil)

	d := f.Open(&session.Session{ID: "sess-1"})
	d.Rating = 5

	assert.False(t, f.Submit(context.Background(), d))
	assert.Error(t, d.Err)

	// And the retry path works once the failure clears.
	rater.fail = nil
	assert.True(t, f.Submit(context.Background(), d))
	assert.Nil(t, d.Err)
}

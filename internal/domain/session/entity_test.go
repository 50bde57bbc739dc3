package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

func TestNewQuizQuestion_DeduplicatesOptions(t *testing.T) {
	q, err := NewQuizQuestion("What is 2+2?", []string{"4", "3", "4", "5", "3"}, "4")
	assert.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "5"}, q.Options)
	assert.Equal(t, "4", q.Answer)
}

func TestNewQuizQuestion_AnswerKeptAsOption(t *testing.T) {
	q, err := NewQuizQuestion("Capital of Kazakhstan?", []string{"Almaty", "Astana", "Astana"}, "Astana")
	assert.NoError(t, err)
	assert.Contains(t, q.Options, "Astana")

	// A generator that forgot the answer among the options still yields a
	// playable question.
	q, err = NewQuizQuestion("Capital of Kazakhstan?", []string{"Almaty", "Shymkent"}, "Astana")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Almaty", "Shymkent", "Astana"}, q.Options)
}

func TestNewQuizQuestion_Malformed(t *testing.T) {
	_, err := NewQuizQuestion("", []string{"a", "b"}, "a")
	assert.ErrorIs(t, err, shared.ErrInvalidQuestion)

	_, err = NewQuizQuestion("q", []string{"a", "a"}, "a")
	assert.ErrorIs(t, err, shared.ErrInvalidQuestion, "a single distinct option is not a choice")
}

func TestNewQuestionSet_Cap(t *testing.T) {
	raw := make([]QuizQuestion, MaxQuizQuestions+1)
	for i := range raw {
		raw[i] = QuizQuestion{Question: "q", Options: []string{"a", "b"}, Answer: "a"}
	}
	_, err := NewQuestionSet(raw)
	assert.ErrorIs(t, err, shared.ErrTooManyQuestions)

	set, err := NewQuestionSet(raw[:MaxQuizQuestions])
	assert.NoError(t, err)
	assert.Len(t, set, MaxQuizQuestions)
}

func TestPutRating_OverwritesNotAppends(t *testing.T) {
	s := testSession(time.Now(), time.Hour)
	s.PutRating(UserRating{User: UserRefFromID("user-2"), Rating: 4})
	s.PutRating(UserRating{User: UserRefFromID("user-3"), Rating: 3})
	s.PutRating(UserRating{User: UserRefFromID("user-2"), Rating: 5, Comment: "better than I thought"})

	assert.Len(t, s.Ratings, 2)
	r, ok := s.RatingBy("user-2")
	assert.True(t, ok)
	assert.Equal(t, Rating(5), r.Rating)
}

func TestRatingBy_ResolvesHydratedAndBareRefs(t *testing.T) {
	s := testSession(time.Now(), time.Hour)
	s.Ratings = []UserRating{
		{User: UserRefFromID("user-2"), Rating: 4},
		{User: UserRefFromSummary(UserSummary{ID: "user-3", Name: "Aigerim"}), Rating: 5},
	}

	_, ok := s.RatingBy("user-2")
	assert.True(t, ok)
	_, ok = s.RatingBy("user-3")
	assert.True(t, ok)
	_, ok = s.RatingBy("user-4")
	assert.False(t, ok)
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Title:           "Algebra Review",
		Type:            TypeVideo,
		Date:            time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		ClockTime:       "15:00",
		DurationMinutes: 60,
		MeetingLink:     "https://meet.peerlink.app/abc",
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Draft)
		want   error
	}{
		{"missing title", func(d *Draft) { d.Title = "" }, shared.ErrMissingTitle},
		{"missing date", func(d *Draft) { d.Date = time.Time{} }, shared.ErrMissingSchedule},
		{"missing time", func(d *Draft) { d.ClockTime = "" }, shared.ErrMissingSchedule},
		{"bad type", func(d *Draft) { d.Type = "hologram" }, shared.ErrInvalidSessionType},
		{"video without link", func(d *Draft) { d.MeetingLink = "" }, shared.ErrMissingMeetingLink},
		{"in-person without address", func(d *Draft) { d.Type = TypeInPerson; d.MeetingLink = "" }, shared.ErrMissingAddress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.mutate(&d)
			assert.ErrorIs(t, d.Validate(), tc.want)
		})
	}
}

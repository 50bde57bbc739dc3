// Package session contains the domain model for scheduled learning sessions:
// the Session aggregate, its time-derived status, quiz question value objects,
// and peer ratings.
package session

import (
	"strings"
	"time"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ID represents a session identifier (UUID in string form, server-issued).
type ID string

// IsValid checks that the ID is non-empty.
func (id ID) IsValid() bool {
	return len(id) > 0
}

// String returns the string representation.
func (id ID) String() string {
	return string(id)
}

// UserID represents a platform user identifier.
type UserID string

// IsValid checks that the UserID is non-empty.
func (u UserID) IsValid() bool {
	return len(u) > 0
}

// String returns the string representation.
func (u UserID) String() string {
	return string(u)
}

// Rating represents a 1-5 star peer rating.
type Rating int

// IsValid checks that the rating is in the allowed range.
func (r Rating) IsValid() bool {
	return r >= 1 && r <= 5
}

// ══════════════════════════════════════════════════════════════════════════════
// USER REFERENCE
// The platform API returns user references either as a bare ID or as a
// populated object. The union is resolved once at the mapping boundary;
// call sites only ever use ID() and never branch on shape.
// ══════════════════════════════════════════════════════════════════════════════

// UserRef is a tagged union: a bare user ID or a hydrated user summary.
type UserRef struct {
	id   UserID
	user *UserSummary
}

// UserSummary is the display subset of a platform user carried on sessions
// and invites.
type UserSummary struct {
	ID        UserID
	Name      string
	AvatarURL string
}

// UserRefFromID creates an unhydrated reference.
func UserRefFromID(id UserID) UserRef {
	return UserRef{id: id}
}

// UserRefFromSummary creates a hydrated reference.
func UserRefFromSummary(u UserSummary) UserRef {
	return UserRef{id: u.ID, user: &u}
}

// ID returns the referenced user's ID regardless of hydration.
func (r UserRef) ID() UserID {
	return r.id
}

// Summary returns the hydrated user summary, or false if the reference is
// a bare ID.
func (r UserRef) Summary() (UserSummary, bool) {
	if r.user == nil {
		return UserSummary{}, false
	}
	return *r.user, true
}

// Is reports whether the reference points at the given user.
func (r UserRef) Is(id UserID) bool {
	return r.id == id
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Type determines how a session is held.
type Type string

const (
	// TypeVideo is an online session held over a meeting link.
	TypeVideo Type = "video"

	// TypeInPerson is an offline session held at a physical address.
	TypeInPerson Type = "in_person"
)

// IsValid checks the session type.
func (t Type) IsValid() bool {
	return t == TypeVideo || t == TypeInPerson
}

// ManualStatus is a creator-applied status override. The only value is
// "cancelled"; it is terminal and wins over any time-derived status.
type ManualStatus string

const (
	// ManualStatusNone means no override applies.
	ManualStatusNone ManualStatus = ""

	// ManualStatusCancelled marks the session as cancelled.
	ManualStatusCancelled ManualStatus = "cancelled"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ QUESTIONS
// ══════════════════════════════════════════════════════════════════════════════

// MaxQuizQuestions caps the generated question set per session.
const MaxQuizQuestions = 6

// QuizQuestion is one multiple-choice question attached to a session.
// Options contain no duplicate strings and Answer equals exactly one option.
type QuizQuestion struct {
	Question string
	Options  []string
	Answer   string
}

// NewQuizQuestion builds a question, deduplicating option strings while
// preserving their first-seen order. The answer is appended as an option if
// deduplication (or a sloppy generator) left it out.
func NewQuizQuestion(question string, options []string, answer string) (QuizQuestion, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return QuizQuestion{}, shared.ErrInvalidQuestion
	}

	seen := make(map[string]struct{}, len(options))
	deduped := make([]string, 0, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if _, ok := seen[opt]; ok {
			continue
		}
		seen[opt] = struct{}{}
		deduped = append(deduped, opt)
	}
	if _, ok := seen[answer]; !ok {
		deduped = append(deduped, answer)
	}
	if len(deduped) < 2 {
		return QuizQuestion{}, shared.ErrInvalidQuestion
	}

	return QuizQuestion{Question: question, Options: deduped, Answer: answer}, nil
}

// NewQuestionSet builds a full question set, enforcing the size cap.
func NewQuestionSet(raw []QuizQuestion) ([]QuizQuestion, error) {
	if len(raw) > MaxQuizQuestions {
		return nil, shared.ErrTooManyQuestions
	}
	set := make([]QuizQuestion, 0, len(raw))
	for _, q := range raw {
		built, err := NewQuizQuestion(q.Question, q.Options, q.Answer)
		if err != nil {
			return nil, err
		}
		set = append(set, built)
	}
	return set, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RATINGS
// ══════════════════════════════════════════════════════════════════════════════

// UserRating is one participant's stored rating of a session.
type UserRating struct {
	User    UserRef
	Rating  Rating
	Comment string
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// Session is a scheduled learning meeting between a creator and invitee(s).
//
// AverageRating is server-derived; the client never recomputes it from the
// Ratings slice.
type Session struct {
	ID             ID
	Creator        UserRef
	Title          string
	Description    string
	Type           Type
	Duration       time.Duration
	ScheduledAt    time.Time
	MeetingLink    string
	MeetingAddress string
	ManualStatus   ManualStatus
	QuizQuestions  []QuizQuestion
	Ratings        []UserRating
	AverageRating  float64
	CreatedAt      time.Time
}

// HasQuiz reports whether a quiz can be opened for this session.
// There is no on-demand generation fallback: an empty set means no quiz.
func (s *Session) HasQuiz() bool {
	return len(s.QuizQuestions) > 0
}

// EndsAt returns the scheduled end instant.
func (s *Session) EndsAt() time.Time {
	return s.ScheduledAt.Add(s.Duration)
}

// Cancel applies the terminal manual override.
func (s *Session) Cancel() {
	s.ManualStatus = ManualStatusCancelled
}

// RatingBy returns the stored rating left by the given user, if any.
// References in the Ratings slice may be bare IDs or populated objects;
// UserRef resolves both uniformly.
func (s *Session) RatingBy(userID UserID) (UserRating, bool) {
	for _, r := range s.Ratings {
		if r.User.Is(userID) {
			return r, true
		}
	}
	return UserRating{}, false
}

// PutRating stores or overwrites the rating for the given user. A user's
// resubmission replaces the previous entry, it never appends a second one.
func (s *Session) PutRating(rating UserRating) {
	for i, r := range s.Ratings {
		if r.User.Is(rating.User.ID()) {
			s.Ratings[i] = rating
			return
		}
	}
	s.Ratings = append(s.Ratings, rating)
}

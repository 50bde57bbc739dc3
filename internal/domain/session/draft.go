package session

import (
	"time"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

// Attachment is a document attached to a session draft. Content is held in
// memory so the file can be replayed on the multipart creation path after
// question generation already consumed it once.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Draft is the creation payload for a new session. Date and ClockTime stay
// separate because that is how the form collects them; they are combined
// into the scheduled instant only after validation passes.
type Draft struct {
	Title           string
	Description     string
	Type            Type
	Date            time.Time // date component; zero means not chosen
	ClockTime       string    // "15:04"; empty means not chosen
	DurationMinutes int
	MeetingLink     string
	MeetingAddress  string

	// Questions is the pre-generated quiz set accumulated from attached
	// documents. Carried on creation only when non-empty.
	Questions []QuizQuestion

	// Documents are the attachments carried on the multipart creation path.
	Documents []Attachment
}

// Validate checks the required creation fields. It runs before any network
// call; a draft that fails validation never leaves the client.
func (d Draft) Validate() error {
	if d.Title == "" {
		return shared.ErrMissingTitle
	}
	if d.Date.IsZero() || d.ClockTime == "" {
		return shared.ErrMissingSchedule
	}
	if !d.Type.IsValid() {
		return shared.ErrInvalidSessionType
	}
	if d.Type == TypeVideo && d.MeetingLink == "" {
		return shared.ErrMissingMeetingLink
	}
	if d.Type == TypeInPerson && d.MeetingAddress == "" {
		return shared.ErrMissingAddress
	}
	return nil
}

// HasDocuments reports whether the multipart creation path applies.
func (d Draft) HasDocuments() bool {
	return len(d.Documents) > 0
}

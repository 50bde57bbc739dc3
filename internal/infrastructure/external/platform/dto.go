// Package platform implements the PeerLink platform API client. This package
// handles all communication the session engine needs: the session service,
// the notification inbox, the reward ledger, and the document question
// generator.
package platform

import (
	"encoding/json"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// API RESPONSE WRAPPERS
// ══════════════════════════════════════════════════════════════════════════════

// APIResponse represents a generic API response wrapper.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total      int `json:"total,omitempty"`
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

// APIErrorDTO is the error body the platform returns on 4xx/5xx.
type APIErrorDTO struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platform api: %s (%s)", e.Message, e.Code)
	}
	return "platform api: " + e.Message
}

// ══════════════════════════════════════════════════════════════════════════════
// DUCK-TYPED REFERENCES
// Several platform endpoints return related entities either as a bare ID
// string or as a populated object, depending on which service produced the
// payload. These DTOs absorb both shapes at the JSON boundary so the mapper
// can emit a proper tagged union and nothing downstream ever sniffs types.
// ══════════════════════════════════════════════════════════════════════════════

// UserRefDTO is a user reference that may arrive as "u-123" or as
// {"id": "u-123", "name": ...}.
type UserRefDTO struct {
	ID   string
	User *UserDTO
}

// UnmarshalJSON accepts both the bare-ID and the populated-object shape.
func (r *UserRefDTO) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.User = nil
		return nil
	}
	var user UserDTO
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("user ref: neither id string nor object: %w", err)
	}
	r.ID = user.ID
	r.User = &user
	return nil
}

// SessionRefDTO is a session reference that may arrive as a bare ID or as a
// full session object (notification metadata does both).
type SessionRefDTO struct {
	ID      string
	Session *SessionDTO
}

// UnmarshalJSON accepts both the bare-ID and the populated-object shape.
func (r *SessionRefDTO) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.Session = nil
		return nil
	}
	var sess SessionDTO
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("session ref: neither id string nor object: %w", err)
	}
	r.ID = sess.ID
	r.Session = &sess
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USER DTOs
// ══════════════════════════════════════════════════════════════════════════════

// UserDTO is the display subset of a platform user.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION DTOs
// ══════════════════════════════════════════════════════════════════════════════

// QuizQuestionDTO is one generated multiple-choice question.
type QuizQuestionDTO struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// RatingDTO is one stored session rating.
type RatingDTO struct {
	User    UserRefDTO `json:"user"`
	Rating  int        `json:"rating"`
	Comment string     `json:"comment,omitempty"`
}

// SessionDTO represents a session as returned by the session service.
type SessionDTO struct {
	ID              string            `json:"id"`
	Creator         UserRefDTO        `json:"creator"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Type            string            `json:"type"`
	DurationMinutes int               `json:"duration_minutes"`
	ScheduledAt     time.Time         `json:"scheduled_at"`
	MeetingLink     string            `json:"meeting_link,omitempty"`
	MeetingAddress  string            `json:"meeting_address,omitempty"`
	ManualStatus    string            `json:"manual_status,omitempty"`
	QuizQuestions   []QuizQuestionDTO `json:"quiz_questions,omitempty"`
	Ratings         []RatingDTO       `json:"ratings,omitempty"`
	AverageRating   float64           `json:"average_rating,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// CreateSessionRequestDTO is the plain (no documents) creation payload.
type CreateSessionRequestDTO struct {
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Type            string            `json:"type"`
	DurationMinutes int               `json:"duration_minutes"`
	ScheduledAt     time.Time         `json:"scheduled_at"`
	MeetingLink     string            `json:"meeting_link,omitempty"`
	MeetingAddress  string            `json:"meeting_address,omitempty"`
	QuizQuestions   []QuizQuestionDTO `json:"quiz_questions,omitempty"`
}

// RateSessionRequestDTO is the rating submission payload.
type RateSessionRequestDTO struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION DTOs
// ══════════════════════════════════════════════════════════════════════════════

// NotificationMetadataDTO carries per-kind payloads; only the session invite
// fields are modeled here.
type NotificationMetadataDTO struct {
	SessionID *SessionRefDTO `json:"sessionId,omitempty"`
}

// NotificationDTO is one inbox entry.
type NotificationDTO struct {
	ID        string                  `json:"id"`
	Type      string                  `json:"type"`
	IsRead    bool                    `json:"is_read"`
	Sender    UserRefDTO              `json:"sender"`
	Metadata  NotificationMetadataDTO `json:"metadata"`
	CreatedAt time.Time               `json:"created_at"`
}

// NotificationsPageDTO is the paginated inbox response.
type NotificationsPageDTO struct {
	Notifications []NotificationDTO `json:"notifications"`
}

// ══════════════════════════════════════════════════════════════════════════════
// REWARD DTOs
// ══════════════════════════════════════════════════════════════════════════════

// QuizCompletionRequestDTO submits a quiz result to the reward ledger.
type QuizCompletionRequestDTO struct {
	SessionID      string `json:"session_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
}

// QuizCompletionResultDTO is the ledger's authoritative judgement.
type QuizCompletionResultDTO struct {
	Passed         bool     `json:"passed"`
	PointsAwarded  int      `json:"points_awarded"`
	PassingScore   int      `json:"passing_score"`
	TotalQuestions int      `json:"total_questions"`
	NewBadges      []string `json:"new_badges"`
}

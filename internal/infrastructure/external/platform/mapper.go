// Package platform implements the PeerLink platform API client.
package platform

import (
	"time"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/notification"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/reward"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
	"github.com/peerlink-hub/peerlink-sessions/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - DTO to Domain Entity transformations
// ══════════════════════════════════════════════════════════════════════════════

// Mapper handles transformation between platform API DTOs and domain
// entities. This is the anti-corruption layer: duck-typed references become
// tagged unions here and nowhere else.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// UserRefFromDTO converts a duck-typed user reference.
func (m *Mapper) UserRefFromDTO(dto UserRefDTO) session.UserRef {
	if dto.User != nil {
		return session.UserRefFromSummary(session.UserSummary{
			ID:        session.UserID(dto.User.ID),
			Name:      dto.User.Name,
			AvatarURL: dto.User.AvatarURL,
		})
	}
	return session.UserRefFromID(session.UserID(dto.ID))
}

// SessionRefFromDTO converts a duck-typed session reference. A populated
// object maps to a hydrated reference; a bare ID stays bare and is resolved
// later by the invite coordinator.
func (m *Mapper) SessionRefFromDTO(dto *SessionRefDTO) (notification.SessionRef, error) {
	if dto == nil {
		return notification.SessionRef{}, ErrNilDTO
	}
	if dto.Session != nil {
		sess, err := m.SessionFromDTO(dto.Session)
		if err != nil {
			return notification.SessionRef{}, err
		}
		return notification.SessionRefFromSession(sess), nil
	}
	return notification.SessionRefFromID(session.ID(dto.ID)), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// SessionFromDTO converts a SessionDTO to the domain Session aggregate.
func (m *Mapper) SessionFromDTO(dto *SessionDTO) (*session.Session, error) {
	if dto == nil {
		return nil, ErrNilDTO
	}

	sessType := session.Type(dto.Type)
	if !sessType.IsValid() {
		return nil, shared.WrapError("platform", "Parse", shared.ErrInvalidFormat, "unknown session type "+dto.Type, nil)
	}

	questions, err := m.QuestionSetFromDTOs(dto.QuizQuestions)
	if err != nil {
		return nil, err
	}

	ratings := make([]session.UserRating, 0, len(dto.Ratings))
	for _, r := range dto.Ratings {
		ratings = append(ratings, session.UserRating{
			User:    m.UserRefFromDTO(r.User),
			Rating:  session.Rating(r.Rating),
			Comment: r.Comment,
		})
	}

	return &session.Session{
		ID:             session.ID(dto.ID),
		Creator:        m.UserRefFromDTO(dto.Creator),
		Title:          dto.Title,
		Description:    dto.Description,
		Type:           sessType,
		Duration:       time.Duration(dto.DurationMinutes) * time.Minute,
		ScheduledAt:    dto.ScheduledAt,
		MeetingLink:    dto.MeetingLink,
		MeetingAddress: dto.MeetingAddress,
		ManualStatus:   session.ManualStatus(dto.ManualStatus),
		QuizQuestions:  questions,
		Ratings:        ratings,
		AverageRating:  dto.AverageRating,
		CreatedAt:      dto.CreatedAt,
	}, nil
}

// SessionsFromDTOs converts a list of session DTOs.
func (m *Mapper) SessionsFromDTOs(dtos []SessionDTO) ([]*session.Session, error) {
	sessions := make([]*session.Session, 0, len(dtos))
	for i := range dtos {
		sess, err := m.SessionFromDTO(&dtos[i])
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// QuestionSetFromDTOs converts generated questions through domain
// construction (dedupe, answer presence, size cap).
func (m *Mapper) QuestionSetFromDTOs(dtos []QuizQuestionDTO) ([]session.QuizQuestion, error) {
	raw := make([]session.QuizQuestion, 0, len(dtos))
	for _, q := range dtos {
		raw = append(raw, session.QuizQuestion{
			Question: q.Question,
			Options:  q.Options,
			Answer:   q.Answer,
		})
	}
	return session.NewQuestionSet(raw)
}

// CreateRequestFromDraft converts a validated draft into the creation
// payload, combining the form's date and clock fields into the scheduled
// instant (platform timezone).
func (m *Mapper) CreateRequestFromDraft(draft session.Draft) (CreateSessionRequestDTO, error) {
	if err := draft.Validate(); err != nil {
		return CreateSessionRequestDTO{}, err
	}
	scheduledAt, err := timeutil.CombineDateTime(draft.Date, draft.ClockTime)
	if err != nil {
		return CreateSessionRequestDTO{}, shared.WrapError("platform", "CreateSession", shared.ErrInvalidFormat, "bad clock time "+draft.ClockTime, err)
	}
	return CreateSessionRequestDTO{
		Title:           draft.Title,
		Description:     draft.Description,
		Type:            string(draft.Type),
		DurationMinutes: draft.DurationMinutes,
		ScheduledAt:     scheduledAt,
		MeetingLink:     draft.MeetingLink,
		MeetingAddress:  draft.MeetingAddress,
		QuizQuestions:   m.QuestionSetToDTOs(draft.Questions),
	}, nil
}

// QuestionSetToDTOs converts a domain question set for a creation payload.
func (m *Mapper) QuestionSetToDTOs(questions []session.QuizQuestion) []QuizQuestionDTO {
	if len(questions) == 0 {
		return nil
	}
	dtos := make([]QuizQuestionDTO, 0, len(questions))
	for _, q := range questions {
		dtos = append(dtos, QuizQuestionDTO{
			Question: q.Question,
			Options:  q.Options,
			Answer:   q.Answer,
		})
	}
	return dtos
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// InviteFromDTO converts a session-invite notification.
func (m *Mapper) InviteFromDTO(dto *NotificationDTO) (notification.Invite, error) {
	if dto == nil {
		return notification.Invite{}, ErrNilDTO
	}
	if dto.Type != string(notification.KindSessionInvite) {
		return notification.Invite{}, shared.ErrInvalidInviteKind
	}
	if dto.Metadata.SessionID == nil {
		return notification.Invite{}, shared.WrapError("platform", "Parse", shared.ErrInvalidFormat, "session invite without session reference", nil)
	}

	ref, err := m.SessionRefFromDTO(dto.Metadata.SessionID)
	if err != nil {
		return notification.Invite{}, err
	}

	return notification.Invite{
		ID:        dto.ID,
		Session:   ref,
		Sender:    m.UserRefFromDTO(dto.Sender),
		IsRead:    dto.IsRead,
		CreatedAt: dto.CreatedAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REWARD MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// OutcomeFromDTO converts the ledger's judgement.
func (m *Mapper) OutcomeFromDTO(dto *QuizCompletionResultDTO) reward.Outcome {
	badges := dto.NewBadges
	if badges == nil {
		badges = []string{}
	}
	return reward.Outcome{
		Passed:         dto.Passed,
		PointsAwarded:  dto.PointsAwarded,
		PassingScore:   dto.PassingScore,
		TotalQuestions: dto.TotalQuestions,
		NewBadges:      badges,
	}
}

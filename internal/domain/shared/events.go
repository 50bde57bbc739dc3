// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Events are the only channel through which the session
// engine signals the surrounding UI layer (view switches, highlights, resync).
const (
	// Session events
	EventSessionCreated   EventType = "session.created"
	EventSessionCancelled EventType = "session.cancelled"
	EventSessionDeleted   EventType = "session.deleted"
	EventSessionJoined    EventType = "session.joined"
	EventSessionRated     EventType = "session.rated"

	// Invite events
	EventInviteAccepted  EventType = "invite.accepted"
	EventInviteDeclined  EventType = "invite.declined"
	EventInviteDismissed EventType = "invite.dismissed"

	// Quiz events
	EventQuizSubmitted EventType = "quiz.submitted"

	// Reward events
	EventRewardClaimed EventType = "reward.claimed"

	// User state events
	// EventUserResyncRequested asks the host application to refetch the full
	// user profile (points, badges) instead of trusting local estimates.
	EventUserResyncRequested EventType = "user.resync_requested"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single event.
type EventHandler func(event Event) error

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Data          map[string]interface{}
}

// NewBaseEvent creates a BaseEvent stamped with the current time.
func NewBaseEvent(eventType EventType, aggregateID string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Data:        data,
	}
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// Payload implements Event interface.
func (e BaseEvent) Payload() map[string]interface{} {
	if e.Data == nil {
		return map[string]interface{}{}
	}
	return e.Data
}

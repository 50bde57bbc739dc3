// Package notification contains the data contract of the platform's
// notification inbox as far as the session engine consumes it: session
// invites. The inbox UI itself is external; only invites are modeled.
package notification

import (
	"time"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
)

// Kind is the notification type discriminator used by the platform API.
type Kind string

const (
	// KindSessionInvite - an unanswered session-join request.
	KindSessionInvite Kind = "session_invite"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REFERENCE
// Invite metadata carries the session either as a bare ID or as a populated
// object, depending on which API surface produced the notification. The
// union is hydrated once, before display; call sites never branch on shape.
// ══════════════════════════════════════════════════════════════════════════════

// SessionRef is a tagged union: a bare session ID or a hydrated session.
type SessionRef struct {
	id      session.ID
	session *session.Session
}

// SessionRefFromID creates an unhydrated reference.
func SessionRefFromID(id session.ID) SessionRef {
	return SessionRef{id: id}
}

// SessionRefFromSession creates a hydrated reference.
func SessionRefFromSession(s *session.Session) SessionRef {
	return SessionRef{id: s.ID, session: s}
}

// ID returns the referenced session's ID regardless of hydration.
func (r SessionRef) ID() session.ID {
	return r.id
}

// IsHydrated reports whether the full session is attached.
func (r SessionRef) IsHydrated() bool {
	return r.session != nil
}

// Session returns the hydrated session, or false for a bare reference.
func (r SessionRef) Session() (*session.Session, bool) {
	if r.session == nil {
		return nil, false
	}
	return r.session, true
}

// Hydrate returns a copy of the reference with the session attached.
func (r SessionRef) Hydrate(s *session.Session) SessionRef {
	return SessionRef{id: r.id, session: s}
}

// ══════════════════════════════════════════════════════════════════════════════
// INVITE
// ══════════════════════════════════════════════════════════════════════════════

// Invite is a pending session-join request delivered through the
// notification inbox.
type Invite struct {
	ID        string
	Session   SessionRef
	Sender    session.UserRef
	IsRead    bool
	CreatedAt time.Time
}

// InviteAction is the user's answer to an invite.
type InviteAction string

const (
	ActionAccept  InviteAction = "accept"
	ActionDecline InviteAction = "decline"
)

// IsValid checks the action value.
func (a InviteAction) IsValid() bool {
	return a == ActionAccept || a == ActionDecline
}

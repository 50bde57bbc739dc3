package session

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// The domain defines the contracts; implementations live in
// infrastructure/persistence and infrastructure/external.
// ══════════════════════════════════════════════════════════════════════════════

// ListKind selects one of the two session lists a user sees.
type ListKind string

const (
	// ListCreated - sessions the current user created.
	ListCreated ListKind = "created"

	// ListJoined - sessions the current user joined via an accepted invite.
	ListJoined ListKind = "joined"
)

// CacheRepository is the client-side cache of session lists.
//
// Contract: stale-until-refreshed. Load returns whatever the cache holds
// (possibly stale, possibly nothing); Refresh overwrites the cached list with
// fresh remote data; Invalidate drops it. Refreshing via the Session Store's
// load operations is the only way the cache converges with the remote source
// of truth. Keys are namespaced per authenticated user so a login switch
// never leaks another user's lists.
type CacheRepository interface {
	// Load returns the cached list and whether it was present at all.
	Load(ctx context.Context, userID UserID, kind ListKind) ([]*Session, bool, error)

	// Refresh replaces the cached list with the given fresh snapshot.
	Refresh(ctx context.Context, userID UserID, kind ListKind, sessions []*Session) error

	// Invalidate removes the cached list.
	Invalidate(ctx context.Context, userID UserID, kind ListKind) error
}

// ClaimCacheRepository caches the local "already claimed" flag per
// (session, user). The authoritative claim ledger is remote; this flag only
// gates the UI so a granted claim cannot be re-submitted from this client.
type ClaimCacheRepository interface {
	IsClaimed(ctx context.Context, userID UserID, sessionID ID) (bool, error)
	MarkClaimed(ctx context.Context, userID UserID, sessionID ID) error
}

// Lookup resolves a single session by ID from the remote service. Used to
// hydrate bare-ID session references on invites.
type Lookup interface {
	GetByID(ctx context.Context, id ID) (*Session, error)
}

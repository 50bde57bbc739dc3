// Package invites implements the Invite Coordinator: reconciling pending
// session-invite notifications with session data and driving the
// accept/decline flow.
package invites

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/notification"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
	"github.com/peerlink-hub/peerlink-sessions/pkg/mutation"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLLABORATOR CONTRACTS
// ══════════════════════════════════════════════════════════════════════════════

// InviteService is the notification service as the coordinator consumes it.
// Implemented by the platform client.
type InviteService interface {
	GetPendingInvites(ctx context.Context, page, limit int) ([]notification.Invite, error)
	RespondToSessionInvite(ctx context.Context, inviteID string, action notification.InviteAction) error
	MarkNotificationRead(ctx context.Context, notificationID string) error
}

// JoinedReloader reloads the joined session list after an accepted invite.
// Implemented by the Session Store.
type JoinedReloader interface {
	LoadJoined(ctx context.Context) error
}

// View is the session screen tab the coordinator can switch to.
type View string

const (
	ViewInvites View = "invites"
	ViewManage  View = "manage"
)

// ══════════════════════════════════════════════════════════════════════════════
// COORDINATOR
// ══════════════════════════════════════════════════════════════════════════════

// DefaultHighlightDuration is how long a freshly joined session stays
// highlighted in the manage view.
const DefaultHighlightDuration = 2 * time.Second

// DefaultPageLimit is the inbox page size used when fetching invites.
const DefaultPageLimit = 50

// Config wires the coordinator's collaborators.
type Config struct {
	Invites InviteService
	Lookup  session.Lookup
	Store   JoinedReloader
	Events  shared.EventPublisher
	Logger  *slog.Logger

	// HighlightDuration overrides DefaultHighlightDuration (tests shorten it).
	HighlightDuration time.Duration

	// PageLimit overrides DefaultPageLimit.
	PageLimit int
}

// Coordinator owns the pending invite list and the transient UI state
// around responding to one.
type Coordinator struct {
	invites   InviteService
	lookup    session.Lookup
	store     JoinedReloader
	events    shared.EventPublisher
	logger    *slog.Logger
	guard     *mutation.InflightGuard
	highlight time.Duration
	pageLimit int

	mu             sync.RWMutex
	pending        []notification.Invite
	view           View
	highlighted    session.ID
	highlightTimer *time.Timer
}

// New creates a Coordinator.
func New(cfg Config) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.HighlightDuration <= 0 {
		cfg.HighlightDuration = DefaultHighlightDuration
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	return &Coordinator{
		invites:   cfg.Invites,
		lookup:    cfg.Lookup,
		store:     cfg.Store,
		events:    cfg.Events,
		logger:    cfg.Logger,
		guard:     mutation.NewInflightGuard(),
		highlight: cfg.HighlightDuration,
		pageLimit: cfg.PageLimit,
		view:      ViewInvites,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// FETCH & HYDRATE
// ══════════════════════════════════════════════════════════════════════════════

// FetchPending retrieves unread session invites and hydrates every bare-ID
// session reference concurrently, preserving the inbox order. An invite
// whose session cannot be resolved is dropped (and logged) rather than
// shown as an unopenable row.
func (c *Coordinator) FetchPending(ctx context.Context) error {
	fetched, err := c.invites.GetPendingInvites(ctx, 1, c.pageLimit)
	if err != nil {
		c.logger.Error("fetch pending invites failed", "error", err)
		return shared.WrapError("invite", "FetchPending", shared.ErrExternalService, "fetching invites failed", err)
	}

	hydrated, err := c.hydrate(ctx, fetched)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.pending = hydrated
	c.mu.Unlock()
	return nil
}

// hydrate resolves bare session references in place. Each invite keeps its
// original index, so the returned slice preserves inbox order regardless of
// which lookup finishes first.
func (c *Coordinator) hydrate(ctx context.Context, invites []notification.Invite) ([]notification.Invite, error) {
	g, ctx := errgroup.WithContext(ctx)
	resolved := make([]notification.Invite, len(invites))

	for i, invite := range invites {
		i, invite := i, invite
		resolved[i] = invite
		if invite.Session.IsHydrated() {
			continue
		}
		g.Go(func() error {
			c.logger.Debug("hydrating invite session", "invite_id", invite.ID, "session_id", invite.Session.ID())
			sess, err := c.lookup.GetByID(ctx, invite.Session.ID())
			if err != nil {
				c.logger.Error("invite session lookup failed", "invite_id", invite.ID, "session_id", invite.Session.ID(), "error", err)
				resolved[i] = notification.Invite{} // dropped below
				return nil
			}
			resolved[i].Session = invite.Session.Hydrate(sess)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := resolved[:0]
	for _, invite := range resolved {
		if invite.ID != "" {
			kept = append(kept, invite)
		}
	}
	return kept, nil
}

// Pending returns the current pending invites.
func (c *Coordinator) Pending() []notification.Invite {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]notification.Invite, len(c.pending))
	copy(out, c.pending)
	return out
}

// IsResponding reports whether a response for the invite is in flight.
func (c *Coordinator) IsResponding(inviteID string) bool {
	return c.guard.IsPending(inviteID)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPOND
// ══════════════════════════════════════════════════════════════════════════════

// Respond answers an invite. Confirm-first: the remote call decides, and
// only on success does local state change. On accept the joined list is
// reloaded, the view switches to manage, and the joined session is
// highlighted for a fixed interval. On failure the invite stays pending and
// the error surfaces. The per-invite guard blocks double submission.
func (c *Coordinator) Respond(ctx context.Context, inviteID string, action notification.InviteAction) error {
	if !action.IsValid() {
		return shared.ErrInvalidAction
	}
	if !c.guard.TryBegin(inviteID) {
		return shared.ErrInviteActionBusy
	}
	defer c.guard.End(inviteID)

	invite, ok := c.find(inviteID)
	if !ok {
		return shared.ErrInviteNotFound
	}

	strategy := mutation.ConfirmFirst{Apply: func() {
		c.removePending(inviteID)
	}}
	err := strategy.Run(ctx, func(ctx context.Context) error {
		return c.invites.RespondToSessionInvite(ctx, inviteID, action)
	})
	if err != nil {
		c.logger.Error("respond to invite failed", "invite_id", inviteID, "action", action, "error", err)
		return shared.WrapError("invite", "Respond", shared.ErrExternalService, "invite response failed", err)
	}

	if action == notification.ActionAccept {
		c.afterAccept(ctx, invite)
	} else {
		c.publish(shared.NewBaseEvent(shared.EventInviteDeclined, inviteID, nil))
	}

	// Refetch so the pending list reflects the server, not just the local
	// removal.
	if err := c.FetchPending(ctx); err != nil {
		c.logger.Error("refetch after respond failed", "invite_id", inviteID, "error", err)
	}
	return nil
}

// Dismiss hides an invite without answering it by marking the notification
// read. Optimistic: the invite leaves the pending list immediately and is
// restored from the snapshot if the remote call fails, so the row reappears
// exactly where it was.
func (c *Coordinator) Dismiss(ctx context.Context, inviteID string) error {
	if !c.guard.TryBegin(inviteID) {
		return shared.ErrInviteActionBusy
	}
	defer c.guard.End(inviteID)

	if _, ok := c.find(inviteID); !ok {
		return shared.ErrInviteNotFound
	}

	strategy := mutation.Optimistic[[]notification.Invite]{
		Snapshot: c.snapshotPending,
		Apply:    func() { c.removePending(inviteID) },
		Restore:  c.restorePending,
	}
	err := strategy.Run(ctx, func(ctx context.Context) error {
		return c.invites.MarkNotificationRead(ctx, inviteID)
	})
	if err != nil {
		c.logger.Error("dismiss invite failed", "invite_id", inviteID, "error", err)
		return shared.WrapError("invite", "Dismiss", shared.ErrExternalService, "dismissing invite failed", err)
	}

	c.publish(shared.NewBaseEvent(shared.EventInviteDismissed, inviteID, nil))
	return nil
}

func (c *Coordinator) snapshotPending() []notification.Invite {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := make([]notification.Invite, len(c.pending))
	copy(snap, c.pending)
	return snap
}

func (c *Coordinator) restorePending(snap []notification.Invite) {
	c.mu.Lock()
	c.pending = snap
	c.mu.Unlock()
}

func (c *Coordinator) afterAccept(ctx context.Context, invite notification.Invite) {
	joinedID := invite.Session.ID()

	if err := c.store.LoadJoined(ctx); err != nil {
		// The join happened server-side; the next load will show it.
		c.logger.Error("reload joined after accept failed", "session_id", joinedID, "error", err)
	}

	c.mu.Lock()
	c.view = ViewManage
	c.highlighted = joinedID
	if c.highlightTimer != nil {
		c.highlightTimer.Stop()
	}
	c.highlightTimer = time.AfterFunc(c.highlight, func() {
		c.mu.Lock()
		if c.highlighted == joinedID {
			c.highlighted = ""
		}
		c.mu.Unlock()
	})
	c.mu.Unlock()

	c.publish(shared.NewBaseEvent(shared.EventInviteAccepted, invite.ID, nil))
	c.publish(shared.NewBaseEvent(shared.EventSessionJoined, joinedID.String(), map[string]interface{}{
		"sender_id": invite.Sender.ID().String(),
	}))
}

// ActiveView returns the tab the coordinator wants shown.
func (c *Coordinator) ActiveView() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// SetActiveView lets the UI switch tabs manually.
func (c *Coordinator) SetActiveView(v View) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
}

// Highlighted returns the transiently highlighted session, if any.
func (c *Coordinator) Highlighted() (session.ID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.highlighted, c.highlighted != ""
}

func (c *Coordinator) find(inviteID string) (notification.Invite, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, invite := range c.pending {
		if invite.ID == inviteID {
			return invite, true
		}
	}
	return notification.Invite{}, false
}

func (c *Coordinator) removePending(inviteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.pending[:0]
	for _, invite := range c.pending {
		if invite.ID != inviteID {
			kept = append(kept, invite)
		}
	}
	c.pending = kept
}

func (c *Coordinator) publish(event shared.Event) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(event); err != nil {
		c.logger.Error("publish event failed", "event_type", event.EventType(), "error", err)
	}
}

// Package mutation provides the two update disciplines the session engine
// uses against remote collaborators, as named strategies instead of ad-hoc
// call-site code:
//
//   - Optimistic: apply the local mutation immediately, issue the remote
//     call, and restore the pre-mutation snapshot on failure.
//   - ConfirmFirst: issue the remote call first and mutate local state only
//     on success; on failure prior state is simply left untouched.
//
// It also provides the per-entity inflight guard that disables an action
// while its request is pending, without blocking unrelated entities.
// No external dependencies - uses only standard library.
package mutation

import (
	"context"
	"sync"
)

// Optimistic runs the optimistic-then-rollback discipline over a local state
// value of type S. The snapshot function must return a deep enough copy that
// restore(snapshot) fully undoes apply().
type Optimistic[S any] struct {
	// Snapshot captures the pre-mutation state.
	Snapshot func() S

	// Apply performs the local mutation immediately.
	Apply func()

	// Restore reinstates a previously captured snapshot.
	Restore func(S)
}

// Run executes the strategy around the remote call. The remote error is
// returned as-is after the snapshot has been restored, so the caller reports
// failure against unmutated state.
func (o Optimistic[S]) Run(ctx context.Context, remote func(context.Context) error) error {
	snap := o.Snapshot()
	o.Apply()
	if err := remote(ctx); err != nil {
		o.Restore(snap)
		return err
	}
	return nil
}

// ConfirmFirst runs the confirm-first discipline: the remote call decides,
// and Apply runs only after it succeeded.
type ConfirmFirst struct {
	// Apply performs the local mutation once the remote call confirmed.
	Apply func()
}

// Run executes the strategy around the remote call.
func (c ConfirmFirst) Run(ctx context.Context, remote func(context.Context) error) error {
	if err := remote(ctx); err != nil {
		return err
	}
	if c.Apply != nil {
		c.Apply()
	}
	return nil
}

// InflightGuard tracks pending actions per entity ID. While an entity's flag
// is set, further identical actions are rejected; unrelated entities are
// unaffected. The flag is cleared in a guaranteed final step regardless of
// outcome (callers defer End).
//
// There is no timeout: a hung request leaves its flag set until the request
// returns. Requests cannot be aborted once issued.
type InflightGuard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewInflightGuard creates an empty guard.
func NewInflightGuard() *InflightGuard {
	return &InflightGuard{pending: make(map[string]struct{})}
}

// TryBegin marks the entity as pending. Returns false if an action on the
// same entity is already in flight.
func (g *InflightGuard) TryBegin(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[id]; busy {
		return false
	}
	g.pending[id] = struct{}{}
	return true
}

// End clears the entity's pending flag. Safe to call for an unknown ID.
func (g *InflightGuard) End(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, id)
}

// IsPending reports whether an action on the entity is in flight. The UI
// uses this to disable the corresponding button.
func (g *InflightGuard) IsPending(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.pending[id]
	return busy
}

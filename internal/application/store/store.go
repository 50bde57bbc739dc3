// Package store implements the Session Store: the canonical cached
// collection of the current user's created and joined sessions, and every
// mutation the session UI performs on them.
//
// The store is an orchestration layer. It validates before the network,
// delegates to the remote session service, applies one of the two named
// mutation disciplines, recomputes derived status on every read, and keeps
// the auth-scoped cache in step.
package store

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
	"github.com/peerlink-hub/peerlink-sessions/pkg/mutation"
	"github.com/peerlink-hub/peerlink-sessions/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLLABORATOR CONTRACTS
// ══════════════════════════════════════════════════════════════════════════════

// SessionService is the remote session service as the store consumes it.
// Implemented by the platform client.
type SessionService interface {
	GetCreatedSessions(ctx context.Context) ([]*session.Session, error)
	GetJoinedSessions(ctx context.Context) ([]*session.Session, error)
	CreateSession(ctx context.Context, draft session.Draft) (*session.Session, error)
	CreateSessionWithDocuments(ctx context.Context, draft session.Draft) (*session.Session, error)
	CancelSession(ctx context.Context, id session.ID) error
	DeleteSession(ctx context.Context, id session.ID) error
	RateSession(ctx context.Context, id session.ID, rating session.Rating, comment string) error
}

// QuestionGenerator is the document quiz generator collaborator.
type QuestionGenerator interface {
	GenerateQuestionsFromPDF(ctx context.Context, filename string, content io.Reader) ([]session.QuizQuestion, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEW MODELS
// ══════════════════════════════════════════════════════════════════════════════

// Card is the view model for one session row. Status and schedule labels are
// derived at read time through the canonical resolver; nothing here is
// stored state.
type Card struct {
	Session   *session.Session
	Status    session.Status
	DateLabel string
	TimeLabel string
	IsPast    bool

	// Counterpart is the other participant's display info (the creator, on
	// joined sessions). Nil when the reference was never hydrated.
	Counterpart *session.UserSummary

	// OwnRating is the current user's stored rating, if any.
	OwnRating *session.UserRating

	// ActionPending disables the row's cancel/delete button while a request
	// is in flight.
	ActionPending bool
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Config wires the store's collaborators.
type Config struct {
	UserID    session.UserID
	Sessions  SessionService
	Generator QuestionGenerator
	Cache     session.CacheRepository
	Events    shared.EventPublisher
	Logger    *slog.Logger

	// Now is injectable for tests; defaults to timeutil.Now.
	Now func() time.Time
}

// Store holds the current user's session lists.
type Store struct {
	userID    session.UserID
	sessions  SessionService
	generator QuestionGenerator
	cache     session.CacheRepository
	events    shared.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	guard     *mutation.InflightGuard

	mu      sync.RWMutex
	created []*session.Session
	joined  []*session.Session

	// Pending draft state accumulated by AttachDocument before Create.
	pendingDocs      []session.Attachment
	pendingQuestions []session.QuizQuestion
}

// New creates a Store.
func New(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = timeutil.Now
	}
	return &Store{
		userID:    cfg.UserID,
		sessions:  cfg.Sessions,
		generator: cfg.Generator,
		cache:     cfg.Cache,
		events:    cfg.Events,
		logger:    cfg.Logger,
		now:       cfg.Now,
		guard:     mutation.NewInflightGuard(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LOADING
// ══════════════════════════════════════════════════════════════════════════════

// Prime fills the in-memory lists from the cache, if present. Cached data is
// stale by contract; callers follow up with LoadCreated/LoadJoined. A cache
// failure is logged and ignored: the cache is an accelerator, not a source
// of truth.
func (s *Store) Prime(ctx context.Context) {
	for _, kind := range []session.ListKind{session.ListCreated, session.ListJoined} {
		list, ok, err := s.cache.Load(ctx, s.userID, kind)
		if err != nil {
			s.logger.Error("prime from cache failed", "kind", kind, "error", err)
			continue
		}
		if !ok {
			continue
		}
		s.mu.Lock()
		if kind == session.ListCreated {
			s.created = list
		} else {
			s.joined = list
		}
		s.mu.Unlock()
	}
}

// LoadCreated refreshes the created list from the session service. On
// success the cache is rewritten; on failure the previous (possibly stale)
// list stays visible and the error surfaces to the caller.
func (s *Store) LoadCreated(ctx context.Context) error {
	return s.load(ctx, session.ListCreated)
}

// LoadJoined refreshes the joined list from the session service.
func (s *Store) LoadJoined(ctx context.Context) error {
	return s.load(ctx, session.ListJoined)
}

func (s *Store) load(ctx context.Context, kind session.ListKind) error {
	var (
		list []*session.Session
		err  error
	)
	if kind == session.ListCreated {
		list, err = s.sessions.GetCreatedSessions(ctx)
	} else {
		list, err = s.sessions.GetJoinedSessions(ctx)
	}
	if err != nil {
		s.logger.Error("load sessions failed", "kind", kind, "error", err)
		return shared.WrapError("session", "Load", shared.ErrExternalService, "loading "+string(kind)+" sessions failed", err)
	}

	s.mu.Lock()
	if kind == session.ListCreated {
		s.created = list
	} else {
		s.joined = list
	}
	s.mu.Unlock()

	if err := s.cache.Refresh(ctx, s.userID, kind, list); err != nil {
		// Cache staleness is tolerable; a failed refresh is not a failed load.
		s.logger.Error("cache refresh failed", "kind", kind, "error", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

// CreatedCards returns view models for the created list.
func (s *Store) CreatedCards() []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cards(s.created, false)
}

// JoinedCards returns view models for the joined list, carrying the
// counterpart (creator) display info and the user's own rating.
func (s *Store) JoinedCards() []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cards(s.joined, true)
}

func (s *Store) cards(list []*session.Session, joined bool) []Card {
	now := s.now()
	cards := make([]Card, 0, len(list))
	for _, sess := range list {
		card := Card{
			Session:       sess,
			Status:        session.ResolveStatus(sess, now),
			DateLabel:     timeutil.DateLabel(sess.ScheduledAt, now),
			TimeLabel:     timeutil.TimeLabel(sess.ScheduledAt),
			IsPast:        session.IsPast(sess, now),
			ActionPending: s.guard.IsPending(sess.ID.String()),
		}
		if joined {
			if summary, ok := sess.Creator.Summary(); ok {
				card.Counterpart = &summary
			}
			if rating, ok := sess.RatingBy(s.userID); ok {
				r := rating
				card.OwnRating = &r
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// Find returns a session from either list.
func (s *Store) Find(id session.ID) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range [][]*session.Session{s.created, s.joined} {
		for _, sess := range list {
			if sess.ID == id {
				return sess, true
			}
		}
	}
	return nil, false
}

// ══════════════════════════════════════════════════════════════════════════════
// DRAFT DOCUMENTS
// ══════════════════════════════════════════════════════════════════════════════

// AttachDocument adds a document to the pending draft. PDFs go through the
// question generator first; only on success is the document kept and its
// generated set stored. A generation failure discards the file and surfaces
// the error without blocking session creation itself. Non-PDF attachments
// are kept as-is and produce no questions.
func (s *Store) AttachDocument(ctx context.Context, doc session.Attachment) error {
	if strings.HasSuffix(strings.ToLower(doc.Filename), ".pdf") {
		questions, err := s.generator.GenerateQuestionsFromPDF(ctx, doc.Filename, bytes.NewReader(doc.Content))
		if err != nil {
			s.logger.Error("question generation failed, discarding document", "filename", doc.Filename, "error", err)
			return shared.WrapError("session", "AttachDocument", shared.ErrExternalService, "question generation failed for "+doc.Filename, err)
		}
		s.mu.Lock()
		s.pendingDocs = append(s.pendingDocs, doc)
		s.pendingQuestions = questions
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.pendingDocs = append(s.pendingDocs, doc)
	s.mu.Unlock()
	return nil
}

// PendingQuestions returns the question set generated for the pending draft.
func (s *Store) PendingQuestions() []session.QuizQuestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingQuestions
}

// DiscardDraft drops the accumulated documents and generated questions.
func (s *Store) DiscardDraft() {
	s.mu.Lock()
	s.pendingDocs = nil
	s.pendingQuestions = nil
	s.mu.Unlock()
}

// ══════════════════════════════════════════════════════════════════════════════
// MUTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Create validates the draft, attaches the accumulated documents and
// questions, and creates the session (confirm-first: the local created list
// changes only after the service confirmed). With documents present the
// multipart path is used.
func (s *Store) Create(ctx context.Context, draft session.Draft) (*session.Session, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	draft.Documents = s.pendingDocs
	draft.Questions = s.pendingQuestions
	s.mu.RUnlock()

	var created *session.Session
	strategy := mutation.ConfirmFirst{Apply: func() {
		s.mu.Lock()
		s.created = append([]*session.Session{created}, s.created...)
		s.pendingDocs = nil
		s.pendingQuestions = nil
		s.mu.Unlock()
	}}

	err := strategy.Run(ctx, func(ctx context.Context) error {
		var err error
		if draft.HasDocuments() {
			created, err = s.sessions.CreateSessionWithDocuments(ctx, draft)
		} else {
			created, err = s.sessions.CreateSession(ctx, draft)
		}
		return err
	})
	if err != nil {
		s.logger.Error("create session failed", "title", draft.Title, "error", err)
		return nil, shared.WrapError("session", "Create", shared.ErrExternalService, "session creation failed", err)
	}

	s.refreshCache(ctx, session.ListCreated)
	s.publish(shared.NewBaseEvent(shared.EventSessionCreated, created.ID.String(), nil))
	return created, nil
}

// Cancel marks a joined session cancelled (participant-side). Guarded per
// session so a double tap cannot issue two cancel calls; confirm-first so
// the list never shows a cancellation the service refused.
func (s *Store) Cancel(ctx context.Context, id session.ID) error {
	if !s.guard.TryBegin(id.String()) {
		return shared.ErrSessionActionBusy
	}
	defer s.guard.End(id.String())

	strategy := mutation.ConfirmFirst{Apply: func() {
		s.mu.Lock()
		for _, sess := range s.joined {
			if sess.ID == id {
				sess.Cancel()
			}
		}
		for _, sess := range s.created {
			if sess.ID == id {
				sess.Cancel()
			}
		}
		s.mu.Unlock()
	}}

	err := strategy.Run(ctx, func(ctx context.Context) error {
		return s.sessions.CancelSession(ctx, id)
	})
	if err != nil {
		s.logger.Error("cancel session failed", "session_id", id, "error", err)
		return shared.WrapError("session", "Cancel", shared.ErrExternalService, "session cancel failed", err)
	}

	s.refreshCache(ctx, session.ListJoined)
	s.refreshCache(ctx, session.ListCreated)
	s.publish(shared.NewBaseEvent(shared.EventSessionCancelled, id.String(), nil))
	return nil
}

// Delete removes a created session entirely (creator-side).
func (s *Store) Delete(ctx context.Context, id session.ID) error {
	if !s.guard.TryBegin(id.String()) {
		return shared.ErrSessionActionBusy
	}
	defer s.guard.End(id.String())

	strategy := mutation.ConfirmFirst{Apply: func() {
		s.mu.Lock()
		kept := s.created[:0]
		for _, sess := range s.created {
			if sess.ID != id {
				kept = append(kept, sess)
			}
		}
		s.created = kept
		s.mu.Unlock()
	}}

	err := strategy.Run(ctx, func(ctx context.Context) error {
		return s.sessions.DeleteSession(ctx, id)
	})
	if err != nil {
		s.logger.Error("delete session failed", "session_id", id, "error", err)
		return shared.WrapError("session", "Delete", shared.ErrExternalService, "session delete failed", err)
	}

	s.refreshCache(ctx, session.ListCreated)
	s.publish(shared.NewBaseEvent(shared.EventSessionDeleted, id.String(), nil))
	return nil
}

// RatingSubmission is the rate operation's payload.
type RatingSubmission struct {
	SessionID session.ID
	Rating    session.Rating
	Comment   string
}

// Rate submits the user's rating (confirm-first) and then reloads the
// joined list so the displayed average reflects the server's recomputation.
// The average is never recomputed client-side; the local echo only keeps the
// user's own rating visible if the reload is delayed by a failure.
func (s *Store) Rate(ctx context.Context, sub RatingSubmission) error {
	if !sub.Rating.IsValid() {
		return shared.ErrInvalidRatingValue
	}

	strategy := mutation.ConfirmFirst{Apply: func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, sess := range s.joined {
			if sess.ID == sub.SessionID {
				sess.PutRating(session.UserRating{
					User:    session.UserRefFromID(s.userID),
					Rating:  sub.Rating,
					Comment: sub.Comment,
				})
				return
			}
		}
	}}
	err := strategy.Run(ctx, func(ctx context.Context) error {
		return s.sessions.RateSession(ctx, sub.SessionID, sub.Rating, sub.Comment)
	})
	if err != nil {
		s.logger.Error("rate session failed", "session_id", sub.SessionID, "error", err)
		return shared.WrapError("session", "Rate", shared.ErrExternalService, "session rating failed", err)
	}

	if err := s.LoadJoined(ctx); err != nil {
		// The rating was stored; a failed reload only delays the fresh average.
		s.logger.Error("reload after rating failed", "session_id", sub.SessionID, "error", err)
	}
	s.publish(shared.NewBaseEvent(shared.EventSessionRated, sub.SessionID.String(), map[string]interface{}{
		"rating": int(sub.Rating),
	}))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERNAL
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) refreshCache(ctx context.Context, kind session.ListKind) {
	s.mu.RLock()
	list := s.created
	if kind == session.ListJoined {
		list = s.joined
	}
	snapshot := make([]*session.Session, len(list))
	copy(snapshot, list)
	s.mu.RUnlock()

	if err := s.cache.Refresh(ctx, s.userID, kind, snapshot); err != nil {
		s.logger.Error("cache refresh failed", "kind", kind, "error", err)
	}
}

func (s *Store) publish(event shared.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.logger.Error("publish event failed", "event_type", event.EventType(), "error", err)
	}
}

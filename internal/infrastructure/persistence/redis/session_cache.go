// Package redis implements the client-side session cache on Redis.
//
// The cache is stale-until-refreshed: the Session Store's load operations
// are the only path that reconciles it with the remote source of truth, and
// every key lives under an auth-scoped namespace so a login switch never
// shows another user's lists.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration

	// ListTTL bounds how long a cached session list may serve as stale data.
	ListTTL time.Duration

	// ClaimTTL bounds the local claim flags. Claims are authoritative on the
	// ledger, so an expired flag only costs one rejected re-claim attempt.
	ClaimTTL time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		ListTTL:      24 * time.Hour,
		ClaimTTL:     30 * 24 * time.Hour,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrCacheConnection is returned when the Redis connection fails.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheSerialization is returned when (de)serialization fails.
	ErrCacheSerialization = errors.New("cache: serialization failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION CACHE
// ══════════════════════════════════════════════════════════════════════════════

// SessionCache implements session.CacheRepository and
// session.ClaimCacheRepository on Redis.
type SessionCache struct {
	client *redis.Client
	config Config
}

// NewSessionCache creates a SessionCache and verifies connectivity.
func NewSessionCache(cfg Config) (*SessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return &SessionCache{client: client, config: cfg}, nil
}

// Close closes the Redis connection.
func (c *SessionCache) Close() error {
	return c.client.Close()
}

// listKey namespaces a session list under its owner:
// "u:{userID}:sessions:{created|joined}".
func listKey(userID session.UserID, kind session.ListKind) string {
	return fmt.Sprintf("u:%s:sessions:%s", userID, kind)
}

// claimKey namespaces a claim flag: "u:{userID}:claims:{sessionID}".
func claimKey(userID session.UserID, sessionID session.ID) string {
	return fmt.Sprintf("u:%s:claims:%s", userID, sessionID)
}

// cachedSession is the storage shape of one session. Sessions are flattened
// through DTO-ish structs because domain UserRef is deliberately opaque.
type cachedSession struct {
	ID              string           `json:"id"`
	CreatorID       string           `json:"creator_id"`
	CreatorName     string           `json:"creator_name,omitempty"`
	CreatorAvatar   string           `json:"creator_avatar,omitempty"`
	CreatorHydrated bool             `json:"creator_hydrated"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Type            string           `json:"type"`
	DurationMinutes int              `json:"duration_minutes"`
	ScheduledAt     time.Time        `json:"scheduled_at"`
	MeetingLink     string           `json:"meeting_link,omitempty"`
	MeetingAddress  string           `json:"meeting_address,omitempty"`
	ManualStatus    string           `json:"manual_status,omitempty"`
	Questions       []cachedQuestion `json:"questions,omitempty"`
	Ratings         []cachedRating   `json:"ratings,omitempty"`
	AverageRating   float64          `json:"average_rating,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

type cachedQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type cachedRating struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	Hydrated bool   `json:"hydrated"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}

func toCached(s *session.Session) cachedSession {
	cs := cachedSession{
		ID:              s.ID.String(),
		CreatorID:       s.Creator.ID().String(),
		Title:           s.Title,
		Description:     s.Description,
		Type:            string(s.Type),
		DurationMinutes: int(s.Duration / time.Minute),
		ScheduledAt:     s.ScheduledAt,
		MeetingLink:     s.MeetingLink,
		MeetingAddress:  s.MeetingAddress,
		ManualStatus:    string(s.ManualStatus),
		AverageRating:   s.AverageRating,
		CreatedAt:       s.CreatedAt,
	}
	if summary, ok := s.Creator.Summary(); ok {
		cs.CreatorHydrated = true
		cs.CreatorName = summary.Name
		cs.CreatorAvatar = summary.AvatarURL
	}
	for _, q := range s.QuizQuestions {
		cs.Questions = append(cs.Questions, cachedQuestion(q))
	}
	for _, r := range s.Ratings {
		cr := cachedRating{
			UserID:  r.User.ID().String(),
			Rating:  int(r.Rating),
			Comment: r.Comment,
		}
		if summary, ok := r.User.Summary(); ok {
			cr.Hydrated = true
			cr.UserName = summary.Name
		}
		cs.Ratings = append(cs.Ratings, cr)
	}
	return cs
}

func fromCached(cs cachedSession) *session.Session {
	creator := session.UserRefFromID(session.UserID(cs.CreatorID))
	if cs.CreatorHydrated {
		creator = session.UserRefFromSummary(session.UserSummary{
			ID:        session.UserID(cs.CreatorID),
			Name:      cs.CreatorName,
			AvatarURL: cs.CreatorAvatar,
		})
	}
	s := &session.Session{
		ID:             session.ID(cs.ID),
		Creator:        creator,
		Title:          cs.Title,
		Description:    cs.Description,
		Type:           session.Type(cs.Type),
		Duration:       time.Duration(cs.DurationMinutes) * time.Minute,
		ScheduledAt:    cs.ScheduledAt,
		MeetingLink:    cs.MeetingLink,
		MeetingAddress: cs.MeetingAddress,
		ManualStatus:   session.ManualStatus(cs.ManualStatus),
		AverageRating:  cs.AverageRating,
		CreatedAt:      cs.CreatedAt,
	}
	for _, q := range cs.Questions {
		s.QuizQuestions = append(s.QuizQuestions, session.QuizQuestion(q))
	}
	for _, r := range cs.Ratings {
		user := session.UserRefFromID(session.UserID(r.UserID))
		if r.Hydrated {
			user = session.UserRefFromSummary(session.UserSummary{
				ID:   session.UserID(r.UserID),
				Name: r.UserName,
			})
		}
		s.Ratings = append(s.Ratings, session.UserRating{
			User:    user,
			Rating:  session.Rating(r.Rating),
			Comment: r.Comment,
		})
	}
	return s
}

// Load implements session.CacheRepository.
func (c *SessionCache) Load(ctx context.Context, userID session.UserID, kind session.ListKind) ([]*session.Session, bool, error) {
	data, err := c.client.Get(ctx, listKey(userID, kind)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cached []cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	sessions := make([]*session.Session, 0, len(cached))
	for _, cs := range cached {
		sessions = append(sessions, fromCached(cs))
	}
	return sessions, true, nil
}

// Refresh implements session.CacheRepository.
func (c *SessionCache) Refresh(ctx context.Context, userID session.UserID, kind session.ListKind, sessions []*session.Session) error {
	cached := make([]cachedSession, 0, len(sessions))
	for _, s := range sessions {
		cached = append(cached, toCached(s))
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return c.client.Set(ctx, listKey(userID, kind), data, c.config.ListTTL).Err()
}

// Invalidate implements session.CacheRepository.
func (c *SessionCache) Invalidate(ctx context.Context, userID session.UserID, kind session.ListKind) error {
	return c.client.Del(ctx, listKey(userID, kind)).Err()
}

// IsClaimed implements session.ClaimCacheRepository.
func (c *SessionCache) IsClaimed(ctx context.Context, userID session.UserID, sessionID session.ID) (bool, error) {
	n, err := c.client.Exists(ctx, claimKey(userID, sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkClaimed implements session.ClaimCacheRepository.
func (c *SessionCache) MarkClaimed(ctx context.Context, userID session.UserID, sessionID session.ID) error {
	return c.client.Set(ctx, claimKey(userID, sessionID), "1", c.config.ClaimTTL).Err()
}

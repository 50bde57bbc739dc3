// Package main is the entry point for the PeerLink session sync agent.
//
// The agent keeps the current user's session world warm: it primes the
// in-memory lists from the Redis cache, refreshes them from the platform
// API on an interval, and keeps the pending invite inbox hydrated so the
// embedding UI always renders from fresh local state.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: session, quiz, reward, and notification models
// - Application: the session store, invite coordinator, and quiz engine
// - Infrastructure: platform API client, Redis cache, event bus
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peerlink-hub/peerlink-sessions/config"
	"github.com/peerlink-hub/peerlink-sessions/internal/application/invites"
	"github.com/peerlink-hub/peerlink-sessions/internal/application/store"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
	"github.com/peerlink-hub/peerlink-sessions/internal/infrastructure/external/platform"
	"github.com/peerlink-hub/peerlink-sessions/internal/infrastructure/messaging"
	"github.com/peerlink-hub/peerlink-sessions/internal/infrastructure/persistence/redis"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting PeerLink session sync agent",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. SESSION CACHE (Redis, optional)
	// ─────────────────────────────────────────────────────────────────────────
	var cache session.CacheRepository = noopCache{}
	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		sessionCache, err := redis.NewSessionCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			ListTTL:      cfg.Redis.ListTTL,
			ClaimTTL:     cfg.Redis.ClaimTTL,
		})
		if err != nil {
			// The cache is an accelerator; a missing Redis only costs the
			// warm start.
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer func() {
				log.Info("closing Redis connection...")
				_ = sessionCache.Close()
			}()
			cache = sessionCache
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. PLATFORM API CLIENT
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing platform API client...", "base_url", cfg.Platform.BaseURL)
	clientConfig := platform.DefaultClientConfig(cfg.Platform.BaseURL)
	clientConfig.AuthToken = cfg.Platform.AuthToken
	clientConfig.Timeout = cfg.Platform.Timeout
	clientConfig.Logger = log
	clientConfig.Debug = cfg.App.Debug
	client := platform.NewClient(clientConfig)

	if !client.IsHealthy(ctx) {
		log.Warn("platform API health check failed, continuing anyway")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(log)
	defer func() {
		log.Info("closing event bus...")
		bus.Close()
	}()

	if err := bus.SubscribeAll(func(e shared.Event) error {
		log.Info("event", "type", e.EventType(), "aggregate_id", e.AggregateID())
		return nil
	}); err != nil {
		return fmt.Errorf("failed to subscribe event logger: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	userID := session.UserID(cfg.Platform.UserID)

	sessionStore := store.New(store.Config{
		UserID:    userID,
		Sessions:  client,
		Generator: client,
		Cache:     cache,
		Events:    bus,
		Logger:    log,
	})

	coordinator := invites.New(invites.Config{
		Invites:           client,
		Lookup:            sessionLookup{client: client},
		Store:             sessionStore,
		Events:            bus,
		Logger:            log,
		HighlightDuration: cfg.Engine.HighlightDuration,
		PageLimit:         cfg.Engine.InvitePageLimit,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 7. INITIAL SYNC
	// ─────────────────────────────────────────────────────────────────────────
	sessionStore.Prime(ctx)
	refresh(ctx, log, sessionStore, coordinator)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. REFRESH LOOP & GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("session sync agent is running", "refresh_interval", cfg.Engine.RefreshInterval.String())

	ticker := time.NewTicker(cfg.Engine.RefreshInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			refresh(ctx, log, sessionStore, coordinator)
		case sig := <-sigCh:
			log.Info("received shutdown signal", "signal", sig.String())
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// refresh reloads both session lists and the invite inbox. Failures are
// logged and the previous state stays visible; the next tick tries again.
func refresh(ctx context.Context, log *slog.Logger, st *store.Store, c *invites.Coordinator) {
	if err := st.LoadCreated(ctx); err != nil {
		log.Error("refresh created sessions failed", "error", err)
	}
	if err := st.LoadJoined(ctx); err != nil {
		log.Error("refresh joined sessions failed", "error", err)
	}
	if err := c.FetchPending(ctx); err != nil {
		log.Error("refresh pending invites failed", "error", err)
	}
	log.Info("refresh complete",
		"created", len(st.CreatedCards()),
		"joined", len(st.JoinedCards()),
		"pending_invites", len(c.Pending()),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTERS
// ══════════════════════════════════════════════════════════════════════════════

// sessionLookup narrows the platform client to the session.Lookup contract
// the invite coordinator hydrates through.
type sessionLookup struct {
	client *platform.Client
}

func (l sessionLookup) GetByID(ctx context.Context, id session.ID) (*session.Session, error) {
	return l.client.GetSessionByID(ctx, id)
}

// noopCache stands in for the Redis cache when it is disabled or
// unreachable. Every load misses; the store goes straight to the API.
type noopCache struct{}

func (noopCache) Load(context.Context, session.UserID, session.ListKind) ([]*session.Session, bool, error) {
	return nil, false, nil
}

func (noopCache) Refresh(context.Context, session.UserID, session.ListKind, []*session.Session) error {
	return nil
}

func (noopCache) Invalidate(context.Context, session.UserID, session.ListKind) error {
	return nil
}

package finora

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/finora-app/finora-client/access"
	"github.com/finora-app/finora-client/auth"
	"github.com/finora-app/finora-client/authz"
	"github.com/finora-app/finora-client/guard"
	"github.com/finora-app/finora-client/session"
)

// Client bundles the authorization subsystem for UI consumers.
type Client struct {
	Auth     *auth.Service
	Sessions *session.Manager
	Access   *access.Table
	Authz    *authz.Facade
	Guard    *guard.Guard
}

// New wires the client from configuration: a Redis-backed durable session
// store, the auth service for the configured API origin, the default
// component access table and the guards on top.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = NewLogger(cfg)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	store, err := session.NewRedisStore(ctx, redisClient, cfg.StoragePrefix, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	return NewWithStore(ctx, cfg, store, logger)
}

// NewWithStore wires the client over a caller-supplied durable store. Useful
// for embedding environments with their own persistence.
func NewWithStore(ctx context.Context, cfg *Config, store session.Store, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = NewLogger(cfg)
	}

	authService, err := auth.NewService(cfg.APIBaseURL, nil, logger)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(ctx, session.Config{
		Auth:      authService,
		Store:     store,
		Logger:    logger,
		LoginPath: cfg.LoginPath,
	})
	if err != nil {
		return nil, err
	}

	table, err := access.New()
	if err != nil {
		return nil, err
	}

	return &Client{
		Auth:     authService,
		Sessions: sessions,
		Access:   table,
		Authz:    authz.New(sessions),
		Guard:    guard.New(sessions),
	}, nil
}

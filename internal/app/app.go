// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires configuration, transport, credential storage, façades,
// use cases and session state into one container.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/config"
	"github.com/baatcheet/baatcheet-cli/internal/credstore"
	"github.com/baatcheet/baatcheet-cli/internal/repository"
	"github.com/baatcheet/baatcheet-cli/internal/session"
	"github.com/baatcheet/baatcheet-cli/internal/usecase"
	"go.uber.org/zap"
)

// ============================================================================
// CONTAINER
// ============================================================================

// App holds every long-lived dependency. Build it once with New and release
// it with Close.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	Client *api.Client
	Store  credstore.Store

	// Façades
	Auth      *repository.AuthRepository
	Chat      *repository.ChatRepository
	Projects  *repository.ProjectRepository
	Profile   *repository.ProfileRepository
	Analytics *repository.AnalyticsRepository

	// Use cases
	AuthUseCase    *usecase.AuthUseCase
	ChatUseCase    *usecase.ChatUseCase
	ProjectUseCase *usecase.ProjectUseCase
	ProfileUseCase *usecase.ProfileUseCase

	// Session state
	Flow *session.AuthFlow

	shutdownFuncs []func() error
}

// New builds the container from cfg. A nil logger disables logging.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	store, closer, err := OpenStore(cfg.Credentials, cfg.Passphrase())
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	a.Store = store
	if closer != nil {
		a.shutdownFuncs = append(a.shutdownFuncs, closer)
	}

	a.Client = NewClient(cfg.API, credstore.TokenSource{Store: store}, logger)

	a.Auth = repository.NewAuthRepository(a.Client, store, logger)
	a.Chat = repository.NewChatRepository(a.Client, logger)
	a.Projects = repository.NewProjectRepository(a.Client, logger)
	a.Profile = repository.NewProfileRepository(a.Client, logger)
	a.Analytics = repository.NewAnalyticsRepository(a.Client, logger)

	a.AuthUseCase = usecase.NewAuthUseCase(a.Auth)
	a.ChatUseCase = usecase.NewChatUseCase(a.Chat)
	a.ProjectUseCase = usecase.NewProjectUseCase(a.Projects)
	a.ProfileUseCase = usecase.NewProfileUseCase(a.Profile)

	a.Flow = session.NewAuthFlow(a.AuthUseCase, logger)
	a.resume()
	return a, nil
}

// resume seeds the auth flow from whatever the store holds.
func (a *App) resume() {
	pending, _ := a.Auth.PendingEmail()
	if !a.Auth.IsAuthenticated() {
		a.Flow.Resume(nil, false, pending)
		return
	}
	if user, ok := a.Auth.CachedUser(); ok {
		a.Flow.Resume(&user, true, "")
		return
	}
	a.Flow.Resume(nil, true, "")
}

// NewThread creates a chat thread bound to the chat use case and the
// configured default mode.
func (a *App) NewThread() *session.ChatThread {
	t := session.NewChatThread(a.ChatUseCase, a.Logger)
	t.SetMode(a.Config.Chat.DefaultMode)
	return t
}

// Prefetch loads profile, usage and modes after sign-in.
func (a *App) Prefetch(ctx context.Context) session.Prefetched {
	return session.Prefetch(ctx, a.Profile, a.Chat, a.Logger)
}

// Close releases the credential store.
func (a *App) Close() error {
	var errs []error
	for _, fn := range a.shutdownFuncs {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdownFuncs = nil
	return errors.Join(errs...)
}

// ============================================================================
// PROVIDERS
// ============================================================================

// NewClient builds the transport from the [api] settings.
func NewClient(cfg config.APIConfig, tokens api.TokenSource, logger *zap.Logger) *api.Client {
	c := api.NewClient(cfg.BaseURL, tokens).
		WithAPIPrefix(cfg.APIPrefix).
		WithTimeouts(api.Timeouts{
			Default: seconds(cfg.TimeoutSecs),
			Upload:  seconds(cfg.UploadTimeoutSecs),
			Image:   seconds(cfg.ImageTimeoutSecs),
		}).
		WithUserAgent(cfg.UserAgent).
		WithRateLimit(cfg.MaxRequestsPerSecond).
		WithLogger(logger)

	if cfg.Breaker.Enabled {
		b := api.DefaultBreakerConfig()
		b.FailureThreshold = cfg.Breaker.FailureRatio
		b.MinRequests = uint32(cfg.Breaker.MinRequests)
		b.Timeout = seconds(cfg.Breaker.OpenSecs)
		c = c.WithCircuitBreaker(b)
	}
	return c
}

// OpenStore opens the configured credential store. The returned closer is
// nil for backends that hold no resources.
func OpenStore(cfg config.CredentialsConfig, passphrase string) (credstore.Store, func() error, error) {
	opts := credstore.FileOptions{Passphrase: passphrase}

	switch cfg.Backend {
	case config.BackendMemory:
		return credstore.NewMemory(), nil, nil
	case config.BackendFile, "":
		f, err := credstore.OpenFile(cfg.Path, opts)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	case config.BackendSQLite:
		c, err := credstore.SQLiteCipher(cfg.Path, opts)
		if err != nil {
			return nil, nil, err
		}
		db, err := credstore.OpenSQLite(cfg.Path, c)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown credential backend %q", cfg.Backend)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Package app wires configuration, storage, policy, tokens and the
// gateway into one value shared by the server and the admin tools.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"binder/internal/auth"
	"binder/internal/capabilities"
	"binder/internal/config"
	"binder/internal/metrics"
	"binder/internal/repository"
	"binder/internal/service/folders"
)

// App holds the long-lived components of a process
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *repository.Store
	Policy  *capabilities.Registry
	Tokens  *auth.ActionTokens
	Metrics *metrics.Metrics
	Gateway *folders.Gateway
}

// New opens storage, migrates it and builds the gateway
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate storage: %w", err)
	}
	logger.Info("storage ready",
		"driver", store.Driver,
		"table_prefix", cfg.TablePrefix,
	)

	policy, err := capabilities.NewRegistry()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load capability policy: %w", err)
	}

	secret := cfg.ActionTokenSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("ACTION_TOKEN_SECRET not set, using a per-process secret (tokens will not survive a restart)")
	}
	tokens, err := auth.NewActionTokens(secret, cfg.ActionTokenTTL)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create action tokens: %w", err)
	}

	recorder := metrics.New()

	gateway := folders.NewGateway(folders.GatewayDeps{
		Registry:   folders.NewFolderRegistry(store.Folders, store.Memberships, logger),
		Membership: folders.NewMembershipIndex(store.Memberships, store.Folders, store.Records, logger),
		Ordering:   folders.NewOrderingStore(store.Orders, logger),
		Records:    store.Records,
		TxManager:  store.TxManager,
		Authorizer: policy,
		Tokens:     tokens,
		Metrics:    recorder,
		Logger:     logger,
	})

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Policy:  policy,
		Tokens:  tokens,
		Metrics: recorder,
		Gateway: gateway,
	}, nil
}

// Close releases storage
func (a *App) Close() {
	a.Store.Close()
}

func randomSecret() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

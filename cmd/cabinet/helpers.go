package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/cabinet-go/cabinet/collections"
	"github.com/cabinet-go/cabinet/internal/common"
	"github.com/cabinet-go/cabinet/internal/registry"
	"github.com/cabinet-go/cabinet/internal/repository"
)

// app bundles the pieces every subcommand needs. Close when done.
type app struct {
	cfg      *common.Config
	logger   *slog.Logger
	store    *repository.Store
	registry *registry.Registry
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("CABINET_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadApp reads config, opens the store and installs the built-in
// collections.
func loadApp(ctx context.Context) (*app, error) {
	logger := newLogger()
	cfg, err := common.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := store.HealthCheck(ctx, time.Second); err != nil {
		store.Close()
		return nil, err
	}

	reg := registry.New(logger)
	collections.RegisterBase(reg)
	collections.RegisterWebBill(reg)

	return &app{cfg: cfg, logger: logger, store: store, registry: reg}, nil
}

func (a *app) Close() { a.store.Close() }

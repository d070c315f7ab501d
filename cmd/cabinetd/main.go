package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/cabinet-go/cabinet/collections"
	"github.com/cabinet-go/cabinet/internal/common"
	"github.com/cabinet-go/cabinet/internal/extract"
	"github.com/cabinet-go/cabinet/internal/ingest"
	"github.com/cabinet-go/cabinet/internal/registry"
	"github.com/cabinet-go/cabinet/internal/repository"
)

// cabinetd watches an inbox directory, classifying and filing every PDF that
// lands there, and exposes a gRPC health endpoint for supervisors.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("daemon exited", "error", err)
		os.Exit(1)
	}
	fmt.Println("stopped.")
}

func logLevel() slog.Level {
	if os.Getenv("CABINET_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func run(logger *slog.Logger) error {
	cfg, err := common.LoadConfig(os.Getenv("CABINET_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Ingest.InboxDir == "" {
		return fmt.Errorf("CABINET_INBOX_DIR is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx, time.Second); err != nil {
		return fmt.Errorf("store health: %w", err)
	}
	logger.Info("store health OK", "dsn", cfg.Database.DSN)

	reg := registry.New(logger)
	collections.RegisterBase(reg)
	collections.RegisterWebBill(reg)

	files, watchErrs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Root:        cfg.Ingest.InboxDir,
		InitialScan: true,
	}, logger)
	if err != nil {
		return fmt.Errorf("watching inbox: %w", err)
	}
	svc := ingest.NewService(reg, extract.NewPDFToText(logger), store.Documents(), logger)
	go svc.Run(ctx, files, cfg.Ingest.Collection, cfg.Ingest.DefaultType)
	go func() {
		for err := range watchErrs {
			logger.Error("watcher error", "error", err)
		}
	}()

	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("gRPC serving", "addr", cfg.Server.GRPCAddr, "inbox", cfg.Ingest.InboxDir)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()
	return nil
}

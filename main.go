package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"votechain/api"
	"votechain/auth"
	"votechain/config"
	"votechain/ledger"
	"votechain/service"
	"votechain/storage"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
		logger.Fatal("failed to create storage directory", zap.Error(err))
	}

	store, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}

	authority, err := ledger.LoadOrCreateAuthority(cfg.StorageDir)
	if err != nil {
		logger.Fatal("failed to initialize election authority", zap.Error(err))
	}
	engine := ledger.NewEngine(cfg.Difficulty, authority)

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	totp := auth.NewTotpService(cfg.TotpIssuer)
	matcher := auth.NewEuclideanMatcher()

	authSvc := service.NewAuthService(store, tokens, totp, matcher, logger)
	voting := service.NewVotingService(store, engine, logger)
	if err := voting.EnsureSeedElection(); err != nil {
		logger.Fatal("failed to seed election", zap.Error(err))
	}

	server := api.NewServer(authSvc, voting, tokens, logger)
	httpServer := &http.Server{Addr: cfg.Addr, Handler: server.Router()}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.Addr),
			zap.Int("difficulty", engine.Difficulty()),
		)
		serverErr <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
	}
}

func newStore(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	if cfg.DatabaseDSN == "" {
		logger.Warn("DATABASE_DSN not set, falling back to the in-memory store")
		return storage.NewMemoryStore(), nil
	}
	return storage.NewGormStore(cfg.DatabaseDSN)
}

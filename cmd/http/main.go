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

	"skinsol/vault-service/internal/config"
	"skinsol/vault-service/internal/db"
	"skinsol/vault-service/internal/handler"
	"skinsol/vault-service/internal/ledger"
	"skinsol/vault-service/internal/logging"
	"skinsol/vault-service/internal/repository"
	"skinsol/vault-service/internal/service"
	"skinsol/vault-service/internal/service/skinport"
)

type store interface {
	ledger.Store
	service.LinkStore
}

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logging.New(cfg.LogLevel)
	defer log.Sync()

	// 2. Setup storage
	ctx := context.Background()
	var st store
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database unavailable", zap.Error(err))
		}
		defer pool.Close()

		if err := db.ApplyMigrations(ctx, pool); err != nil {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
		log.Info("connected to database")
		st = repository.NewPostgresStore(pool)
	default:
		log.Warn("using in-memory storage, state is lost on exit")
		st = repository.NewMemoryStore()
	}

	// 3. Setup services
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	market := skinport.NewClient(skinport.Config{
		APIURL:   cfg.Skinport.APIURL,
		ClientID: cfg.Skinport.ClientID,
		APIKey:   cfg.Skinport.APIKey,
	})

	h := handler.NewHandler(handler.Deps{
		Vaults:   service.NewVaultService(st, log.Named("vault")),
		Listings: service.NewListingService(st, ledger.NewSystemClock(), log.Named("listing")),
		Links:    service.NewLinkService(st, tokens, log.Named("link")),
		Tokens:   tokens,
		Market:   market,
		Log:      log.Named("http"),
	})

	// 4. Setup Server
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. Run Server with Graceful Shutdown
	go func() {
		log.Info("starting server", zap.String("port", cfg.ServerPort), zap.String("storage", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server exiting")
}

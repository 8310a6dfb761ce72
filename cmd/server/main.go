package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/serendigo/serendigo-backend-go/internal/api"
	"github.com/serendigo/serendigo-backend-go/internal/backend"
	"github.com/serendigo/serendigo-backend-go/internal/config"
	"github.com/serendigo/serendigo-backend-go/internal/database"
	"github.com/serendigo/serendigo-backend-go/internal/logger"
	"github.com/serendigo/serendigo-backend-go/internal/repository"
	"github.com/serendigo/serendigo-backend-go/internal/service"
)

const pruneInterval = time.Hour

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel, cfg.Development); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		logger.Log.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		return err
	}
	defer database.Close()

	if err := database.NewMigrationManager(database.GetDB()).RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)
	attempts := repository.NewAttemptRepository(database.GetDB())

	// Google autocomplete already restricts to establishments, so the
	// backend details check only applies to backend predictions.
	var places *service.PlacesService
	if cfg.GoogleMapsAPIKey != "" {
		places = service.NewPlacesService(backend.NewGooglePlaces(client, cfg.GoogleMapsAPIKey), nil, 0)
	} else {
		places = service.NewPlacesService(client, client, 10*time.Minute)
	}

	sessions := service.NewSessionService(client, attempts, client, cfg.SessionTTL)
	svc := api.Services{
		Sessions: sessions,
		Auth:     service.NewAuthService(client, cfg.JWTSecret, cfg.TokenTTL),
		Guide:    service.NewGuideService(client),
		History:  service.NewHistoryService(client, sessions),
		Places:   places,
	}

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           api.SetupRouter(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go pruneAttempts(ctx, attempts, cfg.AttemptRetention)

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server starting", zap.String("addr", cfg.Port), zap.String("backend", cfg.BackendBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Log.Info("Signal received, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// pruneAttempts drops attempt log rows older than retention until ctx ends.
func pruneAttempts(ctx context.Context, repo *repository.AttemptRepository, retention time.Duration) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		n, err := repo.DeleteBefore(ctx, time.Now().Add(-retention))
		if err != nil && ctx.Err() == nil {
			logger.Log.Warn("Failed to prune attempts", zap.Error(err))
		} else if n > 0 {
			logger.Log.Info("Pruned attempts", zap.Int64("rows", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

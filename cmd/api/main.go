package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"trustmrr/internal/config"
	"trustmrr/internal/database"
	"trustmrr/internal/logger"
	"trustmrr/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl := logger.New(cfg.LogLevel, !cfg.IsProd())
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal().Err(err).Msg("database connection failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		zl.Fatal().Err(err).Msg("auto migrate failed")
	}
	if err := database.RunMigrations(db, cfg.DatabaseURL); err != nil {
		zl.Fatal().Err(err).Msg("migrations failed")
	}

	a, err := newApp(context.Background(), cfg, zl, db)
	if err != nil {
		zl.Fatal().Err(err).Msg("startup failed")
	}
	defer a.close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error().Err(err).Msg("forced shutdown")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"backend-triage/internal/auth"
	"backend-triage/internal/database"
	"backend-triage/internal/handlers"
	"backend-triage/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context, v *viper.Viper) (err error) {
	cfg, log, err := setup(v)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))
		return err
	}
	defer func() {
		err = multierr.Append(err, database.Close(db))
	}()

	if err := database.Migrate(db); err != nil {
		log.Error("Failed to migrate database", zap.Error(err))
		return err
	}
	log.Info("Database migrated")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pinger, err := database.PingerOf(db)
	if err != nil {
		return err
	}
	state := database.NewState(false)
	database.Probe(ctx, pinger, state, cfg.DBPingInterval, log)
	go database.Monitor(ctx, pinger, state, cfg.DBPingInterval, log)

	router := handlers.NewRouter(handlers.RouterConfig{
		Environment: cfg.Environment,
		APIRoot:     cfg.APIRoot,
		CORSOrigins: cfg.CORSOrigins,
		Patients:    services.NewPatientService(db, state),
		Triages:     services.NewTriageService(db, state),
		Verifier:    auth.NewVerifier(cfg.JWTSecret),
		State:       state,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Server running", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		log.Error("Server failed", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, closing HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = multierr.Append(err, srv.Shutdown(shutdownCtx))
	log.Info("HTTP server closed")
	return err
}

func migrate(v *viper.Viper) (err error) {
	cfg, log, err := setup(v)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, database.Close(db))
	}()

	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("Database migrated")
	return nil
}

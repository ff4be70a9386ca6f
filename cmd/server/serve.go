package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/employee-management/internal/database"
	"github.com/yukikurage/employee-management/internal/logger"
	"github.com/yukikurage/employee-management/internal/server"
	"github.com/yukikurage/employee-management/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server",
	Long:  `Run migrations and start the HTTP server`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.L()

	if cfg.AllowAdminSignup {
		log.Warn("ALLOW_ADMIN_SIGNUP is on: anyone can register an administrator account")
	}
	if cfg.UsesDefaultSecret() {
		log.Warn("SESSION_SECRET is the built-in development value; set a real secret before deploying")
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Database close error", "error", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		return err
	}

	store, err := storage.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	sessionStore, err := server.NewSessionStore(cfg)
	if err != nil {
		return err
	}

	engine, err := server.NewRouter(server.Dependencies{
		Config:       cfg,
		DB:           db,
		Storage:      store,
		SessionStore: sessionStore,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(cfg, engine),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", cfg.ListenAddr, "upload_backend", cfg.UploadBackend, "session_store", cfg.SessionStore)
		serverErrChan <- srv.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	slog.Info("Server stopped")
	return nil
}

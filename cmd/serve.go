package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chxlky/trello-report/api"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Serve the latest reports over HTTP and refresh them on Trello webhooks",
	Annotations: map[string]string{credentialsAnnotation: "required"},
	RunE:        runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := buildPipeline(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	var archive api.RunLister
	if d.archive != nil {
		archive = d.archive
	}
	apiHandler := api.NewHandler(d.pipeline, archive)

	logger := zap.L()
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	apiHandler.Register(router.Group("/api"))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	zap.L().Info("Starting server", zap.String("port", cfg.Server.Port))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server error", zap.Error(err))
		}
	}()

	if _, err := apiHandler.Refresh(cmd.Context()); err != nil {
		zap.L().Error("Initial report run failed", zap.Error(err))
	}

	var webhookID string
	if d.trello.CallbackURL != "" {
		// Trello verifies the callback with a HEAD request, so the server must be up first
		webhookID, err = d.trello.RegisterWebhook(cmd.Context(), d.trello.BoardID)
		if err != nil {
			zap.L().Error("Failed to register webhook; reports refresh only on demand", zap.Error(err))
		}
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once

	cleanup := func(reason string) {
		zap.L().Info("Shutdown initiated", zap.String("reason", reason))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		zap.L().Info("Shutting down HTTP server...")
		if err := srv.Shutdown(ctx); err != nil {
			zap.L().Error("Error shutting down server", zap.Error(err))
		} else {
			zap.L().Info("HTTP server shut down gracefully.")
		}

		if webhookID != "" {
			if err := d.trello.DeleteWebhook(ctx, webhookID); err != nil {
				zap.L().Error("Error deleting webhook for board", zap.String("boardID", d.trello.BoardID), zap.Error(err))
			}
		}

		d.close()
		close(done)
	}

	go func() {
		sig := <-sigCh
		once.Do(func() {
			cleanup(sig.String())
		})

		// if a second signal is caught, exit immediately
		go func() {
			<-sigCh
			zap.L().Info("Second interrupt signal received. Exiting immediately.")
			os.Exit(1)
		}()
	}()

	<-done
	zap.L().Info("Exiting...")
	return nil
}

package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/brickdecay/internal/server"
	"github.com/lazypower/brickdecay/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and web shell",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		// The calculator still works without history.
		logger.Warn("report history unavailable", zap.Error(err))
		db = nil
	} else {
		defer db.Close()
	}

	srv := server.New(db, VersionString(), server.Options{
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     cfg.Metrics.Enabled,
	})
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("brickdecay serving", zap.String("addr", addr), zap.String("db", dbPathOf(db)))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}

func dbPathOf(db *store.DB) string {
	if db == nil {
		return ""
	}
	return db.Path
}

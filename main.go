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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xiaot623/gogo/marketplace/internal/adapter/invoker"
	"github.com/xiaot623/gogo/marketplace/internal/auth"
	"github.com/xiaot623/gogo/marketplace/internal/cli"
	"github.com/xiaot623/gogo/marketplace/internal/config"
	"github.com/xiaot623/gogo/marketplace/internal/metrics"
	store "github.com/xiaot623/gogo/marketplace/internal/repository"
	"github.com/xiaot623/gogo/marketplace/internal/service"
	handler "github.com/xiaot623/gogo/marketplace/internal/transport/http"
	"github.com/xiaot623/gogo/marketplace/policy"
)

// Set at build time with -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(runServer, cli.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()
	if err := cli.BindServerFlags(cmd, v); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	logger.Info("starting marketplace",
		"addr", cfg.Addr(),
		"store_driver", cfg.StoreDriver,
		"invoke_mode", cfg.InvokeMode,
	)

	ctx := context.Background()

	// Initialize store
	db, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	// Initialize policy engine
	policyEngine, err := policy.NewEngineFromFile(ctx, cfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	// Initialize invoker
	inv, err := invoker.New(cfg.InvokeMode, cfg.InvokeTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize invoker: %w", err)
	}

	// Initialize service
	m := metrics.New()
	svc := service.New(db, inv, policyEngine, m, cfg, logger)
	resolver := auth.NewResolver(auth.LoadCredentials(cfg.APIKeys, logger))

	e := handler.NewServer(svc, resolver, m, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("marketplace API started", "addr", cfg.Addr(), "base_url", cfg.BaseURL)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("shutting down marketplace")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", "error", err)
	}

	logger.Info("marketplace stopped")
	return nil
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// Package helpers builds stores and services for tests.
package helpers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/xiaot623/gogo/marketplace/internal/adapter/invoker"
	"github.com/xiaot623/gogo/marketplace/internal/config"
	"github.com/xiaot623/gogo/marketplace/internal/metrics"
	store "github.com/xiaot623/gogo/marketplace/internal/repository"
	"github.com/xiaot623/gogo/marketplace/internal/service"
	"github.com/xiaot623/gogo/marketplace/policy"
)

func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// NewTestConfig returns a config with defaults suitable for tests.
func NewTestConfig() *config.Config {
	return &config.Config{
		Host:        "127.0.0.1",
		Port:        9091,
		BaseURL:     "http://localhost:9091",
		StoreDriver: config.StoreDriverMemory,
		InvokeMode:  invoker.ModeSimulated,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestService wires a service over an in-memory store, the default policy
// and the given invoker. A nil invoker means the simulated one.
func NewTestService(t *testing.T, inv invoker.Invoker) *service.Service {
	t.Helper()
	return NewTestServiceWithStore(t, store.NewMemoryStore(), inv)
}

// NewTestServiceWithStore is NewTestService over the given store.
func NewTestServiceWithStore(t *testing.T, st store.Store, inv invoker.Invoker) *service.Service {
	t.Helper()

	if inv == nil {
		inv = invoker.NewSimulated()
	}
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}
	return service.New(st, inv, engine, metrics.New(), NewTestConfig(), DiscardLogger())
}

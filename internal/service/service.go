// Package service implements the marketplace core: the agent registry and the
// execution ledger, gated by the authorization policy.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xiaot623/gogo/marketplace/internal/adapter/invoker"
	"github.com/xiaot623/gogo/marketplace/internal/config"
	"github.com/xiaot623/gogo/marketplace/internal/domain"
	"github.com/xiaot623/gogo/marketplace/internal/metrics"
	store "github.com/xiaot623/gogo/marketplace/internal/repository"
	"github.com/xiaot623/gogo/marketplace/policy"
)

// Service owns all marketplace state through its store. Independent instances
// share nothing.
type Service struct {
	store        store.Store
	invoker      invoker.Invoker
	policyEngine *policy.Engine
	metrics      *metrics.Metrics
	config       *config.Config
	logger       *slog.Logger
	now          func() time.Time
}

func New(store store.Store, inv invoker.Invoker, policyEngine *policy.Engine, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		invoker:      inv,
		policyEngine: policyEngine,
		metrics:      m,
		config:       cfg,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Tests use it to pin timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// authorize asks the policy engine whether principal may perform action on a
// resource owned by owner.
func (s *Service) authorize(ctx context.Context, action string, principal domain.Principal, kind, id, owner string) (bool, error) {
	allowed, err := s.policyEngine.Allow(ctx, policy.Input{
		Action:    action,
		Principal: policy.Subject{UserID: principal.UserID, Role: principal.Role},
		Resource:  policy.Resource{Kind: kind, ID: id, Owner: owner},
	})
	if err != nil {
		return false, fmt.Errorf("policy evaluation failed: %w", err)
	}
	return allowed, nil
}

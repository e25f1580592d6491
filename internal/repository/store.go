// Package store defines the storage interface and implementations backing the
// agent registry and the execution ledger.
package store

import (
	"context"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// Store owns agent descriptors and per-agent execution history. Lookups of
// missing entities return (nil, nil). Returned values are copies.
type Store interface {
	// Agent operations
	CreateAgent(ctx context.Context, agent *domain.Agent) error
	GetAgent(ctx context.Context, agentID string) (*domain.Agent, error)
	// ListAgents returns live agents in registration order.
	ListAgents(ctx context.Context) ([]domain.Agent, error)
	// ReplaceAgent overwrites a live agent. It reports false when the agent is absent.
	ReplaceAgent(ctx context.Context, agent *domain.Agent) (bool, error)
	// DeleteAgent removes a live agent and returns it, or nil when absent. The id
	// stays known so its execution history remains addressable.
	DeleteAgent(ctx context.Context, agentID string) (*domain.Agent, error)
	// AgentKnown reports whether the id was ever registered, deleted or not.
	AgentKnown(ctx context.Context, agentID string) (bool, error)

	// Execution operations
	AppendExecution(ctx context.Context, record *domain.ExecutionRecord) error
	// ListExecutions returns an agent's records in submission order.
	ListExecutions(ctx context.Context, agentID string) ([]domain.ExecutionRecord, error)
	GetExecution(ctx context.Context, agentID, executionID string) (*domain.ExecutionRecord, error)

	// Lifecycle
	Close() error
}

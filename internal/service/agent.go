package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
	"github.com/xiaot623/gogo/marketplace/policy"
)

// RegisterAgent validates spec and stores a new agent owned by principal.
// Registration is open to every principal.
func (s *Service) RegisterAgent(ctx context.Context, spec domain.AgentSpec, principal domain.Principal) (*domain.Agent, error) {
	spec = spec.Normalize()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	agent := &domain.Agent{
		ID:        uuid.NewString(),
		AgentSpec: spec.Clone(),
		Status:    domain.AgentStatusActive,
		CreatedAt: s.now(),
		CreatedBy: principal.UserID,
	}
	if err := s.store.CreateAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to register agent: %w", err)
	}

	s.metrics.AgentsRegistered.Inc()
	s.logger.Info("agent registered", "agent_id", agent.ID, "name", agent.Name, "created_by", agent.CreatedBy)
	return agent, nil
}

// GetAgent returns an agent by id. Descriptors are public.
func (s *Service) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	agent, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	if agent == nil {
		return nil, agentNotFound(agentID)
	}
	return agent, nil
}

// ListAgents returns every agent matching all set criteria of filter, in
// registration order.
func (s *Service) ListAgents(ctx context.Context, filter domain.AgentFilter, principal domain.Principal) ([]domain.Agent, error) {
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	m := newMatcher(filter)
	results := make([]domain.Agent, 0, len(agents))
	for i := range agents {
		if m.matches(&agents[i]) {
			results = append(results, agents[i])
		}
	}
	return results, nil
}

// UpdateAgent overwrites every descriptor field of an agent. Only the creator
// or an admin may update; id, created_at, created_by and status are kept.
func (s *Service) UpdateAgent(ctx context.Context, agentID string, spec domain.AgentSpec, principal domain.Principal) (*domain.Agent, error) {
	existing, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.authorize(ctx, policy.ActionAgentUpdate, principal, "agent", agentID, existing.CreatedBy)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: you don't have permission to update this agent", domain.ErrForbidden)
	}

	spec = spec.Normalize()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	updated := existing.Clone()
	updated.AgentSpec = spec.Clone()
	updated.UpdatedAt = &now

	ok, err := s.store.ReplaceAgent(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}
	if !ok {
		// deleted between the read and the write
		return nil, agentNotFound(agentID)
	}

	s.metrics.AgentsUpdated.Inc()
	s.logger.Info("agent updated", "agent_id", agentID, "updated_by", principal.UserID)
	return updated, nil
}

// DeleteAgent removes an agent and returns it. Admin only. Execution history
// for the agent is kept.
func (s *Service) DeleteAgent(ctx context.Context, agentID string, principal domain.Principal) (*domain.Agent, error) {
	existing, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.authorize(ctx, policy.ActionAgentDelete, principal, "agent", agentID, existing.CreatedBy)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: only administrators can delete agents", domain.ErrForbidden)
	}

	removed, err := s.store.DeleteAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete agent: %w", err)
	}
	if removed == nil {
		return nil, agentNotFound(agentID)
	}

	s.metrics.AgentsDeleted.Inc()
	s.logger.Info("agent deleted", "agent_id", agentID, "deleted_by", principal.UserID)
	return removed, nil
}

func agentNotFound(agentID string) error {
	return fmt.Errorf("%w: agent with ID %s not found", domain.ErrNotFound, agentID)
}

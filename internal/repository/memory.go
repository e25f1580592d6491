package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// MemoryStore implements Store with mutex-guarded maps. Agents and executions
// are guarded by separate locks; no operation needs both at once.
type MemoryStore struct {
	agentsMu sync.RWMutex
	agents   map[string]*domain.Agent
	order    []string
	known    map[string]struct{}

	execMu     sync.RWMutex
	executions map[string][]*domain.ExecutionRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents:     make(map[string]*domain.Agent),
		known:      make(map[string]struct{}),
		executions: make(map[string][]*domain.ExecutionRecord),
	}
}

// CreateAgent stores a new agent. Ids are never reused, even after deletion.
func (s *MemoryStore) CreateAgent(ctx context.Context, agent *domain.Agent) error {
	s.agentsMu.Lock()
	defer s.agentsMu.Unlock()

	if _, exists := s.known[agent.ID]; exists {
		return fmt.Errorf("agent %s already exists", agent.ID)
	}
	s.agents[agent.ID] = agent.Clone()
	s.order = append(s.order, agent.ID)
	s.known[agent.ID] = struct{}{}
	return nil
}

// GetAgent retrieves a live agent by ID.
func (s *MemoryStore) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()
	return s.agents[agentID].Clone(), nil
}

// ListAgents lists live agents in registration order.
func (s *MemoryStore) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()

	agents := make([]domain.Agent, 0, len(s.agents))
	for _, id := range s.order {
		if a, ok := s.agents[id]; ok {
			agents = append(agents, *a.Clone())
		}
	}
	return agents, nil
}

// ReplaceAgent overwrites a live agent.
func (s *MemoryStore) ReplaceAgent(ctx context.Context, agent *domain.Agent) (bool, error) {
	s.agentsMu.Lock()
	defer s.agentsMu.Unlock()

	if _, ok := s.agents[agent.ID]; !ok {
		return false, nil
	}
	s.agents[agent.ID] = agent.Clone()
	return true, nil
}

// DeleteAgent removes a live agent and compacts the order slice.
func (s *MemoryStore) DeleteAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	s.agentsMu.Lock()
	defer s.agentsMu.Unlock()

	agent, ok := s.agents[agentID]
	if !ok {
		return nil, nil
	}
	delete(s.agents, agentID)
	for i, id := range s.order {
		if id == agentID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return agent, nil
}

// AgentKnown reports whether the id was ever registered.
func (s *MemoryStore) AgentKnown(ctx context.Context, agentID string) (bool, error) {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()
	_, ok := s.known[agentID]
	return ok, nil
}

// AppendExecution appends a record to its agent's history.
func (s *MemoryStore) AppendExecution(ctx context.Context, record *domain.ExecutionRecord) error {
	s.execMu.Lock()
	defer s.execMu.Unlock()
	s.executions[record.AgentID] = append(s.executions[record.AgentID], record.Clone())
	return nil
}

// ListExecutions lists an agent's records in submission order.
func (s *MemoryStore) ListExecutions(ctx context.Context, agentID string) ([]domain.ExecutionRecord, error) {
	s.execMu.RLock()
	defer s.execMu.RUnlock()

	records := s.executions[agentID]
	out := make([]domain.ExecutionRecord, 0, len(records))
	for _, r := range records {
		out = append(out, *r.Clone())
	}
	return out, nil
}

// GetExecution retrieves a record by agent and execution ID.
func (s *MemoryStore) GetExecution(ctx context.Context, agentID, executionID string) (*domain.ExecutionRecord, error) {
	s.execMu.RLock()
	defer s.execMu.RUnlock()

	for _, r := range s.executions[agentID] {
		if r.ID == executionID {
			return r.Clone(), nil
		}
	}
	return nil, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

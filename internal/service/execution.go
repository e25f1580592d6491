package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/marketplace/internal/adapter/invoker"
	"github.com/xiaot623/gogo/marketplace/internal/domain"
	"github.com/xiaot623/gogo/marketplace/policy"
)

// SubmitExecution invokes a registered agent and appends the outcome to its
// ledger. An invoker failure is recorded with status failed and still returned
// as a record, not an error.
func (s *Service) SubmitExecution(ctx context.Context, agentID string, req domain.ExecuteRequest, principal domain.Principal) (*domain.ExecutionRecord, error) {
	agent, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	if req.AgentID != "" && req.AgentID != agentID {
		return nil, fmt.Errorf("%w: agent_id in body (%s) does not match path (%s)", domain.ErrValidation, req.AgentID, agentID)
	}

	record := &domain.ExecutionRecord{
		ID:         uuid.NewString(),
		AgentID:    agentID,
		UserID:     principal.UserID,
		Input:      req.InputData.Clone(),
		Parameters: req.ExecutionParameters.Clone(),
		CreatedAt:  s.now(),
	}
	if record.Parameters == nil {
		record.Parameters = domain.Document{}
	}

	// The invocation runs outside any store lock.
	start := time.Now()
	result, invokeErr := s.invoker.Invoke(ctx, *agent, invoker.Request{
		Input:       req.InputData.Clone(),
		Parameters:  req.ExecutionParameters.Clone(),
		Credentials: req.AuthCredentials.Clone(),
	})
	s.metrics.InvokeDuration.Observe(time.Since(start).Seconds())

	if instant, ok := s.invoker.(invoker.Instant); ok && instant.Instant() {
		record.CompletedAt = record.CreatedAt
	} else {
		record.CompletedAt = s.now()
	}

	if invokeErr != nil {
		record.Status = domain.ExecutionStatusFailed
		record.Error = invokeErr.Error()
		s.logger.Warn("agent invocation failed", "agent_id", agentID, "execution_id", record.ID, "error", invokeErr)
	} else {
		record.Status = domain.ExecutionStatusCompleted
		record.Result = result
	}

	if err := s.store.AppendExecution(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record execution: %w", err)
	}

	s.metrics.Executions.WithLabelValues(string(record.Status)).Inc()
	s.logger.Info("execution recorded",
		"agent_id", agentID,
		"execution_id", record.ID,
		"user_id", record.UserID,
		"status", record.Status,
	)
	return record, nil
}

// ListExecutions returns the agent's records in submission order, narrowed to
// those the principal may read. The agent may have been deleted since.
func (s *Service) ListExecutions(ctx context.Context, agentID string, principal domain.Principal) ([]domain.ExecutionRecord, error) {
	if err := s.ensureKnown(ctx, agentID); err != nil {
		return nil, err
	}

	records, err := s.store.ListExecutions(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	visible := make([]domain.ExecutionRecord, 0, len(records))
	for i := range records {
		allowed, err := s.canReadExecution(ctx, principal, &records[i])
		if err != nil {
			return nil, err
		}
		if allowed {
			visible = append(visible, records[i])
		}
	}
	return visible, nil
}

// GetExecution returns one record if the principal submitted it or is an admin.
func (s *Service) GetExecution(ctx context.Context, agentID, executionID string, principal domain.Principal) (*domain.ExecutionRecord, error) {
	if err := s.ensureKnown(ctx, agentID); err != nil {
		return nil, err
	}

	record, err := s.store.GetExecution(ctx, agentID, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: execution with ID %s not found for agent %s", domain.ErrNotFound, executionID, agentID)
	}

	allowed, err := s.canReadExecution(ctx, principal, record)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: you don't have permission to view this execution", domain.ErrForbidden)
	}
	return record, nil
}

func (s *Service) ensureKnown(ctx context.Context, agentID string) error {
	known, err := s.store.AgentKnown(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to look up agent: %w", err)
	}
	if !known {
		return agentNotFound(agentID)
	}
	return nil
}

func (s *Service) canReadExecution(ctx context.Context, principal domain.Principal, record *domain.ExecutionRecord) (bool, error) {
	return s.authorize(ctx, policy.ActionExecutionRead, principal, "execution", record.ID, record.UserID)
}

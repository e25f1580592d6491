package domain

import "time"

// ExecutionRecord is an immutable log entry of one invocation and its outcome.
type ExecutionRecord struct {
	ID          string          `json:"id"`
	AgentID     string          `json:"agent_id"`
	UserID      string          `json:"user_id"`
	Input       Document        `json:"input"`
	Parameters  Document        `json:"parameters"`
	Status      ExecutionStatus `json:"status"`
	Result      Document        `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Clone returns a deep copy of the record.
func (r *ExecutionRecord) Clone() *ExecutionRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Input = r.Input.Clone()
	out.Parameters = r.Parameters.Clone()
	out.Result = r.Result.Clone()
	return &out
}

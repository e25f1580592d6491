package invoker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// Simulated fabricates a descriptive echo instead of calling the agent.
type Simulated struct{}

// NewSimulated creates a simulated invoker.
func NewSimulated() *Simulated {
	return &Simulated{}
}

var (
	_ Invoker = (*Simulated)(nil)
	_ Instant = (*Simulated)(nil)
)

// Instant reports true: the simulated invoker never leaves the process.
func (s *Simulated) Instant() bool {
	return true
}

// Invoke returns a deterministic result derived from the agent name and input.
func (s *Simulated) Invoke(ctx context.Context, agent domain.Agent, req Request) (domain.Document, error) {
	return domain.Document{
		"message": fmt.Sprintf("Simulated response from agent '%s'", agent.Name),
		"data": map[string]any{
			"generated_output": "This is a simulated response for input: " + renderInput(req.Input),
		},
	}, nil
}

// renderInput encodes the input as JSON. encoding/json sorts map keys, so the
// rendering is stable for equal inputs.
func renderInput(input domain.Document) string {
	if input == nil {
		return "{}"
	}
	b, err := json.Marshal(input)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(input))
	}
	return string(b)
}

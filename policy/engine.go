// Package policy evaluates authorization decisions with OPA.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"
)

// Actions understood by the default policy.
const (
	ActionAgentUpdate   = "agent.update"
	ActionAgentDelete   = "agent.delete"
	ActionExecutionRead = "execution.read"
)

// Subject is the principal half of a policy input.
type Subject struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Resource is the object half of a policy input.
type Resource struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

// Input is the document handed to the Rego query.
type Input struct {
	Action    string   `json:"action"`
	Principal Subject  `json:"principal"`
	Resource  Resource `json:"resource"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.marketplace.authz.allow"),
		rego.Module("marketplace_authz.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewEngineFromFile loads the policy from path, falling back to DefaultPolicy
// when path is empty.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Allow reports whether the input is permitted. Anything other than a boolean
// true from the policy is a deny.
func (e *Engine) Allow(ctx context.Context, input Input) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}

	allowed, ok := results[0].Expressions[0].Value.(bool)
	return ok && allowed, nil
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package marketplace.authz

default allow = false

# Admins may do anything.
allow {
	input.principal.role == "admin"
}

# Owners may update their own agents.
allow {
	input.action == "agent.update"
	input.principal.user_id == input.resource.owner
}

# Submitters may read their own executions.
allow {
	input.action == "execution.read"
	input.principal.user_id == input.resource.owner
}
`

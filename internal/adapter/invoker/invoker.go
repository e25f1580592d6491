// Package invoker provides the strategies used to invoke registered agents.
package invoker

import (
	"context"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// Request carries the caller-supplied payload of one invocation.
type Request struct {
	Input       domain.Document
	Parameters  domain.Document
	Credentials domain.Document
}

// Invoker performs one invocation of an agent and returns its result.
type Invoker interface {
	Invoke(ctx context.Context, agent domain.Agent, req Request) (domain.Document, error)
}

// Func adapts a plain function to the Invoker interface.
type Func func(ctx context.Context, agent domain.Agent, req Request) (domain.Document, error)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, agent domain.Agent, req Request) (domain.Document, error) {
	return f(ctx, agent, req)
}

// Instant is implemented by invokers that complete without I/O. Records they
// produce carry completed_at equal to created_at.
type Instant interface {
	Instant() bool
}

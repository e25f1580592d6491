package auth

import (
	"fmt"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// Resolver maps a caller-supplied token to a principal. The table is copied at
// construction and never mutated afterwards.
type Resolver struct {
	credentials Credentials
}

// NewResolver creates a resolver over a private copy of creds.
func NewResolver(creds Credentials) *Resolver {
	table := make(Credentials, len(creds))
	for token, p := range creds {
		table[token] = p
	}
	return &Resolver{credentials: table}
}

// Resolve returns the guest principal for an empty token, the configured
// principal for a known token, and ErrUnauthorized otherwise.
func (r *Resolver) Resolve(token string) (domain.Principal, error) {
	if token == "" {
		return domain.Guest(), nil
	}
	p, ok := r.credentials[token]
	if !ok {
		return domain.Principal{}, fmt.Errorf("%w: invalid API key", domain.ErrUnauthorized)
	}
	return p, nil
}

// Package domain defines the core domain models for the marketplace.
package domain

// AuthType is the authentication scheme an agent's endpoint expects.
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeOAuth  AuthType = "oauth"
)

// AgentStatus represents the lifecycle status of a registered agent.
type AgentStatus string

const (
	AgentStatusActive AgentStatus = "active"
)

// ExecutionStatus represents the outcome of an execution.
type ExecutionStatus string

const (
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Role names known to the built-in authorization policy.
const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

// AnonymousUserID is the user id given to requests without a credential.
const AnonymousUserID = "anonymous"

// Package auth resolves caller credentials into principals.
package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// Credentials maps an opaque token to the principal it stands for.
type Credentials map[string]domain.Principal

// DefaultCredentials returns the built-in single-entry credential table.
func DefaultCredentials() Credentials {
	return Credentials{
		"test_key": {UserID: "test_user", Role: domain.RoleAdmin},
	}
}

// ParseCredentials decodes a JSON object of token -> {user_id, role}.
func ParseCredentials(raw string) (Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds == nil {
		return nil, fmt.Errorf("failed to parse credentials: expected a JSON object")
	}
	return creds, nil
}

// LoadCredentials returns the default table, replaced wholesale by override
// when override is non-empty and well formed. A malformed override is logged
// and the default table is kept.
func LoadCredentials(override string, logger *slog.Logger) Credentials {
	if override == "" {
		return DefaultCredentials()
	}
	creds, err := ParseCredentials(override)
	if err != nil {
		logger.Error("failed to parse API_KEYS override, keeping default credentials", "error", err)
		return DefaultCredentials()
	}
	logger.Info("loaded credential override", "count", len(creds))
	return creds
}

package invoker

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// ModeSimulated fabricates results without network calls.
	ModeSimulated = "simulated"
	// ModeHTTP calls each agent's api_endpoint.
	ModeHTTP = "http"
)

// New creates an invoker for the configured mode.
func New(mode string, timeout time.Duration, logger *slog.Logger) (Invoker, error) {
	switch strings.ToLower(mode) {
	case "", ModeSimulated:
		logger.Info("using simulated agent invoker")
		return NewSimulated(), nil
	case ModeHTTP:
		logger.Info("using HTTP agent invoker", "timeout", timeout)
		return NewHTTP(timeout), nil
	default:
		return nil, fmt.Errorf("unknown invoke mode %q", mode)
	}
}

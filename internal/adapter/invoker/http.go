package invoker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// DefaultAPIKeyHeader is used when an api_key agent declares no header_name.
const DefaultAPIKeyHeader = "X-API-Key"

// SSEEvent represents a parsed SSE event.
type SSEEvent struct {
	Event string
	Data  string
}

// InvokeRequest is the body posted to an agent's api_endpoint.
type InvokeRequest struct {
	Input      domain.Document `json:"input"`
	Parameters domain.Document `json:"parameters,omitempty"`
}

// HTTP invokes agents by POSTing JSON to their api_endpoint. Plain JSON
// responses are returned as the result; text/event-stream responses are folded
// into a single result document.
type HTTP struct {
	httpClient *http.Client
}

var _ Invoker = (*HTTP)(nil)

// NewHTTP creates an HTTP invoker with the given per-call timeout.
func NewHTTP(timeout time.Duration) *HTTP {
	return &HTTP{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Invoke calls the agent's endpoint.
func (c *HTTP) Invoke(ctx context.Context, agent domain.Agent, req Request) (domain.Document, error) {
	if agent.APIEndpoint == "" {
		return nil, fmt.Errorf("agent %s has no api_endpoint", agent.ID)
	}

	body, err := json.Marshal(InvokeRequest{Input: req.Input, Parameters: req.Parameters})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, agent.APIEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	httpReq.Header.Set("X-Agent-ID", agent.ID)
	setAuthHeaders(httpReq, agent, req.Credentials)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/event-stream" {
		return collectSSE(resp.Body)
	}

	var result domain.Document
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if err == io.EOF {
			return domain.Document{}, nil
		}
		return nil, fmt.Errorf("failed to decode agent response: %w", err)
	}
	return result, nil
}

// setAuthHeaders forwards caller credentials according to the agent's auth_type.
func setAuthHeaders(r *http.Request, agent domain.Agent, creds domain.Document) {
	switch agent.AuthType {
	case domain.AuthTypeAPIKey:
		key, _ := creds["api_key"].(string)
		if key == "" {
			return
		}
		header, _ := agent.AuthDetails["header_name"].(string)
		if header == "" {
			header = DefaultAPIKeyHeader
		}
		r.Header.Set(header, key)
	case domain.AuthTypeOAuth:
		if token, _ := creds["access_token"].(string); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// collectSSE folds delta events into output, takes the done event's payload,
// and turns an error event into an error.
func collectSSE(r io.Reader) (domain.Document, error) {
	var output strings.Builder
	var done domain.Document
	err := parseSSE(r, func(event SSEEvent) error {
		switch event.Event {
		case "delta":
			var delta struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal([]byte(event.Data), &delta); err != nil {
				return fmt.Errorf("failed to parse delta event: %w", err)
			}
			output.WriteString(delta.Text)
		case "done":
			if event.Data != "" {
				if err := json.Unmarshal([]byte(event.Data), &done); err != nil {
					return fmt.Errorf("failed to parse done event: %w", err)
				}
			}
		case "error":
			var e struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal([]byte(event.Data), &e); err != nil {
				return fmt.Errorf("failed to parse error event: %w", err)
			}
			return fmt.Errorf("agent error %s: %s", e.Code, e.Message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := domain.Document{}
	for k, v := range done {
		result[k] = v
	}
	if output.Len() > 0 {
		result["output"] = output.String()
	}
	return result, nil
}

// parseSSE parses an SSE stream and calls the handler for each event.
func parseSSE(reader io.Reader, handler func(SSEEvent) error) error {
	scanner := bufio.NewScanner(reader)
	var event SSEEvent

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line marks end of event
		if line == "" {
			if event.Event != "" || event.Data != "" {
				if err := handler(event); err != nil {
					return err
				}
				event = SSEEvent{}
			}
			continue
		}

		if strings.HasPrefix(line, "event:") {
			event.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		} else if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if event.Data != "" {
				event.Data += "\n" + data
			} else {
				event.Data = data
			}
		}
		// Ignore comments (lines starting with :) and other fields
	}

	if event.Event != "" || event.Data != "" {
		if err := handler(event); err != nil {
			return err
		}
	}

	return scanner.Err()
}

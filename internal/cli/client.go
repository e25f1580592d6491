package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

const defaultServer = "http://localhost:9091"

// clientOptions are the connection settings shared by every client command.
// Values come from flags the user set, then MARKETPLACE_* environment
// variables, then defaults.
type clientOptions struct {
	v *viper.Viper
}

func newClientOptions() *clientOptions {
	v := viper.New()
	v.SetEnvPrefix("marketplace")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("server", defaultServer)
	v.SetDefault("api_key", "")
	v.SetDefault("timeout", 30*time.Second)
	return &clientOptions{v: v}
}

func (o *clientOptions) client(cmd *cobra.Command) (*apiClient, error) {
	for flag, key := range map[string]string{
		"server":  "server",
		"api-key": "api_key",
		"timeout": "timeout",
	} {
		f := cmd.Flag(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := o.v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	server := strings.TrimSpace(o.v.GetString("server"))
	if server == "" {
		server = defaultServer
	}
	return &apiClient{
		baseURL:    strings.TrimSuffix(server, "/"),
		apiKey:     o.v.GetString("api_key"),
		httpClient: &http.Client{Timeout: o.v.GetDuration("timeout")},
	}, nil
}

// apiClient talks to the marketplace HTTP API.
type apiClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// apiError is a non-2xx response.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var parsed struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != "" {
			msg = parsed.Error
		}
		return &apiError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) RegisterAgent(ctx context.Context, spec domain.AgentSpec) (*domain.RegisterAgentResponse, error) {
	var resp domain.RegisterAgentResponse
	if err := c.do(ctx, http.MethodPost, "/agents", spec, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) ListAgents(ctx context.Context, filter domain.AgentFilter) (*domain.ListAgentsResponse, error) {
	q := url.Values{}
	for _, v := range filter.Capabilities {
		q.Add("capabilities", v)
	}
	for _, v := range filter.Tags {
		q.Add("tags", v)
	}
	if filter.Author != "" {
		q.Set("author", filter.Author)
	}
	if filter.PricingModel != "" {
		q.Set("pricing_model", filter.PricingModel)
	}
	if filter.Query != "" {
		q.Set("query", filter.Query)
	}

	path := "/agents"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp domain.ListAgentsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	var agent domain.Agent
	if err := c.do(ctx, http.MethodGet, "/agents/"+url.PathEscape(agentID), nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (c *apiClient) UpdateAgent(ctx context.Context, agentID string, spec domain.AgentSpec) (*domain.AgentMessageResponse, error) {
	var resp domain.AgentMessageResponse
	if err := c.do(ctx, http.MethodPut, "/agents/"+url.PathEscape(agentID), spec, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) DeleteAgent(ctx context.Context, agentID string) (*domain.AgentMessageResponse, error) {
	var resp domain.AgentMessageResponse
	if err := c.do(ctx, http.MethodDelete, "/agents/"+url.PathEscape(agentID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) ExecuteAgent(ctx context.Context, agentID string, req domain.ExecuteRequest) (*domain.ExecutionRecord, error) {
	var record domain.ExecutionRecord
	if err := c.do(ctx, http.MethodPost, "/agents/"+url.PathEscape(agentID)+"/execute", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *apiClient) ListExecutions(ctx context.Context, agentID string) (*domain.ListExecutionsResponse, error) {
	var resp domain.ListExecutionsResponse
	if err := c.do(ctx, http.MethodGet, "/agents/"+url.PathEscape(agentID)+"/executions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) GetExecution(ctx context.Context, agentID, executionID string) (*domain.ExecutionRecord, error) {
	var record domain.ExecutionRecord
	path := "/agents/" + url.PathEscape(agentID) + "/executions/" + url.PathEscape(executionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *apiClient) Manifest(ctx context.Context) (*domain.Manifest, error) {
	var m domain.Manifest
	if err := c.do(ctx, http.MethodGet, "/manifest", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

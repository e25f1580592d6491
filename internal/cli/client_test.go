package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/marketplace/internal/auth"
	"github.com/xiaot623/gogo/marketplace/internal/domain"
	"github.com/xiaot623/gogo/marketplace/internal/metrics"
	server "github.com/xiaot623/gogo/marketplace/internal/transport/http"
	"github.com/xiaot623/gogo/marketplace/tests/helpers"
)

const descriptor = `{
	"name": "Text Summarizer",
	"description": "Summarizes long text",
	"version": "1.0.0",
	"author": "acme",
	"api_endpoint": "https://agents.example.com/summarize",
	"capabilities": [{"name": "summarize_text"}],
	"tags": ["nlp"]
}`

func newTestMarketplace(t *testing.T) string {
	t.Helper()

	svc := helpers.NewTestService(t, nil)
	resolver := auth.NewResolver(auth.DefaultCredentials())
	srv := httptest.NewServer(server.NewServer(svc, resolver, metrics.New(), helpers.DiscardLogger()))
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand(func(*cobra.Command, []string) error { return nil }, VersionInfo{Version: "test"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAgentsLifecycle(t *testing.T) {
	url := newTestMarketplace(t)
	file := writeDescriptor(t, descriptor)
	conn := []string{"--server", url, "--api-key", "test_key"}

	out, err := runCLI(t, append([]string{"agents", "register", "-f", file}, conn...)...)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Agent registered with ID: "), out)
	agentID := strings.TrimSpace(strings.TrimPrefix(out, "Agent registered with ID: "))

	out, err = runCLI(t, append([]string{"agents", "list", "--capability", "summarize_text"}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Agents found: 1")
	assert.Contains(t, out, "- Text Summarizer (ID: "+agentID+")")

	out, err = runCLI(t, append([]string{"agents", "list", "--tag", "vision"}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Agents found: 0")

	out, err = runCLI(t, append([]string{"agents", "get", agentID}, conn...)...)
	require.NoError(t, err)
	var agent domain.Agent
	require.NoError(t, json.Unmarshal([]byte(out), &agent))
	assert.Equal(t, "test_user", agent.CreatedBy)

	out, err = runCLI(t, append([]string{"agents", "execute", agentID, "--input", `{"text":"hi"}`}, conn...)...)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Agent executed successfully!\n"), out)
	var record domain.ExecutionRecord
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(out, "Agent executed successfully!\n")), &record))
	assert.Equal(t, domain.ExecutionStatusCompleted, record.Status)

	out, err = runCLI(t, append([]string{"executions", "list", agentID}, conn...)...)
	require.NoError(t, err)
	var list domain.ListExecutionsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, 1, list.Count)

	out, err = runCLI(t, append([]string{"executions", "get", agentID, record.ID}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, record.ID)

	out, err = runCLI(t, append([]string{"agents", "delete", agentID}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted successfully")

	_, err = runCLI(t, append([]string{"agents", "get", agentID}, conn...)...)
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestAgentsUpdate(t *testing.T) {
	url := newTestMarketplace(t)
	file := writeDescriptor(t, descriptor)

	out, err := runCLI(t, "agents", "register", "-f", file, "--server", url)
	require.NoError(t, err)
	agentID := strings.TrimSpace(strings.TrimPrefix(out, "Agent registered with ID: "))

	// Unknown keys are rejected before any authorization check.
	_, err = runCLI(t, "agents", "update", agentID, "-f", file, "--server", url, "--api-key", "unknown")
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	out, err = runCLI(t, "agents", "update", agentID, "-f", file, "--server", url, "--api-key", "test_key")
	require.NoError(t, err)
	assert.Contains(t, out, "updated successfully")
}

func TestExecuteRejectsBadInput(t *testing.T) {
	_, err := runCLI(t, "agents", "execute", "abc", "--input", "not-json", "--server", "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--input must be a JSON object")
}

func TestManifestCommand(t *testing.T) {
	url := newTestMarketplace(t)

	out, err := runCLI(t, "manifest", "--server", url)
	require.NoError(t, err)

	var m domain.Manifest
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "v1", m.SchemaVersion)
}

func TestClientSettingsFromEnvironment(t *testing.T) {
	url := newTestMarketplace(t)
	file := writeDescriptor(t, descriptor)
	t.Setenv("MARKETPLACE_SERVER", url)
	t.Setenv("MARKETPLACE_API_KEY", "test_key")

	out, err := runCLI(t, "agents", "register", "-f", file)
	require.NoError(t, err)
	agentID := strings.TrimSpace(strings.TrimPrefix(out, "Agent registered with ID: "))

	out, err = runCLI(t, "agents", "delete", agentID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted successfully")

	_, err = runCLI(t, "agents", "register", "-f", file, "--api-key", "unknown")
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestServerFlagOverridesEnvironment(t *testing.T) {
	url := newTestMarketplace(t)
	t.Setenv("MARKETPLACE_SERVER", "http://127.0.0.1:1")

	out, err := runCLI(t, "manifest", "--server", url)
	require.NoError(t, err)
	assert.Contains(t, out, `"schema_version"`)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    test")
}

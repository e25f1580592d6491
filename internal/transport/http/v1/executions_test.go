package v1

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/marketplace/internal/adapter/invoker"
	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

func TestExecuteAgent(t *testing.T) {
	e := newTestServer(t, nil)
	created := registerAgent(t, e, aliceKey, agentBody)
	path := "/agents/" + created.AgentID

	rec := do(t, e, http.MethodPost, path+"/execute", bobKey, `{"input_data":{"text":"hello"},"execution_parameters":{"max_points":3}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var record domain.ExecutionRecord
	decode(t, rec, &record)
	assert.Equal(t, created.AgentID, record.AgentID)
	assert.Equal(t, "bob", record.UserID)
	assert.Equal(t, domain.ExecutionStatusCompleted, record.Status)
	assert.Equal(t, record.CreatedAt, record.CompletedAt)
	assert.Equal(t, "Simulated response from agent 'Text Summarizer'", record.Result["message"])
	assert.Equal(t, domain.Document{"max_points": float64(3)}, record.Parameters)

	rec = do(t, e, http.MethodGet, path+"/executions/"+record.ID, bobKey, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.ExecutionRecord
	decode(t, rec, &got)
	assert.Equal(t, record, got)
}

func TestExecuteAgentErrors(t *testing.T) {
	e := newTestServer(t, nil)
	created := registerAgent(t, e, aliceKey, agentBody)
	path := "/agents/" + created.AgentID + "/execute"

	tests := []struct {
		name   string
		path   string
		apiKey string
		body   string
		want   int
	}{
		{"unknown agent", "/agents/missing/execute", bobKey, `{"input_data":{}}`, http.StatusNotFound},
		{"unknown agent before body validation", "/agents/missing/execute", bobKey, `{}`, http.StatusNotFound},
		{"unknown key", path, "bogus", `{"input_data":{}}`, http.StatusUnauthorized},
		{"missing input", path, bobKey, `{"execution_parameters":{}}`, http.StatusUnprocessableEntity},
		{"input not an object", path, bobKey, `{"input_data":"text"}`, http.StatusBadRequest},
		{"agent id mismatch", path, bobKey, `{"agent_id":"other","input_data":{}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, tt.path, tt.apiKey, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestExecuteAgentInvokerFailure(t *testing.T) {
	failing := invoker.Func(func(ctx context.Context, agent domain.Agent, req invoker.Request) (domain.Document, error) {
		return nil, errors.New("connection refused")
	})
	e := newTestServer(t, failing)
	created := registerAgent(t, e, aliceKey, agentBody)

	rec := do(t, e, http.MethodPost, "/agents/"+created.AgentID+"/execute", aliceKey, `{"input_data":{"q":1}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var record domain.ExecutionRecord
	decode(t, rec, &record)
	assert.Equal(t, domain.ExecutionStatusFailed, record.Status)
	assert.Equal(t, "connection refused", record.Error)
	assert.Nil(t, record.Result)
}

func TestExecutionVisibility(t *testing.T) {
	e := newTestServer(t, nil)
	created := registerAgent(t, e, aliceKey, agentBody)
	base := "/agents/" + created.AgentID

	var bobExec domain.ExecutionRecord
	for _, key := range []string{aliceKey, bobKey, aliceKey} {
		rec := do(t, e, http.MethodPost, base+"/execute", key, `{"input_data":{"n":1}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		if key == bobKey {
			decode(t, rec, &bobExec)
		}
	}

	count := func(key string) int {
		rec := do(t, e, http.MethodGet, base+"/executions", key, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp domain.ListExecutionsResponse
		decode(t, rec, &resp)
		assert.Len(t, resp.Executions, resp.Count)
		return resp.Count
	}
	assert.Equal(t, 3, count(adminKey))
	assert.Equal(t, 2, count(aliceKey))
	assert.Equal(t, 1, count(bobKey))
	assert.Equal(t, 0, count(""))

	rec := do(t, e, http.MethodGet, base+"/executions/"+bobExec.ID, aliceKey, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodGet, base+"/executions/missing", adminKey, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodGet, "/agents/never/executions", adminKey, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// History outlives the agent.
	rec = do(t, e, http.MethodDelete, base, adminKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, count(adminKey))

	rec = do(t, e, http.MethodGet, base+"/executions/"+bobExec.ID, bobKey, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodPost, base+"/execute", bobKey, `{"input_data":{}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

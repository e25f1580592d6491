package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/marketplace/internal/adapter/invoker"
	"github.com/xiaot623/gogo/marketplace/internal/auth"
	"github.com/xiaot623/gogo/marketplace/internal/domain"
	"github.com/xiaot623/gogo/marketplace/tests/helpers"
)

const (
	adminKey = "test_key"
	aliceKey = "alice_key"
	bobKey   = "bob_key"
)

func newTestServer(t *testing.T, inv invoker.Invoker) *echo.Echo {
	t.Helper()

	svc := helpers.NewTestService(t, inv)
	resolver := auth.NewResolver(auth.Credentials{
		adminKey: {UserID: "test_user", Role: domain.RoleAdmin},
		aliceKey: {UserID: "alice", Role: "user"},
		bobKey:   {UserID: "bob", Role: "user"},
	})

	e := echo.New()
	NewHandler(svc, resolver).RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestRoot(t *testing.T) {
	e := newTestServer(t, nil)

	rec := do(t, e, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"marketplace"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h := NewHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestManifest(t *testing.T) {
	e := newTestServer(t, nil)

	// Unknown keys are not checked on public routes.
	rec := do(t, e, http.MethodGet, "/manifest", "bogus", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var m domain.Manifest
	decode(t, rec, &m)
	assert.Equal(t, "v1", m.SchemaVersion)
	assert.Equal(t, "http://localhost:9091/openapi.json", m.API.URL)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() AgentSpec {
	return AgentSpec{
		Name:         "Text Summarizer",
		Description:  "Summarizes text",
		Version:      "1.0.0",
		Author:       "ExampleCorp",
		APIEndpoint:  "https://api.example.com/summarize",
		Capabilities: []Capability{{Name: "summarize_text", Description: "Summarize"}},
	}
}

func TestAgentSpecAuthTypes(t *testing.T) {
	for _, at := range []AuthType{AuthTypeNone, AuthTypeAPIKey, AuthTypeOAuth} {
		spec := validSpec()
		spec.AuthType = at
		assert.NoError(t, spec.Normalize().Validate(), at)
	}

	for _, at := range []AuthType{"basic", "API_KEY", "jwt"} {
		spec := validSpec()
		spec.AuthType = at
		err := spec.Normalize().Validate()
		require.ErrorIs(t, err, ErrValidation, at)
		assert.Contains(t, err.Error(), "auth_type must be one of: none, api_key, oauth")
	}
}

func TestAgentSpecNormalizeDefaults(t *testing.T) {
	spec := validSpec().Normalize()
	assert.Equal(t, AuthTypeNone, spec.AuthType)
	assert.NotNil(t, spec.Tags)
	assert.Empty(t, spec.Tags)
}

func TestAgentSpecRequiredFields(t *testing.T) {
	cases := map[string]func(*AgentSpec){
		"name is required":          func(s *AgentSpec) { s.Name = "" },
		"api_endpoint is required":  func(s *AgentSpec) { s.APIEndpoint = "" },
		"capabilities is required":  func(s *AgentSpec) { s.Capabilities = nil },
		"capabilities must contain": func(s *AgentSpec) { s.Capabilities = []Capability{} },
		"capabilities[0].name":      func(s *AgentSpec) { s.Capabilities[0].Name = "" },
		"contact_email must be":     func(s *AgentSpec) { s.ContactEmail = "not-an-email" },
		"duplicate capability name": func(s *AgentSpec) { s.Capabilities = append(s.Capabilities, s.Capabilities[0]) },
	}
	for want, mutate := range cases {
		spec := validSpec()
		mutate(&spec)
		err := spec.Normalize().Validate()
		require.ErrorIs(t, err, ErrValidation, want)
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateExecuteRequest(t *testing.T) {
	assert.ErrorIs(t, Validate(ExecuteRequest{}), ErrValidation)
	assert.NoError(t, Validate(ExecuteRequest{InputData: Document{}}))
}

func TestAgentCloneIsDeep(t *testing.T) {
	a := &Agent{ID: "a1", AgentSpec: validSpec()}
	a.Tags = []string{"nlp"}
	a.Capabilities[0].Parameters = Document{"nested": map[string]any{"k": "v"}}

	b := a.Clone()
	b.Tags[0] = "vision"
	b.Capabilities[0].Parameters["nested"].(map[string]any)["k"] = "changed"

	assert.Equal(t, "nlp", a.Tags[0])
	assert.Equal(t, "v", a.Capabilities[0].Parameters["nested"].(map[string]any)["k"])
}

func TestCloneKeepsEmptyTags(t *testing.T) {
	spec := validSpec().Normalize()
	require.NotNil(t, spec.Tags)

	clone := spec.Clone()
	assert.NotNil(t, clone.Tags)
	assert.Equal(t, []string{}, clone.Tags)

	a := &Agent{ID: "a1", AgentSpec: spec}
	assert.Equal(t, []string{}, a.Clone().Tags)
}

package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
	"github.com/xiaot623/gogo/marketplace/tests/helpers"
)

func TestListAgents_Filters(t *testing.T) {
	svc := helpers.NewTestService(t, nil)
	ctx := context.Background()

	summarizer := sampleSpec("Text Summarizer")
	summarizer.Tags = []string{"nlp", "text"}

	translator := sampleSpec("Translator")
	translator.Description = "Translates documents"
	translator.Author = "globex"
	translator.PricingModel = "per_call"
	translator.Capabilities = []domain.Capability{
		{Name: "translate", Description: "Translate text between LANGUAGES"},
	}
	translator.Tags = []string{"i18n"}

	imager := sampleSpec("Imager")
	imager.Description = "Generates pictures"
	imager.Capabilities = []domain.Capability{{Name: "render"}}
	imager.Tags = nil

	var ids []string
	for _, spec := range []domain.AgentSpec{summarizer, translator, imager} {
		agent, err := svc.RegisterAgent(ctx, spec, alice)
		require.NoError(t, err)
		ids = append(ids, agent.ID)
	}

	tests := []struct {
		name   string
		filter domain.AgentFilter
		want   []string
	}{
		{"no filter", domain.AgentFilter{}, ids},
		{"empty lists are unset", domain.AgentFilter{Capabilities: []string{}, Tags: []string{}}, ids},
		{"capability any-of", domain.AgentFilter{Capabilities: []string{"translate", "render"}}, ids[1:]},
		{"capability unknown", domain.AgentFilter{Capabilities: []string{"fly"}}, nil},
		{"tag any-of", domain.AgentFilter{Tags: []string{"text", "i18n"}}, ids[:2]},
		{"author exact", domain.AgentFilter{Author: "globex"}, ids[1:2]},
		{"author case-sensitive", domain.AgentFilter{Author: "Globex"}, nil},
		{"pricing model", domain.AgentFilter{PricingModel: "free"}, []string{ids[0], ids[2]}},
		{"query on name", domain.AgentFilter{Query: "summar"}, ids[:1]},
		{"query case-insensitive", domain.AgentFilter{Query: "PICTURES"}, ids[2:]},
		{"query on capability description", domain.AgentFilter{Query: "languages"}, ids[1:2]},
		{"query on capability name", domain.AgentFilter{Query: "render"}, ids[2:]},
		{"criteria are ANDed", domain.AgentFilter{Author: "acme", Tags: []string{"i18n"}}, nil},
		{"combined match", domain.AgentFilter{Author: "acme", Capabilities: []string{"summarize_text"}, Query: "text"}, ids[:1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agents, err := svc.ListAgents(ctx, tt.filter, alice)
			require.NoError(t, err)

			got := make([]string, 0, len(agents))
			for _, a := range agents {
				got = append(got, a.ID)
			}
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListAgents_SameForEveryPrincipal(t *testing.T) {
	svc := helpers.NewTestService(t, nil)
	ctx := context.Background()

	_, err := svc.RegisterAgent(ctx, sampleSpec("a"), alice)
	require.NoError(t, err)
	_, err = svc.RegisterAgent(ctx, sampleSpec("b"), bob)
	require.NoError(t, err)

	for _, p := range []domain.Principal{alice, bob, admin, domain.Guest()} {
		agents, err := svc.ListAgents(ctx, domain.AgentFilter{}, p)
		require.NoError(t, err)
		assert.Len(t, agents, 2)
	}
}

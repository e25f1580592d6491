package service

import (
	"strings"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// matcher evaluates one AgentFilter. Each set criterion must hold; list
// criteria hold when any element matches.
type matcher struct {
	capabilities map[string]struct{}
	tags         map[string]struct{}
	author       string
	pricingModel string
	query        string
}

func newMatcher(f domain.AgentFilter) *matcher {
	return &matcher{
		capabilities: toSet(f.Capabilities),
		tags:         toSet(f.Tags),
		author:       f.Author,
		pricingModel: f.PricingModel,
		query:        strings.ToLower(f.Query),
	}
}

func (m *matcher) matches(a *domain.Agent) bool {
	if m.capabilities != nil && !m.anyCapability(a) {
		return false
	}
	if m.tags != nil && !anyIn(a.Tags, m.tags) {
		return false
	}
	if m.author != "" && a.Author != m.author {
		return false
	}
	if m.pricingModel != "" && a.PricingModel != m.pricingModel {
		return false
	}
	if m.query != "" && !m.matchesQuery(a) {
		return false
	}
	return true
}

func (m *matcher) anyCapability(a *domain.Agent) bool {
	for _, c := range a.Capabilities {
		if _, ok := m.capabilities[c.Name]; ok {
			return true
		}
	}
	return false
}

func (m *matcher) matchesQuery(a *domain.Agent) bool {
	if m.contains(a.Name) || m.contains(a.Description) {
		return true
	}
	for _, c := range a.Capabilities {
		if m.contains(c.Name) || m.contains(c.Description) {
			return true
		}
	}
	return false
}

func (m *matcher) contains(field string) bool {
	return strings.Contains(strings.ToLower(field), m.query)
}

// toSet returns nil for an empty list so that an empty criterion is unset.
func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func anyIn(values []string, set map[string]struct{}) bool {
	for _, v := range values {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

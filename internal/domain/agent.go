package domain

import "time"

// Document is an opaque structured payload. The marketplace passes documents
// through without interpreting them.
type Document map[string]any

// Capability is one named operation an agent exposes.
type Capability struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Parameters  Document `json:"parameters,omitempty"`
}

// AgentSpec is the caller-supplied part of an agent descriptor, used for both
// registration and full-overwrite updates.
type AgentSpec struct {
	Name           string       `json:"name" validate:"required"`
	Description    string       `json:"description"`
	Version        string       `json:"version" validate:"required"`
	Author         string       `json:"author" validate:"required"`
	ContactEmail   string       `json:"contact_email,omitempty" validate:"omitempty,email"`
	HomepageURL    string       `json:"homepage_url,omitempty"`
	APIEndpoint    string       `json:"api_endpoint" validate:"required"`
	Capabilities   []Capability `json:"capabilities" validate:"required,min=1,dive"`
	AuthType       AuthType     `json:"auth_type" validate:"oneof=none api_key oauth"`
	AuthDetails    Document     `json:"auth_details,omitempty"`
	PricingModel   string       `json:"pricing_model,omitempty"`
	PricingDetails Document     `json:"pricing_details,omitempty"`
	Tags           []string     `json:"tags"`
}

// Agent is a registered, externally invocable capability descriptor.
type Agent struct {
	ID string `json:"id"`
	AgentSpec
	Status    AgentStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	CreatedBy string      `json:"created_by"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

// Clone returns a deep copy of the agent so callers never share slices or
// documents with the registry.
func (a *Agent) Clone() *Agent {
	if a == nil {
		return nil
	}
	out := *a
	out.AgentSpec = a.AgentSpec.Clone()
	if a.UpdatedAt != nil {
		t := *a.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}

// Clone returns a deep copy of the descriptor fields.
func (s AgentSpec) Clone() AgentSpec {
	out := s
	out.AuthDetails = s.AuthDetails.Clone()
	out.PricingDetails = s.PricingDetails.Clone()
	if s.Capabilities != nil {
		out.Capabilities = make([]Capability, len(s.Capabilities))
		for i, c := range s.Capabilities {
			c.Parameters = c.Parameters.Clone()
			out.Capabilities[i] = c
		}
	}
	if s.Tags != nil {
		out.Tags = make([]string, len(s.Tags))
		copy(out.Tags, s.Tags)
	}
	return out
}

// Clone returns a deep copy of the document. Nested maps and slices are copied;
// scalar leaves are shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

package domain

// AgentFilter holds the search criteria for listing agents. Unset criteria
// impose no constraint; set criteria are ANDed.
type AgentFilter struct {
	Capabilities []string `json:"capabilities,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Author       string   `json:"author,omitempty"`
	PricingModel string   `json:"pricing_model,omitempty"`
	Query        string   `json:"query,omitempty"`
}

// ExecuteRequest is the request to invoke an agent.
type ExecuteRequest struct {
	AgentID             string   `json:"agent_id,omitempty"`
	InputData           Document `json:"input_data" validate:"required"`
	ExecutionParameters Document `json:"execution_parameters,omitempty"`
	AuthCredentials     Document `json:"auth_credentials,omitempty"`
}

// RegisterAgentResponse is returned after a successful registration.
type RegisterAgentResponse struct {
	AgentID string `json:"agent_id"`
	Status  string `json:"status"`
	Agent   *Agent `json:"agent"`
}

// AgentMessageResponse carries a confirmation message with the affected agent.
type AgentMessageResponse struct {
	Message string `json:"message"`
	Agent   *Agent `json:"agent"`
}

// ListAgentsResponse is the response for listing agents.
type ListAgentsResponse struct {
	Agents []Agent `json:"agents"`
	Count  int     `json:"count"`
}

// ListExecutionsResponse is the response for listing executions.
type ListExecutionsResponse struct {
	Executions []ExecutionRecord `json:"executions"`
	Count      int               `json:"count"`
}

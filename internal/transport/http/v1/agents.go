package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// RegisterAgent registers a new agent owned by the caller.
// POST /agents
func (h *Handler) RegisterAgent(c echo.Context) error {
	ctx := c.Request().Context()

	var spec domain.AgentSpec
	if err := c.Bind(&spec); err != nil {
		return badRequest(c)
	}

	agent, err := h.service.RegisterAgent(ctx, spec, principalFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, domain.RegisterAgentResponse{
		AgentID: agent.ID,
		Status:  "registered",
		Agent:   agent,
	})
}

// ListAgents lists agents matching the query filters.
// GET /agents?capabilities=a,b&tags=x&author=&pricing_model=&query=
func (h *Handler) ListAgents(c echo.Context) error {
	ctx := c.Request().Context()

	filter := domain.AgentFilter{
		Capabilities: multiValue(c, "capabilities"),
		Tags:         multiValue(c, "tags"),
		Author:       c.QueryParam("author"),
		PricingModel: c.QueryParam("pricing_model"),
		Query:        c.QueryParam("query"),
	}

	agents, err := h.service.ListAgents(ctx, filter, principalFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, domain.ListAgentsResponse{
		Agents: agents,
		Count:  len(agents),
	})
}

// GetAgent gets a specific agent by ID.
// GET /agents/:agent_id
func (h *Handler) GetAgent(c echo.Context) error {
	ctx := c.Request().Context()

	agent, err := h.service.GetAgent(ctx, c.Param("agent_id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, agent)
}

// UpdateAgent overwrites an agent's descriptor.
// PUT /agents/:agent_id
func (h *Handler) UpdateAgent(c echo.Context) error {
	ctx := c.Request().Context()
	agentID := c.Param("agent_id")

	var spec domain.AgentSpec
	if err := c.Bind(&spec); err != nil {
		return badRequest(c)
	}

	agent, err := h.service.UpdateAgent(ctx, agentID, spec, principalFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, domain.AgentMessageResponse{
		Message: fmt.Sprintf("Agent '%s' updated successfully", agent.Name),
		Agent:   agent,
	})
}

// DeleteAgent removes an agent.
// DELETE /agents/:agent_id
func (h *Handler) DeleteAgent(c echo.Context) error {
	ctx := c.Request().Context()
	agentID := c.Param("agent_id")

	agent, err := h.service.DeleteAgent(ctx, agentID, principalFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, domain.AgentMessageResponse{
		Message: fmt.Sprintf("Agent '%s' (ID: %s) deleted successfully", agent.Name, agent.ID),
		Agent:   agent,
	})
}

// multiValue accepts both repeated (?tags=a&tags=b) and comma separated
// (?tags=a,b) forms.
func multiValue(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

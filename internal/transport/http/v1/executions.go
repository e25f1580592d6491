package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// ExecuteAgent invokes an agent and returns the recorded execution.
// POST /agents/:agent_id/execute
func (h *Handler) ExecuteAgent(c echo.Context) error {
	ctx := c.Request().Context()
	agentID := c.Param("agent_id")

	var req domain.ExecuteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	record, err := h.service.SubmitExecution(ctx, agentID, req, principalFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, record)
}

// ListExecutions lists the executions of an agent visible to the caller.
// GET /agents/:agent_id/executions
func (h *Handler) ListExecutions(c echo.Context) error {
	ctx := c.Request().Context()

	records, err := h.service.ListExecutions(ctx, c.Param("agent_id"), principalFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, domain.ListExecutionsResponse{
		Executions: records,
		Count:      len(records),
	})
}

// GetExecution returns one execution record.
// GET /agents/:agent_id/executions/:execution_id
func (h *Handler) GetExecution(c echo.Context) error {
	ctx := c.Request().Context()

	record, err := h.service.GetExecution(ctx, c.Param("agent_id"), c.Param("execution_id"), principalFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, record)
}

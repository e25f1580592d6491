// Package v1 provides the HTTP handlers of the marketplace API.
package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/marketplace/internal/auth"
	"github.com/xiaot623/gogo/marketplace/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service  *service.Service
	resolver *auth.Resolver
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, resolver *auth.Resolver) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
	}
}

// RegisterRoutes registers the marketplace routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/manifest", h.GetManifest)

	// Descriptors are public; everything else runs as the resolved principal.
	e.GET("/agents/:agent_id", h.GetAgent)

	g := e.Group("/agents", h.ResolvePrincipal)
	g.POST("", h.RegisterAgent)
	g.GET("", h.ListAgents)
	g.PUT("/:agent_id", h.UpdateAgent)
	g.DELETE("/:agent_id", h.DeleteAgent)
	g.POST("/:agent_id/execute", h.ExecuteAgent)
	g.GET("/:agent_id/executions", h.ListExecutions)
	g.GET("/:agent_id/executions/:execution_id", h.GetExecution)
}

// Root identifies the service.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "marketplace"})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetManifest returns the marketplace manifest.
// GET /manifest
func (h *Handler) GetManifest(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.GetManifest())
}

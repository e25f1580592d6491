package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

var errorKinds = []struct {
	kind   error
	status int
}{
	{domain.ErrValidation, http.StatusUnprocessableEntity},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
}

// writeError maps an error kind to its status code and writes {"error": msg}.
// Unclassified errors are 500.
func writeError(c echo.Context, err error) error {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			msg := strings.TrimPrefix(err.Error(), k.kind.Error()+": ")
			return c.JSON(k.status, map[string]string{"error": msg})
		}
	}
	slog.ErrorContext(c.Request().Context(), "request failed", "uri", c.Request().RequestURI, "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
}

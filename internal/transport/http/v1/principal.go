package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// APIKeyHeader carries the caller's credential token.
const APIKeyHeader = "X-API-Key"

const principalKey = "principal"

// ResolvePrincipal resolves the X-API-Key header into a principal and stores it
// on the context. A missing key yields the guest principal; an unknown key is
// rejected with 401.
func (h *Handler) ResolvePrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		principal, err := h.resolver.Resolve(c.Request().Header.Get(APIKeyHeader))
		if err != nil {
			return writeError(c, err)
		}
		c.Set(principalKey, principal)
		return next(c)
	}
}

// principalFrom returns the principal stored by ResolvePrincipal, or the guest
// principal when none was stored.
func principalFrom(c echo.Context) domain.Principal {
	if p, ok := c.Get(principalKey).(domain.Principal); ok {
		return p
	}
	return domain.Guest()
}

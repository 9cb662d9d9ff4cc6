package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/isys3001/todo-backend/internal/models"
	"github.com/isys3001/todo-backend/internal/service"
)

const principalKey = "principal"

type BearerAuth struct {
	Auth *service.AuthService
}

func NewBearerAuth(auth *service.AuthService) *BearerAuth {
	return &BearerAuth{Auth: auth}
}

// RequireAuth resolves the principal from the Authorization header once at
// the request boundary; handlers pass it to the services explicitly.
func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		principal, err := m.Auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(principalKey, principal)
		return next(c)
	}
}

func PrincipalFrom(c echo.Context) (*models.User, bool) {
	principal, ok := c.Get(principalKey).(*models.User)
	return principal, ok
}

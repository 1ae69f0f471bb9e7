package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/luminahq/lumina/internal/webserver/weberror"
)

// OwnerKey is the context key carrying the authenticated owner identifier.
const OwnerKey = "owner_id"

// Authenticate checks the shared service token and extracts the opaque
// owner identity forwarded by the identity provider. The identity is
// untrusted-but-authenticated: it scopes views, nothing more. Requests
// without an owner are rejected rather than falling through to an
// unscoped view.
func Authenticate(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			if c.Request().Header.Get("X-Auth-Token") != token {
				return weberror.New(http.StatusUnauthorized, "authorization failed")
			}

			owner := c.Request().Header.Get("X-Owner-ID")
			if owner == "" {
				return weberror.New(http.StatusUnauthorized, "owner identity required")
			}
			c.Set(OwnerKey, owner)

			return next(c)
		}
	}
}

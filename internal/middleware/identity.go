package middleware

// identity.go stores and retrieves the authenticated caller on the Echo
// context. JWTAuth writes it; handlers and the rate limiter read it.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contact-book/internal/authz"
)

const identityKey = "identity"

// SetIdentity attaches id to the request context.
func SetIdentity(c echo.Context, id authz.Identity) { c.Set(identityKey, id) }

// IdentityFrom returns the caller stored by JWTAuth.
func IdentityFrom(c echo.Context) (authz.Identity, bool) {
	id, ok := c.Get(identityKey).(authz.Identity)
	return id, ok && id.UserID != ""
}

// userID returns the caller's id, or "anon" before authentication.
func userID(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok {
		return id.UserID
	}
	return "anon"
}

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/model"
)

// RequireRole lets the request through only when the identity stored by
// JWTAuth carries one of roles. It must be mounted after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return errs.Auth(errs.MsgUnauthorized)
			}
			if !allowed[id.Role] {
				return errs.Forbidden(errs.MsgNoPermission)
			}
			return next(c)
		}
	}
}

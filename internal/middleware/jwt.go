package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contact-book/internal/authz"
	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/utils"
)

// JWTAuth validates the Bearer access token and stores the caller's
// authz.Identity on the context. A missing, malformed or expired token
// stops the request with a 401 before the handler runs.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return errs.Auth(errs.MsgUnauthorized)
			}

			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return errs.Auth(errs.MsgUnauthorized)
			}

			SetIdentity(c, authz.Identity{
				UserID: claims.Subject,
				Email:  claims.Email,
				Role:   model.Role(claims.Role),
			})
			return next(c)
		}
	}
}

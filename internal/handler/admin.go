package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/response"
	"github.com/iliyamo/contact-book/internal/service"
)

// AdminHandler serves /admin; the router guards it with RequireRole(admin).
type AdminHandler struct {
	svc *service.AdminService
}

// NewAdminHandler constructs an AdminHandler around the admin service.
func NewAdminHandler(svc *service.AdminService) *AdminHandler { return &AdminHandler{svc: svc} }

type roleReq struct {
	Role model.Role `json:"role"`
}

// Stats returns the user and contact totals.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.svc.Stats(ctx)
	if err != nil {
		return err
	}
	return response.OK(c, st)
}

// ListUsers pages through accounts, optionally filtered by email.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, err := positiveQuery(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := positiveQuery(c, "limit", 10)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.svc.ListUsers(ctx, page, limit, c.QueryParam("search"))
	if err != nil {
		return err
	}
	return response.OK(c, users)
}

// GetUser returns an account together with its contacts.
func (h *AdminHandler) GetUser(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.svc.GetUser(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, u)
}

// UpdateUserRole sets the role named in the body.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}
	var req roleReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.svc.UpdateUserRole(ctx, actor, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return response.OK(c, u)
}

// DeleteUser removes an account and everything it owns.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.DeleteUser(ctx, actor, c.Param("id")); err != nil {
		return err
	}
	return response.NoContent(c)
}

// ListContacts pages through every contact with its owner.
func (h *AdminHandler) ListContacts(c echo.Context) error {
	p, err := listParams(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.svc.ListContacts(ctx, p)
	if err != nil {
		return err
	}
	return response.OK(c, page)
}

// GetContact returns any contact with its owner.
func (h *AdminHandler) GetContact(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	contact, err := h.svc.GetContact(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, contact)
}

// DeleteContact removes any contact and its photo.
func (h *AdminHandler) DeleteContact(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.DeleteContact(ctx, actor, c.Param("id")); err != nil {
		return err
	}
	return response.NoContent(c)
}

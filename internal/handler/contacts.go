package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contact-book/internal/response"
	"github.com/iliyamo/contact-book/internal/service"
)

// ContactHandler serves /contacts for any authenticated caller.
type ContactHandler struct {
	svc *service.ContactService
}

// NewContactHandler constructs a ContactHandler around the contact service.
func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

// List returns one page of the caller's contacts (every contact for admins).
func (h *ContactHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	p, err := listParams(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.svc.List(ctx, id, p)
	if err != nil {
		return err
	}
	return response.OK(c, page)
}

// Create accepts JSON or multipart with an optional "photo" file.
func (h *ContactHandler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var in service.ContactInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	photo, done, err := uploadedPhoto(c)
	if err != nil {
		return err
	}
	defer done()
	ctx, cancel := requestContext(c)
	defer cancel()

	contact, err := h.svc.Create(ctx, id, in, photo)
	if err != nil {
		return err
	}
	return response.Created(c, contact, "Contact created successfully")
}

// Get returns a single contact the caller may read.
func (h *ContactHandler) Get(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	contact, err := h.svc.Get(ctx, id, c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, contact)
}

// Update applies a partial update, optionally replacing the photo.
func (h *ContactHandler) Update(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var in service.ContactInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	photo, done, err := uploadedPhoto(c)
	if err != nil {
		return err
	}
	defer done()
	ctx, cancel := requestContext(c)
	defer cancel()

	contact, err := h.svc.Update(ctx, id, c.Param("id"), in, photo)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, contact, "Contact updated successfully")
}

// Delete removes a contact and its photo and answers 204.
func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Remove(ctx, id, c.Param("id")); err != nil {
		return err
	}
	return response.NoContent(c)
}

// Export downloads every visible contact as CSV.
func (h *ContactHandler) Export(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := h.svc.ExportCSV(ctx, id)
	if err != nil {
		return err
	}
	filename := "contacts-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", body)
}

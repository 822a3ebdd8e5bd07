package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contact-book/internal/authz"
	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/middleware"
	"github.com/iliyamo/contact-book/internal/service"
)

// repoTimeout bounds the storage work done for one request.
const repoTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), repoTimeout)
}

// caller returns the identity stored by JWTAuth.
func caller(c echo.Context) (authz.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return authz.Identity{}, errs.Auth(errs.MsgUnauthorized)
	}
	return id, nil
}

// positiveQuery reads an optional positive integer query parameter.
func positiveQuery(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errs.Validation(name + " must be a positive integer")
	}
	return n, nil
}

func listParams(c echo.Context) (service.ListParams, error) {
	p := service.DefaultListParams()
	var err error
	if p.Page, err = positiveQuery(c, "page", p.Page); err != nil {
		return p, err
	}
	if p.Limit, err = positiveQuery(c, "limit", p.Limit); err != nil {
		return p, err
	}
	p.Search = c.QueryParam("search")
	if v := c.QueryParam("sortBy"); v != "" {
		p.SortBy = v
	}
	if v := c.QueryParam("sortOrder"); v != "" {
		p.SortOrder = v
	}
	return p, nil
}

// uploadedPhoto returns the optional "photo" part of a multipart request.
// The returned close func must be called once the service is done with the
// body.
func uploadedPhoto(c echo.Context) (*service.Photo, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, noop, nil
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, errs.Validation("Invalid photo upload")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, errs.Internal(err)
	}
	return &service.Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func bindBody(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errs.Validation("Invalid request body")
	}
	return nil
}

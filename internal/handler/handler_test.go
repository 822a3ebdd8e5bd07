package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/repository"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestHealth(t *testing.T) {
	c, rec := newContext("/healthz")
	require.NoError(t, Health(nil)(c))
	assert.Equal(t, "ok", rec.Body.String())

	c, _ = newContext("/healthz")
	err := Health(pinger{err: errors.New("gone")})(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
}

func TestListParams(t *testing.T) {
	c, _ := newContext("/contacts?page=2&limit=25&search=ann&sortBy=name&sortOrder=ASC")
	p, err := listParams(c)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, "ann", p.Search)
	assert.Equal(t, "name", p.SortBy)
	assert.Equal(t, "ASC", p.SortOrder)

	c, _ = newContext("/contacts")
	p, err = listParams(c)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, repository.SortByCreatedAt, p.SortBy)

	c, _ = newContext("/contacts?limit=ten")
	_, err = listParams(c)
	assert.Equal(t, http.StatusBadRequest, errs.StatusOf(err))
}

func TestCaller_MissingIdentity(t *testing.T) {
	c, _ := newContext("/contacts")
	_, err := caller(c)
	assert.Equal(t, http.StatusUnauthorized, errs.StatusOf(err))
}

func TestUploadedPhoto_NotMultipart(t *testing.T) {
	c, _ := newContext("/contacts")
	photo, done, err := uploadedPhoto(c)
	defer done()
	require.NoError(t, err)
	assert.Nil(t, photo)
}

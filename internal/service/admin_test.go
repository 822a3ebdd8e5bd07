package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/queue"
)

func TestAdmin_DeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin := e.registerAdmin(t, "root@example.com")
	victim := e.register(t, "victim@example.com")
	keep := e.register(t, "keep@example.com")

	withPhoto, err := e.contact.Create(ctx, victim, ContactInput{Name: "P", Email: "p@x.io", Phone: "1"}, pngPhoto("p.png", "img"))
	require.NoError(t, err)
	plain := mustCreate(t, e, victim, "Plain")
	kept := mustCreate(t, e, keep, "Kept")

	require.NoError(t, e.admin.DeleteUser(ctx, admin, victim.UserID))

	for _, id := range []string{withPhoto.ID, plain.ID} {
		_, err := e.admin.GetContact(ctx, id)
		assert.True(t, errs.Is(err, errs.CodeNotFound), id)
	}
	assert.False(t, e.photos.has(withPhoto.Photo))

	page, err := e.admin.ListContacts(ctx, DefaultListParams())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, kept.ID, page.Items[0].ID)

	_, err = e.admin.GetUser(ctx, victim.UserID)
	assert.True(t, errs.Is(err, errs.CodeNotFound))
	assert.True(t, errs.Is(e.admin.DeleteUser(ctx, admin, victim.UserID), errs.CodeNotFound))
	assert.Contains(t, e.events.types(), queue.UserDeleted)
}

func TestAdmin_ListUsersHidesHashAndSearches(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice@example.com")
	e.register(t, "bob@example.com")

	page, err := e.admin.ListUsers(ctx, 1, 10, "ALI")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice@example.com", page.Items[0].Email)

	_, err = e.admin.ListUsers(ctx, 0, 10, "")
	assert.True(t, errs.Is(err, errs.CodeValidation))
}

func TestAdmin_GetUserIncludesContacts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "alice@example.com")
	lonely := e.register(t, "lonely@example.com")
	mustCreate(t, e, u, "Ann")

	d, err := e.admin.GetUser(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", d.Email)
	assert.Len(t, d.Contacts, 1)

	d, err = e.admin.GetUser(ctx, lonely.UserID)
	require.NoError(t, err)
	assert.NotNil(t, d.Contacts)
	assert.Empty(t, d.Contacts)
}

func TestAdmin_UpdateUserRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin := e.registerAdmin(t, "root@example.com")
	u := e.register(t, "alice@example.com")

	got, err := e.admin.UpdateUserRole(ctx, admin, u.UserID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	_, err = e.admin.UpdateUserRole(ctx, admin, u.UserID, "superuser")
	assert.True(t, errs.Is(err, errs.CodeValidation))

	_, err = e.admin.UpdateUserRole(ctx, admin, "ghost", model.RoleUser)
	require.True(t, errs.Is(err, errs.CodeNotFound))
	rich, _ := errs.As(err)
	assert.Equal(t, errs.MsgUserNotFound, rich.Message)
}

func TestAdmin_ContactAnnotationAndDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin := e.registerAdmin(t, "root@example.com")
	u := e.register(t, "jane.doe@example.com")
	c, err := e.contact.Create(ctx, u, ContactInput{Name: "A", Email: "a@x.io", Phone: "1"}, pngPhoto("a.png", "img"))
	require.NoError(t, err)

	got, err := e.admin.GetContact(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OwnerEmail)
	require.NotNil(t, got.OwnerName)
	assert.Equal(t, "jane.doe@example.com", *got.OwnerEmail)
	assert.Equal(t, "jane.doe", *got.OwnerName)

	require.NoError(t, e.admin.DeleteContact(ctx, admin, c.ID))
	assert.False(t, e.photos.has(c.Photo))
	assert.True(t, errs.Is(e.admin.DeleteContact(ctx, admin, c.ID), errs.CodeNotFound))
}

func TestAdmin_Stats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.register(t, "alice@example.com")
	e.register(t, "bob@example.com")
	mustCreate(t, e, u, "Ann")

	st, err := e.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalUsers: 2, TotalContacts: 1}, st)
}

package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/model"
)

func TestAuthorize(t *testing.T) {
	owner := Identity{UserID: "u1", Role: model.RoleUser}
	other := Identity{UserID: "u2", Role: model.RoleUser}
	admin := Identity{UserID: "a1", Role: model.RoleAdmin}

	for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete} {
		require.NoError(t, Authorize(owner, "u1", action))
		require.NoError(t, Authorize(admin, "u1", action))

		err := Authorize(other, "u1", action)
		require.Error(t, err)
		require.True(t, errs.Is(err, errs.CodeForbidden))
	}
}

func TestAuthorize_EmptyIdentityNeverMatches(t *testing.T) {
	err := Authorize(Identity{}, "", ActionRead)
	require.True(t, errs.Is(err, errs.CodeForbidden))
}

func TestScope(t *testing.T) {
	require.Equal(t, "u1", Scope(Identity{UserID: "u1", Role: model.RoleUser}))
	require.Equal(t, "", Scope(Identity{UserID: "a1", Role: model.RoleAdmin}))
}

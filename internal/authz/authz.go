// Package authz holds the acting identity resolved from a bearer token and
// the ownership rule applied to contact records.
package authz

import (
	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/model"
)

// Identity is the caller of a request, taken from verified token claims.
type Identity struct {
	UserID string
	Email  string
	Role   model.Role
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool { return id.Role == model.RoleAdmin }

// Action names an operation on an owned resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Authorize decides whether id may perform action on a resource owned by
// ownerID. Admins may do anything; everyone else only touches their own
// records; read, update and delete share that rule.
func Authorize(id Identity, ownerID string, action Action) error {
	if id.IsAdmin() {
		return nil
	}
	if id.UserID != "" && id.UserID == ownerID {
		return nil
	}
	return errs.Forbidden(errs.MsgNoPermission)
}

// Scope returns the owner filter for list queries: empty (unscoped) for
// admins, the caller's own id otherwise.
func Scope(id Identity) string {
	if id.IsAdmin() {
		return ""
	}
	return id.UserID
}

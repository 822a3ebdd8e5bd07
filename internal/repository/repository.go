package repository

import (
	"context"

	"github.com/iliyamo/contact-book/internal/model"
)

// Sortable contact columns, as accepted on the query string.
const (
	SortByName      = "name"
	SortByEmail     = "email"
	SortByCreatedAt = "createdAt"
)

// Sort directions.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// ContactQuery filters and paginates contact lists. An empty OwnerID means
// unscoped (admin) access. Page and Limit are 1-indexed and already
// validated by the caller.
type ContactQuery struct {
	OwnerID   string
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

// Offset returns the number of rows skipped before the page starts.
func (q ContactQuery) Offset() int { return (q.Page - 1) * q.Limit }

// UserQuery filters and paginates user lists by email substring.
type UserQuery struct {
	Page   int
	Limit  int
	Search string
}

// Offset returns the number of rows skipped before the page starts.
func (q UserQuery) Offset() int { return (q.Page - 1) * q.Limit }

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts u; ErrEmailExists on a duplicate email.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user; ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail loads a user by normalized email; ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns one page of users ordered by creation time, newest first,
	// plus the total number of matches.
	List(ctx context.Context, q UserQuery) ([]model.User, int, error)
	// UpdateRole changes the role; ErrNotFound when absent.
	UpdateRole(ctx context.Context, id string, role model.Role) error
	// Delete removes the user and every contact it owns in one transaction
	// and returns the photo references of the removed contacts.
	Delete(ctx context.Context, id string) ([]string, error)
	// Count returns the number of users.
	Count(ctx context.Context) (int, error)
}

// ContactRepository stores contact records.
type ContactRepository interface {
	// Create inserts c; ErrOwnerMissing when the owner row is gone.
	Create(ctx context.Context, c *model.Contact) error
	// GetByID loads a contact with its owner's email; ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*model.ContactWithOwner, error)
	// List returns one page of contacts plus the total number of matches.
	List(ctx context.Context, q ContactQuery) ([]model.ContactWithOwner, int, error)
	// ListAll returns every contact of ownerID (all contacts when empty),
	// newest first.
	ListAll(ctx context.Context, ownerID string) ([]model.Contact, error)
	// Update persists name, email, phone and photo of c; ErrNotFound when absent.
	Update(ctx context.Context, c *model.Contact) error
	// Delete removes a contact; ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
	// Count returns the number of contacts.
	Count(ctx context.Context) (int, error)
}

// Package repository defines the storage contracts used by the services and
// the sentinel errors shared by every backend. Backends live in the mysql
// and memory subpackages.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert violates the unique email
// index.
var ErrEmailExists = errors.New("email already exists")

// ErrOwnerMissing is returned when a contact references a user that no
// longer exists (foreign key violation).
var ErrOwnerMissing = errors.New("owner does not exist")

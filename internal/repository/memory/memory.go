// Package memory is a process-local repository backend. It keeps the same
// contracts as the mysql backend and is selected with DB_DRIVER=memory for
// local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/repository"
)

// Store holds users and contacts behind one lock so a user delete can
// cascade atomically.
type Store struct {
	mu       sync.RWMutex
	users    map[string]model.User
	byEmail  map[string]string
	contacts map[string]model.Contact
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]model.User),
		byEmail:  make(map[string]string),
		contacts: make(map[string]model.Contact),
	}
}

var now = func() time.Time { return time.Now().UTC() }

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Contacts returns the contact repository view of the store.
func (s *Store) Contacts() *ContactRepo { return &ContactRepo{s: s} }

// UserRepo implements repository.UserRepository.
type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := r.s.byEmail[key]; ok {
		return repository.ErrEmailExists
	}
	r.s.users[u.ID] = *u
	r.s.byEmail[key] = u.ID
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.s.users[id]
	return &u, nil
}

func (r *UserRepo) List(_ context.Context, q repository.UserQuery) ([]model.User, int, error) {
	r.s.mu.RLock()
	term := strings.ToLower(q.Search)
	var all []model.User
	for _, u := range r.s.users {
		if term == "" || strings.Contains(strings.ToLower(u.Email), term) {
			all = append(all, u)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return window(all, q.Offset(), q.Limit), len(all), nil
}

func (r *UserRepo) UpdateRole(_ context.Context, id string, role model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = now()
	r.s.users[id] = u
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var photos []string
	for cid, c := range r.s.contacts {
		if c.OwnerID != id {
			continue
		}
		if c.Photo != "" {
			photos = append(photos, c.Photo)
		}
		delete(r.s.contacts, cid)
	}
	delete(r.s.byEmail, strings.ToLower(u.Email))
	delete(r.s.users, id)
	sort.Strings(photos)
	return photos, nil
}

func (r *UserRepo) Count(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

// ContactRepo implements repository.ContactRepository.
type ContactRepo struct{ s *Store }

var _ repository.ContactRepository = (*ContactRepo)(nil)

func (r *ContactRepo) Create(_ context.Context, c *model.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[c.OwnerID]; !ok {
		return repository.ErrOwnerMissing
	}
	r.s.contacts[c.ID] = *c
	return nil
}

func (r *ContactRepo) GetByID(_ context.Context, id string) (*model.ContactWithOwner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contacts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r.withOwner(c)
	return &out, nil
}

func (r *ContactRepo) List(_ context.Context, q repository.ContactQuery) ([]model.ContactWithOwner, int, error) {
	r.s.mu.RLock()
	term := strings.ToLower(q.Search)
	var all []model.ContactWithOwner
	for _, c := range r.s.contacts {
		if q.OwnerID != "" && c.OwnerID != q.OwnerID {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(c.Name), term) &&
			!strings.Contains(strings.ToLower(c.Email), term) {
			continue
		}
		all = append(all, r.withOwner(c))
	}
	r.s.mu.RUnlock()

	asc := q.SortOrder == repository.SortAsc
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		cmp := compareBy(q.SortBy, a.Contact, b.Contact)
		if cmp == 0 {
			cmp = strings.Compare(a.ID, b.ID)
		}
		if asc {
			return cmp < 0
		}
		return cmp > 0
	})
	return window(all, q.Offset(), q.Limit), len(all), nil
}

func (r *ContactRepo) ListAll(_ context.Context, ownerID string) ([]model.Contact, error) {
	r.s.mu.RLock()
	var out []model.Contact
	for _, c := range r.s.contacts {
		if ownerID == "" || c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *ContactRepo) Update(_ context.Context, c *model.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.contacts[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name, cur.Email, cur.Phone, cur.Photo = c.Name, c.Email, c.Phone, c.Photo
	cur.UpdatedAt = c.UpdatedAt
	r.s.contacts[c.ID] = cur
	return nil
}

func (r *ContactRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.contacts, id)
	return nil
}

func (r *ContactRepo) Count(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.contacts), nil
}

// withOwner must be called with the lock held.
func (r *ContactRepo) withOwner(c model.Contact) model.ContactWithOwner {
	out := model.ContactWithOwner{Contact: c}
	if u, ok := r.s.users[c.OwnerID]; ok {
		email := u.Email
		out.OwnerEmail = &email
	}
	return out
}

func compareBy(field string, a, b model.Contact) int {
	switch field {
	case repository.SortByName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case repository.SortByEmail:
		return strings.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func window[T any](all []T, offset, limit int) []T {
	if offset >= len(all) || limit <= 0 {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

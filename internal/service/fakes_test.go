package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/contact-book/internal/authz"
	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository"
	"github.com/iliyamo/contact-book/internal/repository/memory"
)

type fakePhotos struct {
	mu    sync.Mutex
	files map[string]string
	seq   int
	fail  bool
}

func newFakePhotos() *fakePhotos { return &fakePhotos{files: map[string]string{}} }

func (f *fakePhotos) Save(filename, _ string, r io.Reader) (string, error) {
	if f.fail {
		return "", errors.New("disk full")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ref := fmt.Sprintf("/uploads/contacts/%d-%s", f.seq, filename)
	f.files[ref] = string(b)
	return ref, nil
}

func (f *fakePhotos) Delete(ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, ref)
	return nil
}

func (f *fakePhotos) has(ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[ref]
	return ok
}

type recorder struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// flakyContacts fails Create or Update on demand.
type flakyContacts struct {
	repository.ContactRepository
	failCreate, failUpdate bool
}

func (f *flakyContacts) Create(ctx context.Context, c *model.Contact) error {
	if f.failCreate {
		return errors.New("insert failed")
	}
	return f.ContactRepository.Create(ctx, c)
}

func (f *flakyContacts) Update(ctx context.Context, c *model.Contact) error {
	if f.failUpdate {
		return errors.New("update failed")
	}
	return f.ContactRepository.Update(ctx, c)
}

type env struct {
	store    *memory.Store
	contacts *flakyContacts
	photos   *fakePhotos
	events   *recorder
	auth     *AuthService
	contact  *ContactService
	admin    *AdminService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zaptest.NewLogger(t)
	store := memory.New()
	contacts := &flakyContacts{ContactRepository: store.Contacts()}
	photos := newFakePhotos()
	events := &recorder{}
	return &env{
		store:    store,
		contacts: contacts,
		photos:   photos,
		events:   events,
		auth:     NewAuthService(store.Users(), AuthConfig{Secret: "test-secret", TokenTTL: time.Hour, BcryptCost: 4}, events, log),
		contact:  NewContactService(contacts, photos, DefaultMaxPhotoBytes, events, log),
		admin:    NewAdminService(store.Users(), contacts, photos, events, log),
	}
}

func (e *env) register(t *testing.T, email string) authz.Identity {
	t.Helper()
	res, err := e.auth.Register(context.Background(), email, "secret1")
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return authz.Identity{UserID: res.User.ID, Email: res.User.Email, Role: res.User.Role}
}

func (e *env) registerAdmin(t *testing.T, email string) authz.Identity {
	t.Helper()
	id := e.register(t, email)
	if err := e.store.Users().UpdateRole(context.Background(), id.UserID, model.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	id.Role = model.RoleAdmin
	return id
}

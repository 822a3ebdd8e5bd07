package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/contact-book/internal/authz"
	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalContacts int `json:"totalContacts"`
}

// UserDetail is a user together with the contacts it owns.
type UserDetail struct {
	model.User
	Contacts []model.Contact `json:"contacts"`
}

// AdminService implements the unscoped management operations. Callers
// must already have passed the admin role check.
type AdminService struct {
	users    repository.UserRepository
	contacts repository.ContactRepository
	photos   PhotoStore
	events   queue.Emitter
	log      *zap.Logger
}

func NewAdminService(users repository.UserRepository, contacts repository.ContactRepository, photos PhotoStore, events queue.Emitter, log *zap.Logger) *AdminService {
	if events == nil {
		events = queue.Nop{}
	}
	return &AdminService{users: users, contacts: contacts, photos: photos, events: events, log: log}
}

// ListUsers pages through users by email substring, newest first.
func (s *AdminService) ListUsers(ctx context.Context, page, limit int, search string) (model.Page[model.User], error) {
	if page < 1 || limit < 1 {
		return model.Page[model.User]{}, errs.Validation("page and limit must be positive integers")
	}
	users, total, err := s.users.List(ctx, repository.UserQuery{Page: page, Limit: limit, Search: strings.TrimSpace(search)})
	if err != nil {
		return model.Page[model.User]{}, errs.Internal(err)
	}
	return model.NewPage(users, total, page, limit), nil
}

// GetUser returns the user with its contacts.
func (s *AdminService) GetUser(ctx context.Context, id string) (*UserDetail, error) {
	u, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	owned, err := s.contacts.ListAll(ctx, u.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if owned == nil {
		owned = []model.Contact{}
	}
	return &UserDetail{User: *u, Contacts: owned}, nil
}

// DeleteUser removes the user and everything it owns. Photo files go after
// the transaction has committed.
func (s *AdminService) DeleteUser(ctx context.Context, actor authz.Identity, id string) error {
	photos, err := s.users.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("user not found", zap.String("user_id", id))
			return errs.NotFound(errs.MsgUserNotFound)
		}
		return errs.Internal(err)
	}
	for _, ref := range photos {
		if err := s.photos.Delete(ref); err != nil {
			s.log.Warn("photo cleanup failed", zap.String("photo", ref), zap.Error(err))
		}
	}
	s.log.Info("user deleted", zap.String("user_id", id), zap.Int("photos_removed", len(photos)))
	emit(ctx, s.events, s.log, queue.NewEvent(queue.UserDeleted, actor.UserID, id, ""))
	return nil
}

// UpdateUserRole sets the role of a user. The change applies to tokens
// issued from the next login on.
func (s *AdminService) UpdateUserRole(ctx context.Context, actor authz.Identity, id string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, errs.Validation("role must be one of: user, admin")
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("user not found", zap.String("user_id", id))
			return nil, errs.NotFound(errs.MsgUserNotFound)
		}
		return nil, errs.Internal(err)
	}
	u, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("user role updated", zap.String("user_id", id), zap.String("role", string(role)))
	emit(ctx, s.events, s.log, queue.NewEvent(queue.UserRoleUpdated, actor.UserID, id, ""))
	return u, nil
}

// ListContacts pages through every contact, annotated with its owner.
func (s *AdminService) ListContacts(ctx context.Context, p ListParams) (model.Page[model.ContactWithOwner], error) {
	q, err := p.query("")
	if err != nil {
		return model.Page[model.ContactWithOwner]{}, err
	}
	rows, total, err := s.contacts.List(ctx, q)
	if err != nil {
		return model.Page[model.ContactWithOwner]{}, errs.Internal(err)
	}
	for i := range rows {
		annotate(&rows[i])
	}
	return model.NewPage(rows, total, q.Page, q.Limit), nil
}

// GetContact loads any contact with its owner annotation.
func (s *AdminService) GetContact(ctx context.Context, id string) (*model.ContactWithOwner, error) {
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("contact not found", zap.String("contact_id", id))
			return nil, errs.NotFound(errs.MsgContactNotFound)
		}
		return nil, errs.Internal(err)
	}
	annotate(c)
	return c, nil
}

// DeleteContact removes any contact and its photo file.
func (s *AdminService) DeleteContact(ctx context.Context, actor authz.Identity, id string) error {
	c, err := s.GetContact(ctx, id)
	if err != nil {
		return err
	}
	if c.Photo != "" {
		if err := s.photos.Delete(c.Photo); err != nil {
			s.log.Warn("photo cleanup failed", zap.String("photo", c.Photo), zap.Error(err))
		}
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NotFound(errs.MsgContactNotFound)
		}
		return errs.Internal(err)
	}
	s.log.Info("admin deleted contact", zap.String("contact_id", id))
	emit(ctx, s.events, s.log, queue.NewEvent(queue.ContactDeleted, actor.UserID, id, c.OwnerID))
	return nil
}

// Stats counts users and contacts.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, errs.Internal(err)
	}
	contacts, err := s.contacts.Count(ctx)
	if err != nil {
		return Stats{}, errs.Internal(err)
	}
	return Stats{TotalUsers: users, TotalContacts: contacts}, nil
}

func (s *AdminService) getUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("user not found", zap.String("user_id", id))
			return nil, errs.NotFound(errs.MsgUserNotFound)
		}
		return nil, errs.Internal(err)
	}
	return u, nil
}

func annotate(c *model.ContactWithOwner) {
	if c.OwnerEmail == nil {
		c.OwnerName = nil
		return
	}
	name := model.DisplayName(*c.OwnerEmail)
	c.OwnerName = &name
}

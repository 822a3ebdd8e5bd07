package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/contact-book/internal/authz"
	"github.com/iliyamo/contact-book/internal/errs"
	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository"
)

// DefaultMaxPhotoBytes caps uploads when no limit is configured.
const DefaultMaxPhotoBytes = 5 << 20

var photoMIME = regexp.MustCompile(`(?i)^image/(jpg|jpeg|png|gif|webp)$`)

// PhotoStore persists uploaded images and hands back their public
// reference.
type PhotoStore interface {
	Save(filename, contentType string, r io.Reader) (string, error)
	Delete(ref string) error
}

// Photo is an uploaded file as received by the HTTP layer.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ContactInput carries contact fields. On update an empty field means no
// change.
type ContactInput struct {
	Name  string `json:"name" form:"name"`
	Email string `json:"email" form:"email"`
	Phone string `json:"phone" form:"phone"`
}

// ListParams is the contact list query before validation.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

// DefaultListParams returns page 1 of 10, newest first.
func DefaultListParams() ListParams {
	return ListParams{Page: 1, Limit: 10, SortBy: repository.SortByCreatedAt, SortOrder: repository.SortDesc}
}

func (p ListParams) query(ownerID string) (repository.ContactQuery, error) {
	if p.Page < 1 {
		return repository.ContactQuery{}, errs.Validation("page must be a positive integer")
	}
	if p.Limit < 1 {
		return repository.ContactQuery{}, errs.Validation("limit must be a positive integer")
	}
	switch p.SortBy {
	case "":
		p.SortBy = repository.SortByCreatedAt
	case repository.SortByName, repository.SortByEmail, repository.SortByCreatedAt:
	default:
		return repository.ContactQuery{}, errs.Validation("sortBy must be one of: name, email, createdAt")
	}
	switch p.SortOrder {
	case "":
		p.SortOrder = repository.SortDesc
	case repository.SortAsc, repository.SortDesc:
	default:
		return repository.ContactQuery{}, errs.Validation("sortOrder must be one of: ASC, DESC")
	}
	return repository.ContactQuery{
		OwnerID:   ownerID,
		Page:      p.Page,
		Limit:     p.Limit,
		Search:    strings.TrimSpace(p.Search),
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
	}, nil
}

// ContactService implements the owner-scoped contact operations.
type ContactService struct {
	contacts      repository.ContactRepository
	photos        PhotoStore
	maxPhotoBytes int64
	events        queue.Emitter
	log           *zap.Logger
}

func NewContactService(contacts repository.ContactRepository, photos PhotoStore, maxPhotoBytes int64, events queue.Emitter, log *zap.Logger) *ContactService {
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = DefaultMaxPhotoBytes
	}
	if events == nil {
		events = queue.Nop{}
	}
	return &ContactService{contacts: contacts, photos: photos, maxPhotoBytes: maxPhotoBytes, events: events, log: log}
}

// List returns the caller's contacts, or every contact for an admin.
func (s *ContactService) List(ctx context.Context, id authz.Identity, p ListParams) (model.Page[model.Contact], error) {
	q, err := p.query(authz.Scope(id))
	if err != nil {
		return model.Page[model.Contact]{}, err
	}
	rows, total, err := s.contacts.List(ctx, q)
	if err != nil {
		return model.Page[model.Contact]{}, errs.Internal(err)
	}
	items := make([]model.Contact, len(rows))
	for i, r := range rows {
		items[i] = r.Contact
	}
	return model.NewPage(items, total, q.Page, q.Limit), nil
}

// Create stores a contact owned by the caller. The photo, if any, is
// written before the row and removed again if the insert fails.
func (s *ContactService) Create(ctx context.Context, id authz.Identity, in ContactInput, photo *Photo) (*model.Contact, error) {
	in = trimInput(in)
	if in.Name == "" {
		return nil, errs.Validation("name should not be empty")
	}
	if !ValidEmail(in.Email) {
		return nil, errs.Validation("email must be an email")
	}
	if in.Phone == "" {
		return nil, errs.Validation("phone should not be empty")
	}
	if err := s.checkPhoto(photo); err != nil {
		return nil, err
	}

	ref, err := s.savePhoto(photo)
	if err != nil {
		return nil, err
	}
	t := now()
	c := &model.Contact{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Photo:     ref,
		OwnerID:   id.UserID,
		CreatedAt: t,
		UpdatedAt: t,
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		s.discard(ref)
		if errors.Is(err, repository.ErrOwnerMissing) {
			return nil, errs.Auth(errs.MsgUnauthorized)
		}
		return nil, errs.Internal(err)
	}
	s.log.Info("contact created", zap.String("contact_id", c.ID), zap.String("owner_id", c.OwnerID))
	emit(ctx, s.events, s.log, queue.NewEvent(queue.ContactCreated, id.UserID, c.ID, c.OwnerID))
	return c, nil
}

// Get loads a contact the caller may read.
func (s *ContactService) Get(ctx context.Context, id authz.Identity, contactID string) (*model.Contact, error) {
	c, err := s.load(ctx, id, contactID, authz.ActionRead)
	if err != nil {
		return nil, err
	}
	return &c.Contact, nil
}

// Update applies the non-empty fields of in and optionally replaces the
// photo. The old photo file is removed only after the new reference has
// been persisted.
func (s *ContactService) Update(ctx context.Context, id authz.Identity, contactID string, in ContactInput, photo *Photo) (*model.Contact, error) {
	cur, err := s.load(ctx, id, contactID, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	in = trimInput(in)
	if in.Email != "" {
		if !ValidEmail(in.Email) {
			return nil, errs.Validation("email must be an email")
		}
	}
	if err := s.checkPhoto(photo); err != nil {
		return nil, err
	}

	c := cur.Contact
	if in.Name != "" {
		c.Name = in.Name
	}
	if in.Email != "" {
		c.Email = in.Email
	}
	if in.Phone != "" {
		c.Phone = in.Phone
	}
	oldPhoto := c.Photo
	newPhoto, err := s.savePhoto(photo)
	if err != nil {
		return nil, err
	}
	if newPhoto != "" {
		c.Photo = newPhoto
	}
	c.UpdatedAt = now()

	if err := s.contacts.Update(ctx, &c); err != nil {
		s.discard(newPhoto)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound(errs.MsgContactNotFound)
		}
		return nil, errs.Internal(err)
	}
	if newPhoto != "" && oldPhoto != "" {
		s.discard(oldPhoto)
	}
	s.log.Info("contact updated", zap.String("contact_id", c.ID))
	emit(ctx, s.events, s.log, queue.NewEvent(queue.ContactUpdated, id.UserID, c.ID, c.OwnerID))
	return &c, nil
}

// Remove deletes the photo file, then the record.
func (s *ContactService) Remove(ctx context.Context, id authz.Identity, contactID string) error {
	c, err := s.load(ctx, id, contactID, authz.ActionDelete)
	if err != nil {
		return err
	}
	return s.remove(ctx, id, &c.Contact)
}

func (s *ContactService) remove(ctx context.Context, id authz.Identity, c *model.Contact) error {
	if c.Photo != "" {
		s.discard(c.Photo)
	}
	if err := s.contacts.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NotFound(errs.MsgContactNotFound)
		}
		return errs.Internal(err)
	}
	s.log.Info("contact deleted", zap.String("contact_id", c.ID), zap.String("actor_id", id.UserID))
	emit(ctx, s.events, s.log, queue.NewEvent(queue.ContactDeleted, id.UserID, c.ID, c.OwnerID))
	return nil
}

// ExportCSV renders every visible contact, newest first.
func (s *ContactService) ExportCSV(ctx context.Context, id authz.Identity) ([]byte, error) {
	rows, err := s.contacts.ListAll(ctx, authz.Scope(id))
	if err != nil {
		return nil, errs.Internal(err)
	}
	var buf bytes.Buffer
	writeCSV(&buf, rows)
	return buf.Bytes(), nil
}

func (s *ContactService) load(ctx context.Context, id authz.Identity, contactID string, action authz.Action) (*model.ContactWithOwner, error) {
	c, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("contact not found", zap.String("contact_id", contactID))
			return nil, errs.NotFound(errs.MsgContactNotFound)
		}
		return nil, errs.Internal(err)
	}
	if err := authz.Authorize(id, c.OwnerID, action); err != nil {
		s.log.Warn("unauthorized access attempt",
			zap.String("user_id", id.UserID), zap.String("contact_id", contactID), zap.String("action", string(action)))
		return nil, err
	}
	return c, nil
}

func (s *ContactService) checkPhoto(p *Photo) error {
	if p == nil {
		return nil
	}
	if !photoMIME.MatchString(p.ContentType) {
		return errs.Validation("Only image files are allowed")
	}
	if p.Size > s.maxPhotoBytes {
		return errs.Validation("File too large")
	}
	return nil
}

func (s *ContactService) savePhoto(p *Photo) (string, error) {
	if p == nil {
		return "", nil
	}
	// Size comes from the multipart header; cap the copy as well.
	ref, err := s.photos.Save(p.Filename, p.ContentType, io.LimitReader(p.Body, s.maxPhotoBytes))
	if err != nil {
		return "", errs.Internal(err)
	}
	return ref, nil
}

func (s *ContactService) discard(ref string) {
	if ref == "" {
		return
	}
	if err := s.photos.Delete(ref); err != nil {
		s.log.Warn("photo cleanup failed", zap.String("photo", ref), zap.Error(err))
	}
}

func trimInput(in ContactInput) ContactInput {
	return ContactInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}
}

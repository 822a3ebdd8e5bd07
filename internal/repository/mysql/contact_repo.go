package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/repository"
)

// ContactRepo implements repository.ContactRepository.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo constructs a contact repository over db.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

var _ repository.ContactRepository = (*ContactRepo)(nil)

const contactColumns = "c.id, c.name, c.email, c.phone, c.photo, c.owner_id, c.created_at, c.updated_at"

// sortColumns whitelists the ORDER BY targets; query-string values never
// reach the SQL text directly.
var sortColumns = map[string]string{
	repository.SortByName:      "c.name",
	repository.SortByEmail:     "c.email",
	repository.SortByCreatedAt: "c.created_at",
}

// Create inserts a contact row.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	const q = `INSERT INTO contacts (id, name, email, phone, photo, owner_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Email, c.Phone, nullable(c.Photo), c.OwnerID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isMySQLError(err, errNoReferenced) {
			return repository.ErrOwnerMissing
		}
		return err
	}
	return nil
}

// GetByID selects a contact joined with its owner's email.
func (r *ContactRepo) GetByID(ctx context.Context, id string) (*model.ContactWithOwner, error) {
	q := "SELECT " + contactColumns + ", u.email FROM contacts c LEFT JOIN users u ON u.id = c.owner_id WHERE c.id = ? LIMIT 1"
	c, err := scanContactWithOwner(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List counts the matches, then loads one page of them.
func (r *ContactRepo) List(ctx context.Context, q repository.ContactQuery) ([]model.ContactWithOwner, int, error) {
	where := []string{}
	args := []any{}
	if q.OwnerID != "" {
		where = append(where, "c.owner_id = ?")
		args = append(args, q.OwnerID)
	}
	if q.Search != "" {
		p := likePattern(q.Search)
		where = append(where, "(LOWER(c.name) LIKE ? OR LOWER(c.email) LIKE ?)")
		args = append(args, p, p)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts c WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "c.created_at"
	}
	dir := "DESC"
	if q.SortOrder == repository.SortAsc {
		dir = "ASC"
	}

	dataSQL := "SELECT " + contactColumns + ", u.email FROM contacts c LEFT JOIN users u ON u.id = c.owner_id WHERE " + cond +
		" ORDER BY " + col + " " + dir + ", c.id " + dir + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, dataSQL, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.ContactWithOwner, 0, q.Limit)
	for rows.Next() {
		c, err := scanContactWithOwner(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListAll returns every visible contact, newest first.
func (r *ContactRepo) ListAll(ctx context.Context, ownerID string) ([]model.Contact, error) {
	q := "SELECT " + contactColumns + " FROM contacts c"
	var args []any
	if ownerID != "" {
		q += " WHERE c.owner_id = ?"
		args = append(args, ownerID)
	}
	q += " ORDER BY c.created_at DESC, c.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		var (
			c     model.Contact
			photo sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &photo, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Photo = photo.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update writes the mutable fields of c.
func (r *ContactRepo) Update(ctx context.Context, c *model.Contact) error {
	const q = "UPDATE contacts SET name = ?, email = ?, phone = ?, photo = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Email, c.Phone, nullable(c.Photo), c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a contact by id.
func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the number of contacts.
func (r *ContactRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&n)
	return n, err
}

func scanContactWithOwner(s rowScanner) (*model.ContactWithOwner, error) {
	var (
		c          model.ContactWithOwner
		photo      sql.NullString
		ownerEmail sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &photo, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt, &ownerEmail); err != nil {
		return nil, err
	}
	c.Photo = photo.String
	if ownerEmail.Valid {
		e := ownerEmail.String
		c.OwnerEmail = &e
	}
	return &c, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

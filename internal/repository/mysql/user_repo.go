package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/repository"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct{ db *sql.DB }

// NewUserRepo constructs a user repository over db.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = "id, email, password_hash, role, created_at, updated_at"

// Create inserts a user row. Email is expected to be normalized already.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = "INSERT INTO users (id, email, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			return repository.ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByID selects a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns a page of users filtered by email substring, newest first.
func (r *UserRepo) List(ctx context.Context, q repository.UserQuery) ([]model.User, int, error) {
	cond := "1=1"
	var args []any
	if q.Search != "" {
		cond = "LOWER(email) LIKE ?"
		args = append(args, likePattern(q.Search))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := "SELECT " + userColumns + " FROM users WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, dataSQL, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.User, 0, q.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateRole changes a user's role and bumps updated_at.
func (r *UserRepo) UpdateRole(ctx context.Context, id string, role model.Role) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET role = ?, updated_at = UTC_TIMESTAMP(6) WHERE id = ?", string(role), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows when the value is unchanged, so
		// confirm the row exists before calling it missing.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the user's contacts and then the user in one transaction.
func (r *UserRepo) Delete(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, "SELECT photo FROM contacts WHERE owner_id = ? AND photo IS NOT NULL FOR UPDATE", id)
	if err != nil {
		return nil, fmt.Errorf("select photos: %w", err)
	}
	var photos []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, err
		}
		photos = append(photos, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM contacts WHERE owner_id = ?", id); err != nil {
		return nil, fmt.Errorf("delete contacts: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, repository.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return photos, nil
}

// Count returns the number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

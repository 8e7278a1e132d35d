package repos

import (
	"context"
	"database/sql"
	"errors"

	"weddingsite/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ q sqlx.ExtContext }

func NewUserRepo(q sqlx.ExtContext) *UserRepo { return &UserRepo{q: q} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := sqlx.GetContext(ctx, r.q, &u,
		r.q.Rebind(`SELECT id, email, name, password_hash, created_at FROM admin_users WHERE LOWER(email) = LOWER(?)`), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := sqlx.GetContext(ctx, r.q, &u,
		r.q.Rebind(`SELECT id, email, name, password_hash, created_at FROM admin_users WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates the admin or resets name and password for an existing email.
func (r *UserRepo) Upsert(ctx context.Context, u *domain.AdminUser) error {
	existing, err := r.ByEmail(ctx, u.Email)
	if err == nil {
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		_, err = r.q.ExecContext(ctx, r.q.Rebind(`UPDATE admin_users SET name = ?, password_hash = ? WHERE id = ?`),
			u.Name, u.Hash, u.ID)
		return err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO admin_users(id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.Name, u.Hash, u.CreatedAt)
	return err
}

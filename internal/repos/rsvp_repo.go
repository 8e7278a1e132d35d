package repos

import (
	"context"

	"weddingsite/internal/domain"

	"github.com/jmoiron/sqlx"
)

type RSVPRepo struct{ q sqlx.ExtContext }

func NewRSVPRepo(q sqlx.ExtContext) *RSVPRepo { return &RSVPRepo{q: q} }

func (r *RSVPRepo) Create(ctx context.Context, v *domain.RSVP) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO rsvps(id, name, companions, email, phone, message, confirmed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		v.ID, v.Name, v.Companions, v.Email, v.Phone, v.Message, v.Confirmed, v.CreatedAt)
	return err
}

// List returns every RSVP, newest first.
func (r *RSVPRepo) List(ctx context.Context) ([]domain.RSVP, error) {
	rows := []domain.RSVP{}
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id, name, companions, email, phone, message, confirmed, created_at
		FROM rsvps ORDER BY created_at DESC, id`)
	return rows, err
}

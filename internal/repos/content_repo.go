package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type ContentRepo struct{ q sqlx.ExtContext }

func NewContentRepo(q sqlx.ExtContext) *ContentRepo { return &ContentRepo{q: q} }

// Get returns the stored JSON body of a section, or sql.ErrNoRows.
func (r *ContentRepo) Get(ctx context.Context, section string) ([]byte, error) {
	var body string
	err := sqlx.GetContext(ctx, r.q, &body, r.q.Rebind(`SELECT body FROM content WHERE section = ?`), section)
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (r *ContentRepo) Put(ctx context.Context, section string, body []byte, at time.Time) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO content(section, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(section) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`),
		section, string(body), at)
	return err
}

package repos

import (
	"context"

	"weddingsite/internal/domain"

	"github.com/jmoiron/sqlx"
)

type StoryRepo struct{ q sqlx.ExtContext }

func NewStoryRepo(q sqlx.ExtContext) *StoryRepo { return &StoryRepo{q: q} }

const storyCols = `id, date_label, title, text, image_url, order_index, created_at`

func (r *StoryRepo) List(ctx context.Context) ([]domain.StoryEvent, error) {
	events := []domain.StoryEvent{}
	err := sqlx.SelectContext(ctx, r.q, &events, `SELECT `+storyCols+` FROM story_events ORDER BY order_index, created_at, id`)
	return events, err
}

func (r *StoryRepo) ByID(ctx context.Context, id string) (*domain.StoryEvent, error) {
	var e domain.StoryEvent
	err := sqlx.GetContext(ctx, r.q, &e, r.q.Rebind(`SELECT `+storyCols+` FROM story_events WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *StoryRepo) Create(ctx context.Context, e *domain.StoryEvent) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO story_events(id, date_label, title, text, image_url, order_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.DateLabel, e.Title, e.Text, e.ImageURL, e.Order, e.CreatedAt)
	return err
}

func (r *StoryRepo) Update(ctx context.Context, e *domain.StoryEvent) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`
		UPDATE story_events SET date_label = ?, title = ?, text = ?, image_url = ?, order_index = ? WHERE id = ?`),
		e.DateLabel, e.Title, e.Text, e.ImageURL, e.Order, e.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *StoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM story_events WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

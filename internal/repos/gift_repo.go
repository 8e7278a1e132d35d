package repos

import (
	"context"
	"fmt"
	"time"

	"weddingsite/internal/domain"

	"github.com/jmoiron/sqlx"
)

// GiftRepo works against a *sqlx.DB or a *sqlx.Tx.
type GiftRepo struct{ q sqlx.ExtContext }

func NewGiftRepo(q sqlx.ExtContext) *GiftRepo { return &GiftRepo{q: q} }

const giftCols = `id, name, description, price_cents, image_url, stock, created_at, updated_at`

func (r *GiftRepo) List(ctx context.Context) ([]domain.Gift, error) {
	gifts := []domain.Gift{}
	err := sqlx.SelectContext(ctx, r.q, &gifts, `SELECT `+giftCols+` FROM gifts ORDER BY LOWER(name), id`)
	return gifts, err
}

func (r *GiftRepo) ByID(ctx context.Context, id string) (*domain.Gift, error) {
	var g domain.Gift
	err := sqlx.GetContext(ctx, r.q, &g, r.q.Rebind(`SELECT `+giftCols+` FROM gifts WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GiftRepo) Create(ctx context.Context, g *domain.Gift) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO gifts(id, name, description, price_cents, image_url, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		g.ID, g.Name, g.Description, int64(g.Price), g.ImageURL, g.Stock, g.CreatedAt, g.UpdatedAt)
	return err
}

// Update overwrites the mutable columns. Returns false if no row matched.
func (r *GiftRepo) Update(ctx context.Context, g *domain.Gift) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`
		UPDATE gifts SET name = ?, description = ?, price_cents = ?, image_url = ?, stock = ?, updated_at = ?
		WHERE id = ?`),
		g.Name, g.Description, int64(g.Price), g.ImageURL, g.Stock, g.UpdatedAt, g.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *GiftRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM gifts WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// HasOrders reports whether any order references the gift.
func (r *GiftRepo) HasOrders(ctx context.Context, id string) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, r.q.Rebind(`SELECT COUNT(*) FROM orders WHERE gift_id = ?`), id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DecrementStock takes one unit, clamping at zero. Stock never goes negative.
func (r *GiftRepo) DecrementStock(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`
		UPDATE gifts
		SET stock = CASE WHEN stock > 0 THEN stock - 1 ELSE 0 END, updated_at = ?
		WHERE id = ?`), at, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("decrement stock: gift %s not found", id)
	}
	return nil
}
